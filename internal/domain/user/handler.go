package user

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ntimofeev/auth-service/internal/utils"
)

// Handler exposes administrative user management over HTTP
type Handler struct {
	service Service
}

// NewHandler creates a new user handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Get returns a single user by id
func (h *Handler) Get(c *fiber.Ctx) error {
	u, err := h.service.Get(c.Params("id"))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return utils.ErrorResponse(c, "user_not_found", fiber.StatusNotFound)
	case err != nil:
		return utils.ErrorResponse(c, "lookup_failed", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, fiber.Map{"user": u}, "User found")
}

// List returns one page of users, filtered and sorted from query parameters
func (h *Handler) List(c *fiber.Ctx) error {
	filters := filtersFromQuery(c)
	sortBy := SortBy{
		Field:     SortField(c.Query("sort", string(SortByCreatedAt))),
		Direction: SortDirection(c.Query("direction", string(SortAsc))),
	}
	page := Pagination{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", defaultPageSize),
	}

	result, err := h.service.List(filters, sortBy, page)
	if err != nil {
		return utils.ErrorResponse(c, "listing_failed", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, result, "Users listed")
}

// Delete removes a user account
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.service.Delete(c.Params("id"))
	switch {
	case errors.Is(err, ErrUserNotFound):
		return utils.ErrorResponse(c, "user_not_found", fiber.StatusNotFound)
	case err != nil:
		return utils.ErrorResponse(c, "delete_failed", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, nil, "User deleted")
}

func filtersFromQuery(c *fiber.Ctx) Filters {
	var filters Filters

	if username := c.Query("username"); username != "" {
		filters.Username = &username
	}
	if status := c.Query("status"); status != "" {
		s := Status(status)
		filters.Status = &s
	}
	if after := queryTime(c, "created_after"); after != nil {
		filters.CreatedAfter = after
	}
	if before := queryTime(c, "created_before"); before != nil {
		filters.CreatedBefore = before
	}

	return filters
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

func queryTime(c *fiber.Ctx, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
