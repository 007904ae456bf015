package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ntimofeev/auth-service/internal/domain/session"
	"github.com/ntimofeev/auth-service/internal/domain/token"
	"github.com/ntimofeev/auth-service/internal/domain/user"
	"github.com/ntimofeev/auth-service/internal/utils"
)

// Handler exposes the auth flows over HTTP
type Handler struct {
	authService *Service
	userService user.Service
}

// NewHandler creates a new auth handler
func NewHandler(authService *Service, userService user.Service) *Handler {
	return &Handler{authService: authService, userService: userService}
}

// LoginRequest is the login body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the refresh body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func clientInfo(c *fiber.Ctx) ClientInfo {
	return ClientInfo{
		DeviceInfo: c.Get("X-Device-Info"),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
}

// Register creates a new user account
func (h *Handler) Register(c *fiber.Ctx) error {
	var req user.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "invalid_body", fiber.StatusBadRequest)
	}

	u, err := h.userService.Register(req)
	switch {
	case errors.Is(err, user.ErrInvalidUsername), errors.Is(err, user.ErrWeakPassword):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest)
	case errors.Is(err, user.ErrUsernameExists):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict)
	case err != nil:
		return utils.ErrorResponse(c, "registration_failed", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, fiber.Map{"user": u}, "User registered successfully", fiber.StatusCreated)
}

// Login exchanges credentials for a token pair
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "invalid_body", fiber.StatusBadRequest)
	}

	pair, u, err := h.authService.Login(c.UserContext(), req.Username, req.Password, clientInfo(c))
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserBlocked):
		return utils.ErrorResponse(c, "invalid_credentials", fiber.StatusUnauthorized)
	case err != nil:
		return utils.ErrorResponse(c, "login_failed", fiber.StatusInternalServerError)
	}

	return utils.SuccessResponse(c, fiber.Map{
		"tokens": pair,
		"user":   u,
	}, "Login successful")
}

// Refresh exchanges a refresh token for a new pair
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return utils.ErrorResponse(c, "invalid_body", fiber.StatusBadRequest)
	}

	pair, err := h.authService.Refresh(c.UserContext(), req.RefreshToken, clientInfo(c))
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return utils.ErrorResponse(c, "token_expired", fiber.StatusUnauthorized)
	case errors.Is(err, token.ErrTokenInvalid), errors.Is(err, token.ErrTokenRevoked):
		return utils.ErrorResponse(c, "invalid_token", fiber.StatusUnauthorized)
	case err != nil:
		return utils.ErrorResponse(c, "refresh_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, fiber.Map{"tokens": pair}, "Token refreshed")
}

// Logout revokes the session behind the presented access token
func (h *Handler) Logout(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.ErrorResponse(c, "unauthenticated", fiber.StatusUnauthorized)
	}

	if err := h.authService.Logout(c.UserContext(), identity.TokenID); err != nil {
		return utils.ErrorResponse(c, "logout_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, nil, "Logged out")
}

// LogoutAll revokes every session of the caller
func (h *Handler) LogoutAll(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.ErrorResponse(c, "unauthenticated", fiber.StatusUnauthorized)
	}

	if err := h.authService.LogoutAll(c.UserContext(), identity.UserID); err != nil {
		return utils.ErrorResponse(c, "logout_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, nil, "All sessions revoked")
}

// Sessions lists the caller's active sessions
func (h *Handler) Sessions(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.ErrorResponse(c, "unauthenticated", fiber.StatusUnauthorized)
	}

	sessions, err := h.authService.Sessions(c.UserContext(), identity.UserID)
	if err != nil {
		return utils.ErrorResponse(c, "session_listing_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, fiber.Map{"sessions": sessions}, "Active sessions")
}

// BlockUser blocks an account and revokes every session it holds
func (h *Handler) BlockUser(c *fiber.Ctx) error {
	u, err := h.authService.BlockUser(c.UserContext(), h.userService, c.Params("id"))
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return utils.ErrorResponse(c, "user_not_found", fiber.StatusNotFound)
	case err != nil:
		return utils.ErrorResponse(c, "block_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, fiber.Map{"user": u}, "User blocked")
}

// RevokeSession revokes one of the caller's sessions by token id
func (h *Handler) RevokeSession(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return utils.ErrorResponse(c, "unauthenticated", fiber.StatusUnauthorized)
	}

	tokenID := c.Params("id")
	err := h.authService.RevokeSession(c.UserContext(), identity.UserID, tokenID)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return utils.ErrorResponse(c, "session_not_found", fiber.StatusNotFound)
	case err != nil:
		return utils.ErrorResponse(c, "revoke_failed", fiber.StatusServiceUnavailable)
	}

	return utils.SuccessResponse(c, nil, "Session revoked")
}
