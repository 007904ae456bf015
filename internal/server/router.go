package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ntimofeev/auth-service/internal/domain/auth"
	"github.com/ntimofeev/auth-service/internal/domain/token"
	"github.com/ntimofeev/auth-service/internal/domain/user"
)

// SetupRoutes sets up the routes for the application
func SetupRoutes(app *fiber.App, authService *auth.Service, userService user.Service, validator *token.Validator) {
	authHandler := auth.NewHandler(authService, userService)
	userHandler := user.NewHandler(userService)

	api := app.Group("/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})

	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/refresh", authHandler.Refresh)

	protected := api.Group("", auth.Middleware(validator))
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/auth/logout_all", authHandler.LogoutAll)
	protected.Get("/sessions", authHandler.Sessions)
	protected.Delete("/sessions/:id", authHandler.RevokeSession)

	protected.Get("/users", userHandler.List)
	protected.Get("/users/:id", userHandler.Get)
	protected.Post("/users/:id/block", authHandler.BlockUser)
	protected.Delete("/users/:id", userHandler.Delete)
}
