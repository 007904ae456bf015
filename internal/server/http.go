package server

import (
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/ntimofeev/auth-service/internal/cache"
	"github.com/ntimofeev/auth-service/internal/config"
	"github.com/ntimofeev/auth-service/internal/database"
	"github.com/ntimofeev/auth-service/internal/domain/auth"
	"github.com/ntimofeev/auth-service/internal/domain/session"
	"github.com/ntimofeev/auth-service/internal/domain/token"
	"github.com/ntimofeev/auth-service/internal/domain/user"
	"github.com/ntimofeev/auth-service/internal/migrations"
)

// Start builds every dependency once, wires them together and runs the
// HTTP server. Construction order follows the dependency graph: config,
// stores, token services, domain services, routes.
func Start(cfg *config.Config, env *config.Environment) error {
	initLogger(cfg.Logging.Level)

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return err
	}
	slog.Info("Database connected successfully")

	if err := migrations.Run(cfg.Database.URL()); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return err
	}
	slog.Info("Migrations completed successfully")

	redisClient, err := cache.Connect(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		return err
	}
	defer redisClient.Close()

	signingKey, err := token.LoadSigningKey(&cfg.Auth, env)
	if err != nil {
		slog.Error("Failed to load signing key", "error", err)
		return err
	}

	sessionStore := session.NewRedisStore(redisClient, nil)
	issuer := token.NewIssuer(signingKey, sessionStore, cfg.Auth.Issuer,
		cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL(), nil)
	validator := token.NewValidator(signingKey, sessionStore, cfg.Auth.Issuer, nil)

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	authService := auth.NewService(userRepo, sessionStore, issuer, validator)

	if cfg.Janitor.Enabled {
		janitor := session.NewJanitor(redisClient)
		if err := janitor.Start(cfg.Janitor.Schedule); err != nil {
			slog.Error("Failed to start session janitor", "error", err)
			return err
		}
		defer janitor.Stop()
		slog.Info("Session janitor started", "schedule", cfg.Janitor.Schedule)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	SetupRoutes(app, authService, userService, validator)

	addr := cfg.Server.Address()
	slog.Info("Server starting", "address", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}

	return nil
}

func initLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}
