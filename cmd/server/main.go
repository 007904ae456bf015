package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ntimofeev/auth-service/internal/config"
	"github.com/ntimofeev/auth-service/internal/server"
)

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	env := config.LoadEnv()

	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := server.Start(cfg, env); err != nil {
		os.Exit(1)
	}
}
