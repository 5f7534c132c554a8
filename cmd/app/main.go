package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"weathersub.app/internal/app"
	"weathersub.app/internal/config"
	"weathersub.app/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading it")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.LogLevel))
	app.LogConfig(slog.Default(), cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting weather subscription service...")
		errCh <- application.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal...")
	case runErr = <-errCh:
		if runErr != nil {
			slog.Error("Application stopped with error", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
		slog.Error("Error during graceful shutdown", "error", err)
	}

	if runErr != nil {
		os.Exit(1)
	}
}
