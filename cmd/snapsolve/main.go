// Package main implements the entry point for the SnapSolve progress engine:
// it loads configuration, hydrates the progress and quiz stores from the
// configured storage backend, and serves the JSON API until interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("snapsolve: %v", err)
	}
}

// run loads configuration, builds the application and serves until ctx is
// canceled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.Bool("generation_enabled", cfg.LLM.GeminiAPIKey != ""),
		slog.Bool("upgrades_enabled", cfg.Entitlement.ReceiptSecret != ""),
		slog.Bool("event_publishing_enabled", cfg.Events.AMQPURL != ""))

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.serve(ctx, app.setupRouter())
}
