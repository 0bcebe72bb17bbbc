// Command worker consumes background jobs (weekly advice, month
// reconciliation) from the message broker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finova/internal/app"
	"finova/internal/config"
	"finova/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Worker error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AMQP.URL == "" {
		return errors.New("AMQP_URL is required to run the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	logger.Named("worker").Infow("worker started", "queue", cfg.AMQP.Queue)
	if err := application.Broker.Consume(ctx, application.Jobs.Run); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
