package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finova/internal/app"
	"finova/internal/config"
	"finova/internal/database"
	"finova/internal/logger"
	"finova/internal/router"
	"finova/internal/validator"
)

// @title           Finova API
// @version         1.0
// @description     Finova is a household finance tracker for two partners: transactions, categories, budgets, savings goals, investments and weekly advice reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Session.Password == "" && cfg.Session.PasswordHash == "" {
		log.Warn("APP_PASSWORD is not set; every login will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.DB.RunMigrations(database.DefaultMigrationsSource); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := application.SeedCategories(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	validator.Register()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(application.RouterDeps()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finova server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
