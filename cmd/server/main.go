package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/remitquote/infra/initializer"
	"github.com/amirasaad/remitquote/pkg/app"
	"github.com/amirasaad/remitquote/pkg/config"
	"github.com/amirasaad/remitquote/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

// @title Remit Quote API
// @version 1.0.0
// @description Indicative fees, exchange rates and delivery estimates for cross-border transfers
// @contact.name API Support
// @license.name MIT
// @host localhost:3000
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	fiberApp, cleanup, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"env", cfg.Env,
			"address", cfg.Server.Addr(),
			"scheme", cfg.Server.Scheme,
		)
		errCh <- fiberApp.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// newServer wires dependencies and routes for cfg.
func newServer(cfg *config.App, opts ...initializer.Option) (*fiber.App, func(), error) {
	deps, cleanup, err := initializer.InitializeDependencies(cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return webapi.SetupApp(app.New(deps, cfg)), cleanup, nil
}
