// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewdigital/promptgate/internal/api"
	"github.com/crewdigital/promptgate/internal/api/handlers"
	"github.com/crewdigital/promptgate/internal/config"
	"github.com/crewdigital/promptgate/internal/db"
	"github.com/crewdigital/promptgate/internal/events"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Config holds the server configuration options.
type Config struct {
	ConfigFile string // Explicit config file (empty = search default locations)
	Port       int    // Port to run the server on (0 = use config default)
	Version    string // Version string to report
}

// LoadConfig loads application configuration, initializes logging and
// applies command line overrides.
func LoadConfig(cfg Config) (*config.Config, error) {
	var (
		appCfg *config.Config
		err    error
	)
	if cfg.ConfigFile != "" {
		appCfg, err = config.LoadFile(cfg.ConfigFile)
	} else {
		appCfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)

	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}
	return appCfg, nil
}

// OpenDatabase connects to the configured database and runs migrations,
// which also seed the default roles and permissions.
func OpenDatabase(appCfg *config.Config) (*gorm.DB, error) {
	database, err := db.New(appCfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")
	return database, nil
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, err := LoadConfig(cfg)
	if err != nil {
		return err
	}
	slog.Info("Starting promptgate server", "version", handlers.Version, "mode", appCfg.Server.Mode)

	database, err := OpenDatabase(appCfg)
	if err != nil {
		return err
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	instanceID, err := db.EnsureInstanceID(database)
	if err != nil {
		return fmt.Errorf("failed to initialize instance ID: %w", err)
	}
	slog.Info("Instance ID initialized", "instance_id", instanceID)

	if err := db.CreateDefaultAdmin(database, appCfg.Bootstrap); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	publisher, err := events.New(appCfg.Events)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()
	slog.Info("Event publisher initialized", "type", appCfg.Events.Type)

	generator := llm.NewOllamaClient(appCfg.LLM.BaseURL, appCfg.LLM.Timeout())
	slog.Info("Generation backend configured", "base_url", appCfg.LLM.BaseURL, "model", appCfg.LLM.Model)

	router, err := api.NewRouter(appCfg, database, generator, publisher)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("promptgate exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}
