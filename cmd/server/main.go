package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/envdash/internal/config"
	"github.com/JonMunkholm/envdash/internal/core"
	"github.com/JonMunkholm/envdash/internal/logging"
	"github.com/JonMunkholm/envdash/internal/store"
	"github.com/JonMunkholm/envdash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_path", cfg.Data.Path,
		"country", cfg.Data.Country,
		"history_enabled", cfg.Database.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Load history is optional; without a database the dashboard still works.
	var recorder core.LoadRecorder
	if cfg.Database.Enabled() {
		pool, history, err := openHistory(ctx, &cfg.Database)
		if err != nil {
			slog.Error("failed to open load history", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		recorder = history
	}

	// Validate already checked the policy.
	policy, _ := core.ParseDuplicateYears(cfg.Data.DuplicateYears)

	service := core.NewService(core.ServiceConfig{
		Path:           cfg.Data.Path,
		Country:        cfg.Data.Country,
		DuplicateYears: policy,
	}, core.NewCache(), recorder)

	// Warm the cache so a bad source shows up in the startup log. The
	// dashboard still starts and reports the error per request.
	if _, err := service.Dataset(ctx); err != nil {
		slog.Warn("initial dataset load failed", "error", err, "code", core.MapError(err).Code)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openHistory connects to Postgres and prepares the load history table.
func openHistory(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, *store.History, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	history := store.NewHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, history, nil
}
