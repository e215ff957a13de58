// Package main is the entry point for the renderback API server.
//
// The main package stays minimal. Its job is to:
// 1. Read configuration (environment and an optional .env file)
// 2. Create dependencies (logger, database pool)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mohamedamineameur/renderback/internal/config"
	"github.com/mohamedamineameur/renderback/internal/repository/database"
	"github.com/mohamedamineameur/renderback/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// === 3. OPEN THE DATABASE POOL ===
	// Open does not dial. An unreachable database is reported by
	// InitDatabase below and does not stop the server from starting.
	dbCfg := database.Config{
		Driver:          database.Driver(cfg.Database.Driver),
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		Path:            cfg.Database.SQLitePath,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	if dbCfg.Driver == database.SQLite && dbCfg.Path != ":memory:" {
		// Like `mkdir -p`: the data directory may not exist on a fresh checkout.
		dbDir := filepath.Dir(dbCfg.Path)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.Metrics.Enabled,
	}, db, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		db.Close()
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.InitTimeout)
	srv.InitDatabase(initCtx)
	cancel()

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger from config. Validate has already
// restricted Level and Format to known values.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
