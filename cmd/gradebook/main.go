// Package main is the entry point of the gradebook CLI.
//
// The architecture follows Clean Architecture:
// - Domain: entity kinds, validation, and the report catalog
// - Application: command (writes) and query (reports) services
// - Infrastructure: the relational store (PostgreSQL or embedded SQLite)
// - Interface: the terminal surface
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gradebook-hub/gradebook/config"
	"github.com/gradebook-hub/gradebook/internal/application/command"
	"github.com/gradebook-hub/gradebook/internal/application/query"
	"github.com/gradebook-hub/gradebook/internal/infrastructure/persistence/sqlstore"
	"github.com/gradebook-hub/gradebook/internal/interface/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Debug("starting gradebook",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := sqlstore.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if store.Dialect() == sqlstore.DialectPostgres {
		store.DB().SetMaxOpenConns(cfg.Database.MaxOpenConns)
		store.DB().SetMaxIdleConns(cfg.Database.MaxIdleConns)
		store.DB().SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
	log.Debug("store opened", "dialect", store.Dialect().String())

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	migrator := sqlstore.NewMigrator(store)
	if cfg.Database.AutoMigrate && !isMigrateCommand(args) {
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SERVICES AND DISPATCH
	// ─────────────────────────────────────────────────────────────────────────
	repo := sqlstore.NewJournalRepository(store)
	reporter := sqlstore.NewReportRepository(store)

	app := cli.NewApp(
		command.NewService(repo),
		query.NewService(reporter),
		migrator,
		os.Stdout,
		log,
	)

	return app.Run(ctx, args)
}

// isMigrateCommand reports whether the invocation manages the schema itself,
// in which case auto-migrate must stay out of the way (a rollback would be
// undone immediately otherwise).
func isMigrateCommand(args []string) bool {
	return len(args) > 0 && args[0] == "migrate"
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
