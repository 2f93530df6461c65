package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	queuectlconfig "queuectl/internal/config"
	sqlstore "queuectl/internal/storage/sql"
)

// runInit creates the store (applying migrations if the file doesn't yet
// exist) and seeds the config table's recognized keys with their defaults
// if they're missing (spec.md §6 "create the store and seed default config
// if absent").
func runInit(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger) int {
	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		logger.ErrorContext(ctx, "init failed to open store", "error", err)
		fmt.Fprintln(os.Stderr, "error: failed to open store:", err)
		return 1
	}
	defer store.Close()

	if err := store.Config().EnsureDefaults(ctx); err != nil {
		logger.ErrorContext(ctx, "init failed to seed config", "error", err)
		fmt.Fprintln(os.Stderr, "error: failed to seed default config:", err)
		return 1
	}

	fmt.Printf("initialized queuectl store at %s\n", cfg.DBPath)
	return 0
}
