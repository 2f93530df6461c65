// Command queuectl is the CLI front end for the persistent job queue:
// enqueue/list/inspect jobs, manage the worker pool, and read/write live
// config (spec.md §6). It never holds long-lived in-process state of its
// own — every invocation opens the store, does one thing, and exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	queuectlconfig "queuectl/internal/config"
	"queuectl/internal/logging"
	sqlstore "queuectl/internal/storage/sql"
	"queuectl/internal/storage/sql/repository"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	cmd, rest := args[0], args[1:]

	// worker-internal is not part of the documented CLI surface (spec.md
	// §6 lists it for completeness of the boundary) — it's the re-exec
	// target the supervisor spawns, so it sets up its own logger writing
	// to the per-worker log file instead of the shared CLI log.
	if cmd == "worker-internal" {
		return runWorkerInternal(rest)
	}

	cfg, err := queuectlconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	logger, err := logging.NewCLILogger(cfg.LogDir(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to set up logging:", err)
		return 1
	}

	ctx := context.Background()

	switch cmd {
	case "init":
		return runInit(ctx, cfg, logger)
	case "enqueue":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runEnqueue(ctx, store, rest) })
	case "status":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runStatus(ctx, store, rest) })
	case "list":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runList(ctx, store, rest) })
	case "logs":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runLogs(ctx, store, rest) })
	case "worker":
		return runWorker(ctx, cfg, logger, rest)
	case "dlq":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runDLQ(ctx, store, rest) })
	case "config":
		return withStore(ctx, cfg, logger, func(store *repository.Store) int { return runConfig(ctx, store, rest) })
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: queuectl <command> [arguments]

commands:
  init                        create the store and seed default config
  enqueue <json|--file path>  insert one or many jobs
  status [--json]             job-state counts, worker counts, config
  list [--state S] [--limit N] [--pending-ready-only] [--json]
  logs <id>                   show stdout/stderr, exit code, duration
  worker start --count N      spawn worker processes
  worker stop                 stop worker processes
  dlq list [--limit N] [--json]
  dlq retry <id>
  config get [key]
  config set <key> <value>`)
}

// withStore opens the store at cfg.DBPath, runs fn, and always closes it.
func withStore(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger, fn func(*repository.Store) int) int {
	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open store", "error", err, "db_path", cfg.DBPath)
		fmt.Fprintln(os.Stderr, "error: failed to open store:", err)
		return 1
	}
	defer store.Close()
	return fn(store)
}
