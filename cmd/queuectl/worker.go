package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	queuectlconfig "queuectl/internal/config"
	"queuectl/internal/logging"
	sqlstore "queuectl/internal/storage/sql"
	"queuectl/internal/supervisor"
	"queuectl/internal/worker"
)

const stopTimeout = 30 * time.Second

// runWorker dispatches `worker start|stop|status` (spec.md §4.7, §6).
func runWorker(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queuectl worker <start|stop|status> [arguments]")
		return 1
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "start":
		return runWorkerStart(ctx, cfg, logger, rest)
	case "stop":
		return runWorkerStop(ctx, cfg, logger)
	case "status":
		return runWorkerStatus(ctx, cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown worker subcommand %q\n", sub)
		return 1
	}
}

func runWorkerStart(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("worker start", flag.ContinueOnError)
	count := fs.Int("count", 1, "number of worker processes to spawn")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "error: --count must be positive")
		return 1
	}

	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to open store:", err)
		return 1
	}
	defer store.Close()

	executable, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to resolve queuectl executable path:", err)
		return 1
	}

	sup := supervisor.New(store, cfg.PIDPath(), executable, cfg.DBPath)
	pids, err := sup.StartWorkers(ctx, *count)
	if err != nil {
		logger.ErrorContext(ctx, "worker start failed", "error", err)
		fmt.Fprintln(os.Stderr, "error: failed to start workers:", err)
		return 1
	}

	fmt.Printf("started %d worker process(es): %v\n", len(pids), pids)
	return 0
}

func runWorkerStop(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger) int {
	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to open store:", err)
		return 1
	}
	defer store.Close()

	sup := supervisor.New(store, cfg.PIDPath(), "", cfg.DBPath)
	signaled, err := sup.StopWorkers(stopTimeout)
	if err != nil {
		logger.ErrorContext(ctx, "worker stop failed", "error", err)
		fmt.Fprintln(os.Stderr, "error: failed to stop workers:", err)
		return 1
	}

	fmt.Printf("stopped %d worker process(es)\n", signaled)
	return 0
}

func runWorkerStatus(ctx context.Context, cfg *queuectlconfig.Config, logger *slog.Logger) int {
	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to open store:", err)
		return 1
	}
	defer store.Close()

	sup := supervisor.New(store, cfg.PIDPath(), "", cfg.DBPath)
	status, err := sup.Status(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "worker status failed", "error", err)
		fmt.Fprintln(os.Stderr, "error: failed to read worker status:", err)
		return 1
	}

	fmt.Printf("spawned pids:   %v\n", status.SpawnedPIDs)
	fmt.Printf("alive pids:     %v\n", status.AlivePIDs)
	fmt.Printf("active workers (registry):\n")
	for _, w := range status.ActiveWorkers {
		fmt.Printf("  %s  last_heartbeat=%s\n", w.ID, w.LastHeartbeat.Format(time.RFC3339))
	}
	return 0
}

// runWorkerInternal is the re-exec target the supervisor spawns as a
// detached child (spec.md §4.7). It runs worker.Worker.Run until signaled,
// logging to its own per-worker file rather than the shared CLI log.
func runWorkerInternal(args []string) int {
	fs := flag.NewFlagSet("worker-internal run", flag.ContinueOnError)
	workerID := fs.String("worker-id", "", "worker id to register as (required)")

	if len(args) == 0 || args[0] != "run" {
		fmt.Fprintln(os.Stderr, "usage: queuectl worker-internal run --worker-id <id>")
		return 1
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}
	if *workerID == "" {
		fmt.Fprintln(os.Stderr, "error: --worker-id is required")
		return 1
	}

	cfg, err := queuectlconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	logger, err := logging.NewWorkerLogger(cfg.LogDir(), *workerID, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to set up worker logging:", err)
		return 1
	}
	slog.SetDefault(logger)

	ctx := context.Background()

	store, err := sqlstore.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("worker failed to open store", "error", err)
		return 1
	}
	defer store.Close()

	w := worker.New(*workerID, store)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker exited with error", "worker_id", *workerID, "error", err)
		return 1
	}
	return 0
}
