// Package worker implements the claim-execute-record loop a single worker
// process runs (spec.md §4.6): init → registered → polling ↔ executing →
// terminating → deregistered.
package worker

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"queuectl/internal/domain"
	"queuectl/internal/executor"
	"queuectl/internal/storage/sql/repository"
)

const heartbeatInterval = 2 * time.Second

// Worker runs the polling loop for a single worker id against a shared
// store. It processes exactly one job at a time and never holds more than
// one claim (spec.md §4.6).
type Worker struct {
	id    string
	store *repository.Store

	shutdown atomic.Bool
}

// New returns a Worker identified by id, backed by store.
func New(id string, store *repository.Store) *Worker {
	return &Worker{id: id, store: store}
}

// Run executes the worker loop until a shutdown signal is received or ctx
// is cancelled. Deregistration always runs on exit, including on panic
// recovery, matching the "deregister must run even if the loop aborts
// abnormally" requirement.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.store.Workers().Register(ctx, w.id); err != nil {
		return err
	}
	defer func() {
		if err := w.store.Workers().Deregister(context.WithoutCancel(ctx), w.id); err != nil {
			slog.ErrorContext(ctx, "failed to deregister worker", "worker_id", w.id, "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			slog.InfoContext(ctx, "worker received shutdown signal", "worker_id", w.id)
			w.shutdown.Store(true)
		case <-ctx.Done():
		}
	}()

	slog.InfoContext(ctx, "worker started", "worker_id", w.id)

	lastHeartbeat := time.Now()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		snapshot, err := w.store.Config().Snapshot(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "worker exiting: failed to read config", "worker_id", w.id, "error", err)
			return err
		}

		job, err := w.store.Jobs().Claim(ctx, w.id, snapshot.LockTimeoutS)
		if err != nil {
			slog.ErrorContext(ctx, "worker exiting: claim failed", "worker_id", w.id, "error", err)
			return err
		}

		if job != nil {
			w.processJob(ctx, job, snapshot)
		} else {
			sleep(ctx, time.Duration(snapshot.PollIntervalMS)*time.Millisecond)
		}

		if time.Since(lastHeartbeat) >= heartbeatInterval {
			if err := w.store.Workers().Heartbeat(ctx, w.id); err != nil {
				slog.WarnContext(ctx, "heartbeat failed", "worker_id", w.id, "error", err)
			}
			lastHeartbeat = time.Now()
		}

		if w.shutdown.Load() {
			slog.InfoContext(ctx, "worker shutting down", "worker_id", w.id)
			return nil
		}
	}
}

// processJob executes one claimed job and records its outcome. Any panic
// during execution is recovered and converted into a failure record
// (spec.md §7 "WorkerInternalError") rather than crashing the worker.
func (w *Worker) processJob(ctx context.Context, job *domain.Job, snapshot domain.ConfigSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "recovered panic while processing job", "worker_id", w.id, "job_id", job.ID, "panic", r)
			if err := w.store.Jobs().MarkFailure(ctx, job.ID, -1, "", "Worker error: panic during execution", 0, snapshot.MaxBackoffS); err != nil {
				slog.ErrorContext(ctx, "failed to record panic failure", "worker_id", w.id, "job_id", job.ID, "error", err)
			}
		}
	}()

	timeoutS := effectiveTimeout(job, snapshot)

	slog.InfoContext(ctx, "claimed job", "worker_id", w.id, "job_id", job.ID, "command", job.Command)

	result := executor.Execute(ctx, job.Command, timeoutS)

	if result.ExitCode == 0 {
		if err := w.store.Jobs().MarkSuccess(ctx, job.ID, result.ExitCode, result.Stdout, result.Stderr, result.DurationMS); err != nil {
			slog.ErrorContext(ctx, "failed to record success", "worker_id", w.id, "job_id", job.ID, "error", err)
		}
		slog.InfoContext(ctx, "job completed", "worker_id", w.id, "job_id", job.ID, "duration_ms", result.DurationMS)
		return
	}

	if err := w.store.Jobs().MarkFailure(ctx, job.ID, result.ExitCode, result.Stdout, result.Stderr, result.DurationMS, snapshot.MaxBackoffS); err != nil {
		slog.ErrorContext(ctx, "failed to record failure", "worker_id", w.id, "job_id", job.ID, "error", err)
	}
	slog.WarnContext(ctx, "job failed", "worker_id", w.id, "job_id", job.ID, "exit_code", result.ExitCode, "timed_out", result.TimedOut)
}

// effectiveTimeout applies spec.md §4.6's precedence: the job's own
// timeout_s if positive, else the live config's job_timeout_s if positive,
// else no timeout.
func effectiveTimeout(job *domain.Job, snapshot domain.ConfigSnapshot) int {
	if job.TimeoutS != nil && *job.TimeoutS > 0 {
		return *job.TimeoutS
	}
	if snapshot.JobTimeoutS > 0 {
		return snapshot.JobTimeoutS
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
