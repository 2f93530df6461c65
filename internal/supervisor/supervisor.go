// Package supervisor launches and reaps worker processes. It never holds
// in-process handles to the workers it spawns — the PID file on disk is the
// only record, so `stop`/`status` from a fresh process invocation still
// work (spec.md §9 "No in-process shared state across workers").
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"queuectl/internal/clock"
	"queuectl/internal/domain"
	"queuectl/internal/storage/sql/repository"
)

// StaleWorkerThresholdS is the heartbeat staleness cutoff StartWorkers uses
// to purge dead registry entries before spawning (spec.md §4.7,
// §4.4 "cleanup_stale(stale_threshold_s=60)").
const StaleWorkerThresholdS = 60

// ActiveWorkerThresholdS is the heartbeat freshness cutoff used to decide
// whether a worker counts as alive for status reporting (spec.md §4.4
// "active_workers(stale_threshold_s=10)") — a tighter window than the
// purge threshold above, since a worker can be alive-but-briefly-slow
// without yet being a cleanup candidate.
const ActiveWorkerThresholdS = 10

// Supervisor manages the pool of worker OS processes for one queuectl
// installation.
type Supervisor struct {
	store      *repository.Store
	pidPath    string
	executable string // path to the queuectl binary, re-invoked as `worker-internal run`
	dbPath     string
}

// New returns a Supervisor. pidPath is the PID file location, executable is
// the queuectl binary to re-exec for each worker process, and dbPath is
// forwarded to each child via QUEUECTL_DB_PATH.
func New(store *repository.Store, pidPath, executable, dbPath string) *Supervisor {
	return &Supervisor{store: store, pidPath: pidPath, executable: executable, dbPath: dbPath}
}

// StartWorkers purges stale worker registry entries, spawns count detached
// worker processes, and persists their PIDs (spec.md §4.7).
func (s *Supervisor) StartWorkers(ctx context.Context, count int) ([]int, error) {
	if _, err := s.store.Workers().CleanupStale(ctx, StaleWorkerThresholdS); err != nil {
		return nil, fmt.Errorf("failed to clean up stale workers: %w", err)
	}

	supervisorPID := os.Getpid()
	pids := make([]int, 0, count)

	for i := 0; i < count; i++ {
		workerID := fmt.Sprintf("worker-%d-%d", i, supervisorPID)

		cmd := exec.Command(s.executable, "worker-internal", "run", "--worker-id", workerID)
		cmd.Env = append(os.Environ(), "QUEUECTL_DB_PATH="+s.dbPath)
		detachAttrs(cmd)

		if err := cmd.Start(); err != nil {
			return pids, fmt.Errorf("failed to spawn worker %s: %w", workerID, err)
		}
		pids = append(pids, cmd.Process.Pid)

		// The child is detached; release our handle so it doesn't become a
		// zombie once it exits and we never call Wait.
		_ = cmd.Process.Release()
	}

	if err := writePIDFile(s.pidPath, &pidFile{PIDs: pids, Timestamp: clock.Now().Unix()}); err != nil {
		return pids, err
	}

	return pids, nil
}

// StopWorkers reads the PID file, sends a graceful-terminate signal to each
// PID, polls for exit, and force-kills any still alive after timeout
// (spec.md §4.7). Returns the number of PIDs signaled.
func (s *Supervisor) StopWorkers(timeout time.Duration) (int, error) {
	pf, err := readPIDFile(s.pidPath)
	if err != nil {
		return 0, err
	}
	if len(pf.PIDs) == 0 {
		return 0, nil
	}

	signaled := 0
	for _, pid := range pf.PIDs {
		if err := terminateGracefully(pid); err != nil {
			// spec.md §7 SupervisorError: log and skip, never abort the
			// whole stop over a single bad PID.
			slog.Warn("failed to signal worker process", "pid", pid, "error", err)
			continue
		}
		signaled++
	}

	deadline := time.Now().Add(timeout)
	remaining := map[int]bool{}
	for _, pid := range pf.PIDs {
		remaining[pid] = true
	}

	for len(remaining) > 0 && time.Now().Before(deadline) {
		for pid := range remaining {
			if !isAlive(pid) {
				delete(remaining, pid)
			}
		}
		if len(remaining) == 0 {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	for pid := range remaining {
		_ = forceKill(pid)
	}

	if err := clearPIDFile(s.pidPath); err != nil {
		return signaled, err
	}
	return signaled, nil
}

// Status is the combined view returned by `queuectl worker status`.
type Status struct {
	SpawnedPIDs  []int
	AlivePIDs    []int
	ActiveWorkers []*domain.WorkerRecord
}

// Status reports which PIDs the supervisor spawned, which are still alive,
// and which workers are alive per the registry (spec.md §4.7: the PID file
// answers "who did I spawn," the registry answers "who is alive now").
func (s *Supervisor) Status(ctx context.Context) (*Status, error) {
	pf, err := readPIDFile(s.pidPath)
	if err != nil {
		return nil, err
	}

	var alive []int
	for _, pid := range pf.PIDs {
		if isAlive(pid) {
			alive = append(alive, pid)
		}
	}

	activeWorkers, err := s.store.Workers().ActiveWorkers(ctx, ActiveWorkerThresholdS)
	if err != nil {
		return nil, fmt.Errorf("failed to read active workers: %w", err)
	}

	return &Status{
		SpawnedPIDs:   pf.PIDs,
		AlivePIDs:     alive,
		ActiveWorkers: activeWorkers,
	}, nil
}

// DefaultPIDPath returns the conventional PID file location under the
// given state directory (spec.md §6: "${HOME}/.queuectl/workers.pid").
func DefaultPIDPath(stateDir string) string {
	return filepath.Join(stateDir, "workers.pid")
}
