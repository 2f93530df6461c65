package repository

import (
	"context"
	"database/sql"
	"fmt"

	"queuectl/internal/clock"
	"queuectl/internal/domain"
)

// WorkerRepository manages the worker registry (spec.md §4.6): who is
// registered and when they were last seen alive.
type WorkerRepository struct {
	store *Store
}

// Register inserts a worker row, or refreshes started_at/last_heartbeat if
// the id is reused across a restart.
func (r *WorkerRepository) Register(ctx context.Context, id string) error {
	now := clock.FormatUTC(clock.Now())
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO workers (id, started_at, last_heartbeat, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, last_heartbeat = excluded.last_heartbeat, status = excluded.status`,
		id, now, now, domain.WorkerActive,
	)
	if err != nil {
		return fmt.Errorf("failed to register worker: %w", err)
	}
	return nil
}

// Heartbeat refreshes a worker's last_heartbeat column.
func (r *WorkerRepository) Heartbeat(ctx context.Context, id string) error {
	now := clock.FormatUTC(clock.Now())
	result, err := r.store.db.ExecContext(ctx, `UPDATE workers SET last_heartbeat = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("failed to heartbeat worker: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return r.Register(ctx, id)
	}
	return nil
}

// Deregister removes a worker's row on clean shutdown.
func (r *WorkerRepository) Deregister(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deregister worker: %w", err)
	}
	return nil
}

// ActiveWorkers returns workers whose heartbeat is fresher than staleAfterS
// seconds (spec.md §4.6: a stale heartbeat means the process died without
// deregistering).
func (r *WorkerRepository) ActiveWorkers(ctx context.Context, staleAfterS int) ([]*domain.WorkerRecord, error) {
	threshold := clock.FormatUTC(clock.Now().Add(-secondsAgo(staleAfterS)))

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, started_at, last_heartbeat, status FROM workers
		WHERE last_heartbeat >= ?
		ORDER BY started_at ASC`, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list active workers: %w", err)
	}
	defer rows.Close()

	var workers []*domain.WorkerRecord
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// CleanupStale deletes worker rows whose heartbeat is older than
// staleAfterS seconds, and returns the number removed. Called by
// Supervisor.StartWorkers before spawning so dead entries don't accumulate
// forever.
func (r *WorkerRepository) CleanupStale(ctx context.Context, staleAfterS int) (int, error) {
	threshold := clock.FormatUTC(clock.Now().Add(-secondsAgo(staleAfterS)))
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM workers WHERE last_heartbeat < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up stale workers: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

func scanWorker(rows *sql.Rows) (*domain.WorkerRecord, error) {
	var (
		w             domain.WorkerRecord
		startedAt     string
		lastHeartbeat string
		status        string
	)
	if err := rows.Scan(&w.ID, &startedAt, &lastHeartbeat, &status); err != nil {
		return nil, err
	}
	w.Status = domain.WorkerStatus(status)

	var err error
	if w.StartedAt, err = clock.ParseRunAt(startedAt); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	if w.LastHeartbeat, err = clock.ParseRunAt(lastHeartbeat); err != nil {
		return nil, fmt.Errorf("invalid last_heartbeat %q: %w", lastHeartbeat, err)
	}
	return &w, nil
}
