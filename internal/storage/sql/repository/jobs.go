package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"queuectl/internal/clock"
	"queuectl/internal/domain"
)

// JobRepository is the sole writer of job rows (spec.md §2 item 3). Every
// method here implements one operation of the claim-execute-retry protocol
// in spec.md §4.1-§4.3.
type JobRepository struct {
	store *Store
}

// CreateParams carries the optional fields of Create; zero values mean
// "use the config snapshot / default."
type CreateParams struct {
	ID          string
	Command     string
	Priority    int
	RunAt       string // ISO-8601, empty = now
	TimeoutS    *int
	MaxRetries  *int
	BackoffBase *float64
}

// Create inserts a new pending job. max_retries and backoff_base are
// snapshotted from the live config if not explicitly supplied (spec.md
// §4.1, §9 "Configuration snapshotting") — the snapshot is frozen on the
// job row and is immune to later config changes.
func (r *JobRepository) Create(ctx context.Context, p CreateParams, snapshot domain.ConfigSnapshot) (*domain.Job, error) {
	if p.Command == "" {
		return nil, domain.ErrInvalidCommand
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	} else {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateID, id)
		}
	}

	now := clock.Now()

	runAt := now
	if p.RunAt != "" {
		t, err := clock.ParseRunAt(p.RunAt)
		if err != nil {
			return nil, err
		}
		runAt = t
	}

	maxRetries := snapshot.MaxRetries
	if p.MaxRetries != nil {
		maxRetries = *p.MaxRetries
	}
	backoffBase := snapshot.BackoffBase
	if p.BackoffBase != nil {
		backoffBase = *p.BackoffBase
	}

	job := &domain.Job{
		ID:          id,
		Command:     p.Command,
		State:       domain.JobPending,
		Attempts:    0,
		MaxRetries:  maxRetries,
		BackoffBase: backoffBase,
		Priority:    p.Priority,
		RunAt:       runAt,
		TimeoutS:    p.TimeoutS,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, command, state, attempts, max_retries, backoff_base, priority,
			run_at, timeout_s, created_at, updated_at, stdout, stderr
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '')`,
		job.ID, job.Command, job.State, job.Attempts, job.MaxRetries, job.BackoffBase,
		job.Priority, clock.FormatUTC(job.RunAt), job.TimeoutS, clock.FormatUTC(job.CreatedAt), clock.FormatUTC(job.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

func (r *JobRepository) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM jobs WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check job existence: %w", err)
	}
	return n > 0, nil
}

// Claim atomically selects and locks at most one eligible job (spec.md
// §4.2). It implements the "conditional UPDATE ... RETURNING that updates
// at most one row" strategy: the subquery picks the single best candidate
// under the eligibility predicate and total order, the outer UPDATE
// transitions it to processing, and SQLite's single-writer serialization
// makes the whole statement atomic across concurrent worker processes.
// A processing job is eligible only once its lock is older than
// lockTimeoutS, which is how a crashed worker's claim is recovered.
// Returns (nil, nil) when no job is eligible.
func (r *JobRepository) Claim(ctx context.Context, workerID string, lockTimeoutS int) (*domain.Job, error) {
	now := clock.Now()
	nowStr := clock.FormatUTC(now)
	lockThreshold := clock.FormatUTC(now.Add(-time.Duration(lockTimeoutS) * time.Second))

	row := r.store.db.QueryRowContext(ctx, `
		UPDATE jobs
		SET state = ?, locked_by = ?, locked_at = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM jobs
			WHERE state IN (?, ?, ?)
			  AND run_at <= ?
			  AND (locked_by IS NULL OR locked_at IS NULL OR locked_at < ?)
			ORDER BY run_at ASC, priority DESC, created_at ASC
			LIMIT 1
		)
		RETURNING id, command, state, attempts, max_retries, backoff_base, priority,
		          run_at, timeout_s, created_at, updated_at, locked_by, locked_at,
		          last_exit_code, stdout, stderr, duration_ms`,
		domain.JobProcessing, workerID, nowStr, nowStr,
		domain.JobPending, domain.JobFailed, domain.JobProcessing, nowStr, lockThreshold,
	)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return job, nil
}

// MarkSuccess records a successful execution. No-op if the job no longer
// exists (spec.md §4.3: "If job absent: no-op (idempotent)"). attempts is
// deliberately not incremented — see spec.md §9's open question.
func (r *JobRepository) MarkSuccess(ctx context.Context, id string, exitCode int, stdout, stderr string, durationMS int) error {
	now := clock.FormatUTC(clock.Now())
	_, err := r.store.db.ExecContext(ctx, `
		UPDATE jobs
		SET state = ?, last_exit_code = ?, stdout = ?, stderr = ?, duration_ms = ?,
		    locked_by = NULL, locked_at = NULL, updated_at = ?
		WHERE id = ?`,
		domain.JobCompleted, exitCode, domain.Truncate(stdout), domain.Truncate(stderr), durationMS, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job success: %w", err)
	}
	return nil
}

// MarkFailure records a failed execution, advancing the job to `failed`
// with a backed-off run_at, or to `dead` if max_retries is exhausted
// (spec.md §4.3).
func (r *JobRepository) MarkFailure(ctx context.Context, id string, exitCode int, stdout, stderr string, durationMS int, maxBackoffS int) error {
	job, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return nil // no-op: job absent
	}

	attempts := job.Attempts + 1
	now := clock.Now()
	nowStr := clock.FormatUTC(now)

	if attempts >= job.MaxRetries {
		_, err := r.store.db.ExecContext(ctx, `
			UPDATE jobs
			SET state = ?, attempts = ?, last_exit_code = ?, stdout = ?, stderr = ?,
			    duration_ms = ?, locked_by = NULL, locked_at = NULL, updated_at = ?
			WHERE id = ?`,
			domain.JobDead, attempts, exitCode, domain.Truncate(stdout), domain.Truncate(stderr), durationMS, nowStr, id,
		)
		if err != nil {
			return fmt.Errorf("failed to mark job dead: %w", err)
		}
		return nil
	}

	delay := clock.BackoffDelay(attempts, job.BackoffBase, float64(maxBackoffS))
	nextRunAt := clock.FormatUTC(now.Add(delay))

	_, err = r.store.db.ExecContext(ctx, `
		UPDATE jobs
		SET state = ?, attempts = ?, last_exit_code = ?, stdout = ?, stderr = ?,
		    duration_ms = ?, locked_by = NULL, locked_at = NULL, run_at = ?, updated_at = ?
		WHERE id = ?`,
		domain.JobFailed, attempts, exitCode, domain.Truncate(stdout), domain.Truncate(stderr), durationMS, nextRunAt, nowStr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// RetryFromDLQ transitions a dead job back to pending, resetting attempts
// and run_at (spec.md §4.3). Returns false if the job doesn't exist or
// isn't dead.
func (r *JobRepository) RetryFromDLQ(ctx context.Context, id string) (bool, error) {
	now := clock.FormatUTC(clock.Now())
	result, err := r.store.db.ExecContext(ctx, `
		UPDATE jobs
		SET state = ?, attempts = 0, run_at = ?, locked_by = NULL, locked_at = NULL, updated_at = ?
		WHERE id = ? AND state = ?`,
		domain.JobPending, now, now, id, domain.JobDead,
	)
	if err != nil {
		return false, fmt.Errorf("failed to retry job from dlq: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Get returns a single job, or (nil, nil) if it doesn't exist.
func (r *JobRepository) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, command, state, attempts, max_retries, backoff_base, priority,
		       run_at, timeout_s, created_at, updated_at, locked_by, locked_at,
		       last_exit_code, stdout, stderr, duration_ms
		FROM jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListParams filters/limits List.
type ListParams struct {
	State             domain.JobState // empty = all states
	Limit             int             // 0 = unlimited
	PendingReadyOnly  bool            // only pending jobs with run_at <= now
}

// List returns jobs matching the given filter, most recently created first.
func (r *JobRepository) List(ctx context.Context, p ListParams) ([]*domain.Job, error) {
	query := `
		SELECT id, command, state, attempts, max_retries, backoff_base, priority,
		       run_at, timeout_s, created_at, updated_at, locked_by, locked_at,
		       last_exit_code, stdout, stderr, duration_ms
		FROM jobs WHERE 1=1`
	var args []any

	if p.State != "" {
		query += ` AND state = ?`
		args = append(args, p.State)
	}
	if p.PendingReadyOnly {
		query += ` AND state = ? AND run_at <= ?`
		args = append(args, domain.JobPending, clock.FormatUTC(clock.Now()))
	}
	query += ` ORDER BY created_at DESC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJobRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats summarizes job-state counts and timing for `status`.
type Stats struct {
	StateCounts      map[domain.JobState]int
	OldestPendingAge *float64 // seconds, nil if no pending jobs
	AvgDurationMS    *float64 // over completed jobs with a recorded duration
}

// Stats computes the aggregate counts backing the `status` command.
func (r *JobRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{StateCounts: map[domain.JobState]int{}}

	rows, err := r.store.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count job states: %w", err)
	}
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		stats.StateCounts[domain.JobState(state)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var oldestCreatedAt sql.NullString
	err = r.store.db.QueryRowContext(ctx, `SELECT MIN(created_at) FROM jobs WHERE state = ?`, domain.JobPending).Scan(&oldestCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find oldest pending job: %w", err)
	}
	if oldestCreatedAt.Valid {
		t, err := clock.ParseRunAt(oldestCreatedAt.String)
		if err == nil {
			age := clock.Now().Sub(t).Seconds()
			stats.OldestPendingAge = &age
		}
	}

	var avgDuration sql.NullFloat64
	err = r.store.db.QueryRowContext(ctx, `SELECT AVG(duration_ms) FROM jobs WHERE state = ? AND duration_ms IS NOT NULL`, domain.JobCompleted).Scan(&avgDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to average durations: %w", err)
	}
	if avgDuration.Valid {
		stats.AvgDurationMS = &avgDuration.Float64
	}

	return stats, nil
}
