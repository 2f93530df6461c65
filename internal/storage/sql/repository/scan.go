package repository

import (
	"database/sql"
	"fmt"
	"time"

	"queuectl/internal/clock"
	"queuectl/internal/domain"
)

func secondsAgo(s int) time.Duration {
	return time.Duration(s) * time.Second
}

// rowScanner abstracts over *sql.Row and *sql.Rows so scanJob can back both
// a single-row QueryRow and a multi-row Query loop.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		j            domain.Job
		state        string
		runAt        string
		timeoutS     sql.NullInt64
		createdAt    string
		updatedAt    string
		lockedBy     sql.NullString
		lockedAt     sql.NullString
		lastExitCode sql.NullInt64
		durationMS   sql.NullInt64
	)

	err := row.Scan(
		&j.ID, &j.Command, &state, &j.Attempts, &j.MaxRetries, &j.BackoffBase, &j.Priority,
		&runAt, &timeoutS, &createdAt, &updatedAt, &lockedBy, &lockedAt,
		&lastExitCode, &j.Stdout, &j.Stderr, &durationMS,
	)
	if err != nil {
		return nil, err
	}

	j.State = domain.JobState(state)

	if j.RunAt, err = clock.ParseRunAt(runAt); err != nil {
		return nil, fmt.Errorf("invalid run_at %q: %w", runAt, err)
	}
	if j.CreatedAt, err = clock.ParseRunAt(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if j.UpdatedAt, err = clock.ParseRunAt(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}

	if timeoutS.Valid {
		v := int(timeoutS.Int64)
		j.TimeoutS = &v
	}
	if lockedBy.Valid {
		v := lockedBy.String
		j.LockedBy = &v
	}
	if lockedAt.Valid {
		t, err := clock.ParseRunAt(lockedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid locked_at %q: %w", lockedAt.String, err)
		}
		j.LockedAt = &t
	}
	if lastExitCode.Valid {
		v := int(lastExitCode.Int64)
		j.LastExitCode = &v
	}
	if durationMS.Valid {
		v := int(durationMS.Int64)
		j.DurationMS = &v
	}

	return &j, nil
}

func scanJobRows(rows *sql.Rows) (*domain.Job, error) {
	return scanJob(rows)
}
