package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"queuectl/internal/domain"
)

// ConfigRepository manages the generic key/value config table backing
// `queuectl config get/set` and the live tunables consulted by the worker
// loop (spec.md §3, §6).
type ConfigRepository struct {
	store *Store
}

// EnsureDefaults seeds any recognized key missing from the table with its
// default value. Called by `queuectl init`; idempotent.
func (r *ConfigRepository) EnsureDefaults(ctx context.Context) error {
	for key, value := range domain.DefaultConfig {
		_, err := r.store.db.ExecContext(ctx, `
			INSERT INTO config (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING`, key, value)
		if err != nil {
			return fmt.Errorf("failed to seed config default %q: %w", key, err)
		}
	}
	return nil
}

// Get returns the raw string value of key, or ("", false) if unset.
func (r *ConfigRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.store.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a raw string value. Recognized keys are validated for type
// before being written (spec.md §6: "rejects invalid types").
func (r *ConfigRepository) Set(ctx context.Context, key, value string) error {
	if _, recognized := domain.DefaultConfig[key]; recognized {
		if err := validateConfigValue(key, value); err != nil {
			return err
		}
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %q: %w", key, err)
	}
	return nil
}

func validateConfigValue(key, value string) error {
	switch key {
	case domain.ConfigMaxRetries, domain.ConfigPollIntervalMS, domain.ConfigLockTimeoutS,
		domain.ConfigJobTimeoutS, domain.ConfigMaxBackoffS:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidConfigValue, key, value)
		}
	case domain.ConfigBackoffBase:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidConfigValue, key, value)
		}
	}
	return nil
}

// Snapshot reads every recognized key into a typed ConfigSnapshot, falling
// back to DefaultConfig for anything unset.
func (r *ConfigRepository) Snapshot(ctx context.Context) (domain.ConfigSnapshot, error) {
	raw := map[string]string{}
	rows, err := r.store.db.QueryContext(ctx, `SELECT key, value FROM config`)
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("failed to read config: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return domain.ConfigSnapshot{}, fmt.Errorf("failed to scan config row: %w", err)
		}
		raw[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.ConfigSnapshot{}, err
	}

	get := func(key string) string {
		if v, ok := raw[key]; ok {
			return v
		}
		return domain.DefaultConfig[key]
	}

	maxRetries, err := strconv.Atoi(get(domain.ConfigMaxRetries))
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigMaxRetries)
	}
	backoffBase, err := strconv.ParseFloat(get(domain.ConfigBackoffBase), 64)
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigBackoffBase)
	}
	pollIntervalMS, err := strconv.Atoi(get(domain.ConfigPollIntervalMS))
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigPollIntervalMS)
	}
	lockTimeoutS, err := strconv.Atoi(get(domain.ConfigLockTimeoutS))
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigLockTimeoutS)
	}
	jobTimeoutS, err := strconv.Atoi(get(domain.ConfigJobTimeoutS))
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigJobTimeoutS)
	}
	maxBackoffS, err := strconv.Atoi(get(domain.ConfigMaxBackoffS))
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfigValue, domain.ConfigMaxBackoffS)
	}

	return domain.ConfigSnapshot{
		MaxRetries:     maxRetries,
		BackoffBase:    backoffBase,
		PollIntervalMS: pollIntervalMS,
		LockTimeoutS:   lockTimeoutS,
		JobTimeoutS:    jobTimeoutS,
		MaxBackoffS:    maxBackoffS,
	}, nil
}

// All returns every config row as a plain map, for `queuectl config get`
// with no key argument.
func (r *ConfigRepository) All(ctx context.Context) (map[string]string, error) {
	raw := map[string]string{}
	rows, err := r.store.db.QueryContext(ctx, `SELECT key, value FROM config ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		raw[k] = v
	}
	return raw, rows.Err()
}
