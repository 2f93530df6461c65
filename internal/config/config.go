// Package config loads queuectl's process-level configuration (store
// location, log destinations) from the environment, distinct from the
// live config table in the store (internal/domain.ConfigSnapshot) which
// governs queue behavior and is reachable via `config get/set`.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"queuectl/internal/env"
)

// Config holds process-level settings every queuectl command shares.
type Config struct {
	// DBPath overrides the store location (spec.md §6: QUEUECTL_DB_PATH,
	// default "${HOME}/.queuectl/queue.db").
	DBPath string `env:"QUEUECTL_DB_PATH"`

	// StateDir is the directory holding the PID file and logs; derived
	// from DBPath's directory unless overridden.
	StateDir string `env:"QUEUECTL_STATE_DIR"`

	// LogLevel controls the minimum level emitted by the slog handler.
	// Empty means "info" — see Load.
	LogLevel string `env:"QUEUECTL_LOG_LEVEL"`
}

// Load reads Config from the environment and fills in spec.md §6's
// defaults for anything left unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".queuectl", "queue.db")
	}

	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Dir(cfg.DBPath)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// LogDir is the directory holding queuectl.log and per-worker log files
// (spec.md §6: "${HOME}/.queuectl/logs/").
func (c *Config) LogDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// PIDPath is the supervisor's PID file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.StateDir, "workers.pid")
}
