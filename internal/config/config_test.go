package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QUEUECTL_DB_PATH", "QUEUECTL_STATE_DIR", "QUEUECTL_LOG_LEVEL"} {
		old, ok := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, old)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".queuectl", "queue.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".queuectl"), cfg.StateDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_DBPathOverride(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Setenv("QUEUECTL_DB_PATH", "/tmp/custom/queue.db"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom/queue.db", cfg.DBPath)
	assert.Equal(t, "/tmp/custom", cfg.StateDir, "state dir should derive from db path's directory")
}

func TestConfig_LogDirAndPIDPath(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Setenv("QUEUECTL_STATE_DIR", "/tmp/queuectl-state"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/queuectl-state/logs", cfg.LogDir())
	assert.Equal(t, "/tmp/queuectl-state/workers.pid", cfg.PIDPath())
}
