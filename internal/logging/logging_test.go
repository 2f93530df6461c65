package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/logging"
)

func TestNewCLILogger_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := logging.NewCLILogger(dir, "info")
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(filepath.Join(dir, "queuectl.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "value")
}

func TestNewWorkerLogger_PerWorkerFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := logging.NewWorkerLogger(dir, "worker-0-123", "debug")
	require.NoError(t, err)
	logger.Debug("worker started")

	data, err := os.ReadFile(filepath.Join(dir, "worker-worker-0-123.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker started")
}
