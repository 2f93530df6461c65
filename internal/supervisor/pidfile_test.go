package supervisor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.pid")

	empty, err := readPIDFile(path)
	require.NoError(t, err)
	assert.Empty(t, empty.PIDs, "a missing pid file reads as empty, not an error")

	want := &pidFile{PIDs: []int{111, 222, 333}, Timestamp: 1700000000}
	require.NoError(t, writePIDFile(path, want))

	got, err := readPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.PIDs, got.PIDs)
	assert.Equal(t, want.Timestamp, got.Timestamp)

	require.NoError(t, clearPIDFile(path))
	cleared, err := readPIDFile(path)
	require.NoError(t, err)
	assert.Empty(t, cleared.PIDs)
}

func TestClearPIDFile_MissingIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.pid")
	assert.NoError(t, clearPIDFile(path))
}
