package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

// withTestEnv points QUEUECTL_DB_PATH/QUEUECTL_STATE_DIR at a fresh temp
// directory for the duration of the test.
func withTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "queue.db")

	for key, value := range map[string]string{
		"QUEUECTL_DB_PATH":   dbPath,
		"QUEUECTL_STATE_DIR": dir,
		"QUEUECTL_LOG_LEVEL": "error",
	} {
		require.NoError(t, os.Setenv(key, value))
		t.Cleanup(func(k string) func() { return func() { os.Unsetenv(k) } }(key))
	}
	return dir
}

func TestRun_InitThenEnqueueThenList(t *testing.T) {
	withTestEnv(t)

	code := run([]string{"init"})
	assert.Equal(t, 0, code)

	enqueueOut := captureStdout(t, func() {
		code = run([]string{"enqueue", `{"command":"echo hello"}`})
	})
	require.Equal(t, 0, code)
	id := strings.TrimSpace(enqueueOut)
	require.NotEmpty(t, id)

	listOut := captureStdout(t, func() {
		code = run([]string{"list"})
	})
	require.Equal(t, 0, code)
	assert.Contains(t, listOut, id)
	assert.Contains(t, listOut, "echo hello")
}

func TestRun_EnqueueArray(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	var code int
	out := captureStdout(t, func() {
		code = run([]string{"enqueue", `[{"command":"echo one"},{"command":"echo two"}]`})
	})
	require.Equal(t, 0, code)
	ids := strings.Fields(out)
	assert.Len(t, ids, 2)
}

func TestRun_EnqueueMissingCommandFails(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	code := run([]string{"enqueue", `{"priority":1}`})
	assert.Equal(t, 1, code)
}

func TestRun_LogsUnknownJobFails(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	code := run([]string{"logs", "does-not-exist"})
	assert.Equal(t, 1, code)
}

func TestRun_ConfigGetSet(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	require.Equal(t, 0, run([]string{"config", "set", "max_retries", "7"}))

	out := captureStdout(t, func() {
		require.Equal(t, 0, run([]string{"config", "get", "max_retries"}))
	})
	assert.Equal(t, "7", strings.TrimSpace(out))
}

func TestRun_ConfigSetInvalidTypeFails(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	code := run([]string{"config", "set", "max_retries", "not-a-number"})
	assert.Equal(t, 1, code)
}

func TestRun_DLQRetryUnknownJobFails(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))

	code := run([]string{"dlq", "retry", "does-not-exist"})
	assert.Equal(t, 1, code)
}

func TestRun_StatusJSON(t *testing.T) {
	withTestEnv(t)
	require.Equal(t, 0, run([]string{"init"}))
	require.Equal(t, 0, run([]string{"enqueue", `{"command":"echo hi"}`}))

	out := captureStdout(t, func() {
		require.Equal(t, 0, run([]string{"status", "--json"}))
	})
	assert.Contains(t, out, `"pending": 1`)
}

func TestRun_UnknownCommandFails(t *testing.T) {
	withTestEnv(t)
	assert.Equal(t, 1, run([]string{"bogus"}))
}

func TestRun_NoArgsFails(t *testing.T) {
	assert.Equal(t, 1, run(nil))
}
