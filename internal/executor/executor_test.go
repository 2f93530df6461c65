package executor_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuectl/internal/executor"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}
}

func TestExecute_Success(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "echo hello", 0)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestExecute_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	// `exit` is a shell builtin, so it runs through an explicit sh -c: a
	// command without shell operators is exec'd directly as argv.
	res := executor.Execute(context.Background(), `sh -c "exit 7"`, 0)
	assert.Equal(t, 7, res.ExitCode)
}

func TestExecute_ArgvPath_NoShellMetachars(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "printf %s hi", 0)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hi", res.Stdout)
}

func TestExecute_ShellOperators(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "echo a && echo b", 0)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "a")
	assert.Contains(t, res.Stdout, "b")
}

func TestExecute_Timeout(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "sleep 5", 1)
	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "[TIMEOUT after 1s]")
}

func TestExecute_SpawnFailure(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "/no/such/binary-xyz --flag", 0)
	require.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "Execution error")
	assert.False(t, res.TimedOut)
}

func TestExecute_DurationRecorded(t *testing.T) {
	skipOnWindows(t)
	res := executor.Execute(context.Background(), "sleep 0.1", 0)
	assert.GreaterOrEqual(t, res.DurationMS, 90)
}
