// Package executor runs a job's command as a subprocess and captures its
// outcome. It is a pure function at heart: given a command and an optional
// timeout, it always returns a Result, never an error — spawn failures and
// timeouts are themselves outcomes a job can retry on (spec.md §4.5, §7
// "WorkerInternalError").
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// shellOperators are the characters/sequences whose presence forces
// invocation via the host shell rather than direct argv exec.
var shellOperators = []string{"|", ">", "<", "&&", "||", ";", "&"}

// Result is the outcome of running one job command.
type Result struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMS int
	TimedOut   bool
}

// Execute runs command, applying timeoutS as a wall-clock deadline when
// positive. It never panics and never returns a Go error: every failure
// mode is encoded in the returned Result (spec.md §4.5).
func Execute(ctx context.Context, command string, timeoutS int) Result {
	start := time.Now()

	if timeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutS)*time.Second)
		defer cancel()
	}

	cmd, err := buildCmd(ctx, command)
	if err != nil {
		return Result{
			ExitCode:   -1,
			Stderr:     fmt.Sprintf("Execution error: %s", err),
			DurationMS: elapsedMS(start),
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	runErr := cmd.Run()
	duration := elapsedMS(start)

	if ctx.Err() == context.DeadlineExceeded {
		killProcessGroup(cmd)
		out := stderr.String()
		out += fmt.Sprintf("\n[TIMEOUT after %ds]", timeoutS)
		return Result{
			ExitCode:   -1,
			Stdout:     stdout.String(),
			Stderr:     out,
			DurationMS: duration,
			TimedOut:   true,
		}
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return Result{
				ExitCode:   exitErr.ExitCode(),
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				DurationMS: duration,
			}
		}
		return Result{
			ExitCode:   -1,
			Stdout:     stdout.String(),
			Stderr:     fmt.Sprintf("Execution error: %s", runErr),
			DurationMS: duration,
		}
	}

	return Result{
		ExitCode:   0,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration,
	}
}

func buildCmd(ctx context.Context, command string) (*exec.Cmd, error) {
	if needsShell(command) {
		return shellCmd(ctx, command), nil
	}

	args, err := shellwords.Parse(command)
	if err != nil || len(args) == 0 {
		return shellCmd(ctx, command), nil
	}
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}

func needsShell(command string) bool {
	for _, op := range shellOperators {
		if strings.Contains(command, op) {
			return true
		}
	}
	return false
}

func shellCmd(ctx context.Context, command string) *exec.Cmd {
	shell := "/bin/sh"
	shellFlag := "-c"
	if runtime.GOOS == "windows" {
		shell = "cmd"
		shellFlag = "/C"
	}
	return exec.CommandContext(ctx, shell, shellFlag, command)
}

func elapsedMS(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}
