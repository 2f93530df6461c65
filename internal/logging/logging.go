// Package logging wires up slog handlers writing to rotated log files
// under the state directory (spec.md §6: "logs/queuectl.log",
// "logs/worker-<id>.log", 10 MiB x 5 backups).
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 5
)

// NewCLILogger returns a logger for CLI invocations, writing to
// <logDir>/queuectl.log as well as stderr so interactive use still sees
// output.
func NewCLILogger(logDir, level string) (*slog.Logger, error) {
	return newLogger(filepath.Join(logDir, "queuectl.log"), level, true)
}

// NewWorkerLogger returns a logger for a single worker process, writing to
// its own per-worker log file (spec.md §5: "Log files are per-worker, no
// cross-process write sharing").
func NewWorkerLogger(logDir, workerID, level string) (*slog.Logger, error) {
	return newLogger(filepath.Join(logDir, "worker-"+workerID+".log"), level, false)
}

func newLogger(path, level string, teeToStderr bool) (*slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   false,
	}

	var out io.Writer = rotated
	if teeToStderr {
		out = io.MultiWriter(rotated, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
