package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// pidFile is the on-disk JSON document spec.md §4.7 defines as the
// supervisor's source of truth for "which workers did I spawn."
type pidFile struct {
	PIDs      []int `json:"pids"`
	Timestamp int64 `json:"timestamp"`
}

func readPIDFile(path string) (*pidFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &pidFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pid file: %w", err)
	}

	var pf pidFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse pid file: %w", err)
	}
	return &pf, nil
}

func writePIDFile(path string, pf *pidFile) error {
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pid file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create pid file directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

func clearPIDFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear pid file: %w", err)
	}
	return nil
}
