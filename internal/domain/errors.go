package domain

import "errors"

// Error taxonomy per spec.md §7. NotFound conditions are generally
// signaled by a nil/false return rather than one of these sentinels;
// these are for the cases that do cross a Go error boundary.

var (
	// ErrDuplicateID is returned by Create when the caller-supplied job id
	// already exists in the store.
	ErrDuplicateID = errors.New("job id already exists")

	// ErrInvalidCommand indicates a job was submitted with no command.
	ErrInvalidCommand = errors.New("command is required")

	// ErrInvalidConfigValue indicates a config value could not be parsed
	// as its recognized type (int, float, ...).
	ErrInvalidConfigValue = errors.New("invalid config value")
)
