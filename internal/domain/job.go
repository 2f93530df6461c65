package domain

import "time"

// JobState is one of the five states in the job lifecycle state machine
// described in spec.md §3.
type JobState string

const (
	JobPending    JobState = "pending"
	JobProcessing JobState = "processing"
	JobFailed     JobState = "failed"
	JobCompleted  JobState = "completed"
	JobDead       JobState = "dead"
)

// MaxOutputBytes is the truncation limit applied to stdout/stderr before
// they are persisted (spec.md §3, invariant: "stdout, stderr are each
// ≤ 8192 bytes (truncated on write)").
const MaxOutputBytes = 8192

// Job is the primary entity of the queue: a shell command plus scheduling,
// retry, and outcome metadata.
type Job struct {
	ID       string   `json:"id"`
	Command  string   `json:"command"`
	State    JobState `json:"state"`
	Attempts int      `json:"attempts"`

	MaxRetries  int     `json:"max_retries"`
	BackoffBase float64 `json:"backoff_base"`
	Priority    int     `json:"priority"`

	RunAt     time.Time  `json:"run_at"`
	TimeoutS  *int       `json:"timeout_s,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LockedBy  *string    `json:"locked_by,omitempty"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`

	LastExitCode *int   `json:"last_exit_code,omitempty"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	DurationMS   *int   `json:"duration_ms,omitempty"`
}

// Truncate trims s to MaxOutputBytes, byte-exact rather than rune-exact,
// matching spec.md's "truncated on write (byte-exact, not character)".
func Truncate(s string) string {
	if len(s) <= MaxOutputBytes {
		return s
	}
	return s[:MaxOutputBytes]
}
