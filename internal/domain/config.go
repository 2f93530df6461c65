package domain

// Config keys recognized by the config table (spec.md §3). Unrecognized
// keys are still stored (the config table is a generic string/string kv
// side table) but ConfigRepository.Snapshot only reads these.
const (
	ConfigMaxRetries     = "max_retries"
	ConfigBackoffBase    = "backoff_base"
	ConfigPollIntervalMS = "poll_interval_ms"
	ConfigLockTimeoutS   = "lock_timeout_s"
	ConfigJobTimeoutS    = "job_timeout_s"
	ConfigMaxBackoffS    = "max_backoff_s"
)

// DefaultConfig holds the recognized keys with their string-encoded
// defaults; `queuectl init` seeds each of these keys that is missing from
// the config table.
var DefaultConfig = map[string]string{
	ConfigMaxRetries:     "3",
	ConfigBackoffBase:    "2.0",
	ConfigPollIntervalMS: "500",
	ConfigLockTimeoutS:   "300",
	ConfigJobTimeoutS:    "0",
	ConfigMaxBackoffS:    "3600",
}

// ConfigSnapshot is a typed read of the live config table, taken once per
// worker-loop iteration (for poll_interval_ms/lock_timeout_s/max_backoff_s/
// job_timeout_s) or once at job-creation time (for max_retries/backoff_base,
// which are then frozen onto the job — spec.md §4.1/§9).
type ConfigSnapshot struct {
	MaxRetries     int
	BackoffBase    float64
	PollIntervalMS int
	LockTimeoutS   int
	JobTimeoutS    int
	MaxBackoffS    int
}
