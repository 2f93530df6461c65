package domain

import "time"

// WorkerStatus is the status column on the worker registry. Liveness is
// defined by heartbeat freshness, not by this field (spec.md §3).
type WorkerStatus string

const WorkerActive WorkerStatus = "active"

// WorkerRecord is a single row of the worker registry: who is registered
// and when they were last seen alive.
type WorkerRecord struct {
	ID            string       `json:"id"`
	StartedAt     time.Time    `json:"started_at"`
	LastHeartbeat time.Time    `json:"last_heartbeat"`
	Status        WorkerStatus `json:"status"`
}
