// Package repository is the only component allowed to mutate job, worker,
// and config rows (spec.md §2 item 3/§3 "Ownership"). It is hand-written
// database/sql + raw SQL rather than sqlc-generated code: the teacher's own
// claim query (ClaimNextGenerationJob) falls back to a raw query for the
// one statement too awkward to express through its sqlc pipeline, and here
// every statement has that shape.
package repository

import "database/sql"

// Store is the shared handle for JobRepository, WorkerRepository, and
// ConfigRepository. The driver name is recorded but not consulted: every
// statement in this package is written once, with SQLite's `?` placeholders.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps an already-opened, already-migrated *sql.DB.
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// DB returns the underlying connection pool, for callers (migrations,
// tests) that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Jobs returns the job repository view of this store.
func (s *Store) Jobs() *JobRepository {
	return &JobRepository{store: s}
}

// Workers returns the worker repository view of this store.
func (s *Store) Workers() *WorkerRepository {
	return &WorkerRepository{store: s}
}

// Config returns the config repository view of this store.
func (s *Store) Config() *ConfigRepository {
	return &ConfigRepository{store: s}
}
