// Package sql wires up the persistent store: driver selection, connection
// pool configuration, and migrations. It mirrors the teacher's dual
// PostgreSQL/SQLite posture (internal/storage/sql/connection.go in the
// teacher repository) but defaults to the embedded SQLite store spec.md §9
// calls out as "sufficient if multi-writer concurrency is enabled."
package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	_ "github.com/jackc/pgx/v5/stdlib" // optional PostgreSQL driver

	"queuectl/internal/storage/sql/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DBConfig holds database connection configuration.
type DBConfig struct {
	Driver          string // "sqlite" (default) or "pgx"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewStore opens the database, applies sane pool defaults, runs migrations,
// and returns a ready-to-use repository.Store.
func NewStore(ctx context.Context, cfg DBConfig) (*repository.Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		// SQLite in WAL mode supports concurrent readers but serializes
		// writers; a generous pool lets readers through without starving
		// the single writer connection workers actually need.
		maxOpenConns = 25
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 1 * time.Minute
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repository.NewStore(db, driver), nil
}

func runMigrations(db *sql.DB, driver string) error {
	dialect := "sqlite3"
	if driver == "pgx" {
		dialect = "postgres"
	}

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// NewSQLiteStore opens a SQLite-backed store at dbPath with the pragmas
// spec.md §5 requires for multi-writer concurrency: WAL journaling, a busy
// timeout so SQLITE_BUSY surfaces as a delay rather than an immediate
// error, and foreign keys enforced. The parent directory is created if
// missing, so `queuectl init` works against a brand new state dir.
func NewSQLiteStore(ctx context.Context, dbPath string) (*repository.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(on)", dbPath)
	return NewStore(ctx, DBConfig{Driver: "sqlite", DSN: dsn})
}

// NewPostgresStore opens a PostgreSQL-backed store for operators who have
// outgrown a single-host SQLite file.
func NewPostgresStore(ctx context.Context, connString string) (*repository.Store, error) {
	return NewStore(ctx, DBConfig{Driver: "pgx", DSN: connString})
}
