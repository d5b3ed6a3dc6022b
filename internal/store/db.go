// Package store persists licensees and CPE records. It speaks plain
// database/sql so the same repositories run against PostgreSQL (pgx pool,
// server deployments) and SQLite (embedded, batch CLI and tests).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OpenPostgres creates a pgx pool and wraps it as *sql.DB for the
// repositories. The pool is returned so the caller can close it and run
// pool-level health checks.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "cpe-tracker"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return db, pool, nil
}

// OpenSQLite opens (or creates) an embedded SQLite database at path.
// ":memory:" is valid and used by the test suites.
func OpenSQLite(path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite is not safe for concurrent writes over multiple conns
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	logger.Info("opened sqlite database", "path", path)
	return db, nil
}

// Close closes the database handles gracefully. pool may be nil for SQLite.
func Close(db *sql.DB, pool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("closing database connections")
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
	if pool != nil {
		pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// migrations is dialect-neutral DDL: TEXT keys and dates, REAL hours.
// The composite unique constraint on (licensee_id, content_digest) is the
// storage-level duplicate guard; application checks are a fast path only.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS licensees (
		id                 TEXT PRIMARY KEY,
		full_name          TEXT NOT NULL,
		email              TEXT NOT NULL UNIQUE,
		jurisdiction_code  TEXT,
		license_number     TEXT,
		license_issue_date TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cpe_records (
		id                TEXT PRIMARY KEY,
		licensee_id       TEXT NOT NULL REFERENCES licensees (id),
		course_name       TEXT NOT NULL,
		course_code       TEXT,
		provider_name     TEXT NOT NULL,
		field_of_study    TEXT NOT NULL,
		credit_hours      REAL NOT NULL,
		is_ethics         INTEGER NOT NULL DEFAULT 0,
		delivery_method   TEXT NOT NULL,
		completion_date   TEXT,
		certificate_name  TEXT NOT NULL DEFAULT '',
		content_digest    TEXT NOT NULL,
		extraction_method TEXT NOT NULL,
		confidence        REAL NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		UNIQUE (licensee_id, content_digest)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cpe_records_licensee_date
		ON cpe_records (licensee_id, completion_date)`,
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
