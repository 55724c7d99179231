// Package db manages the local SQLite cache of usage history and job events.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000", // 16MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createUsagePointsTable(); err != nil {
		return err
	}
	if err := db.createProviderSamplesTable(); err != nil {
		return err
	}
	if err := db.createJobEventsTable(); err != nil {
		return err
	}
	return db.createDashboardCacheTable()
}

// Timestamps are stored as TEXT in timeLayout (UTC) so SQLite date functions
// and string comparison agree.
func (db *DB) createUsagePointsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS usage_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		sort_time TEXT,
		total_bytes REAL NOT NULL DEFAULT 0,
		fetched_at TEXT NOT NULL,
		UNIQUE(profile, timestamp)
	);
	CREATE INDEX IF NOT EXISTS idx_usage_points_profile_time ON usage_points(profile, sort_time);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createProviderSamplesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS provider_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		point_id INTEGER NOT NULL REFERENCES usage_points(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		provider TEXT NOT NULL,
		bytes REAL NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_provider_samples_point ON provider_samples(point_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createJobEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS job_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NOT NULL,
		job_id TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		seen_at TEXT NOT NULL,
		UNIQUE(profile, job_id, status)
	);
	CREATE INDEX IF NOT EXISTS idx_job_events_seen ON job_events(seen_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createDashboardCacheTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS dashboard_cache (
		profile TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
