package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/models"
)

// RecordJobStatus remembers that job was seen with its current status.
// isNew is true the first time a (job, status) pair is recorded for profile.
func (db *DB) RecordJobStatus(profile string, job models.BackupJob) (isNew bool, err error) {
	if job.ID == "" {
		return false, fmt.Errorf("job id is empty")
	}

	result, err := db.ExecContext(context.Background(), `
		INSERT OR IGNORE INTO job_events (profile, job_id, status, error, seen_at)
		VALUES (?, ?, ?, ?, ?)`,
		profile, job.ID, job.Status, nullString(job.Error), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("failed to record job status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SaveDashboard caches the last dashboard fetched for profile.
func (db *DB) SaveDashboard(profile string, d *models.BackupDashboard) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	_, err = db.ExecContext(context.Background(), `
		INSERT INTO dashboard_cache (profile, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		profile, string(payload), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save dashboard: %w", err)
	}
	return nil
}

// GetDashboard returns the cached dashboard for profile, or nil when none
// was stored.
func (db *DB) GetDashboard(profile string) (*models.BackupDashboard, error) {
	var payload, updated string
	err := db.QueryRowContext(context.Background(),
		`SELECT payload, updated_at FROM dashboard_cache WHERE profile = ?`, profile).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard: %w", err)
	}

	var d models.BackupDashboard
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("failed to decode cached dashboard: %w", err)
	}
	d.LastUpdated, _ = time.ParseInLocation(timeLayout, updated, time.UTC)
	return &d, nil
}

// CacheStats summarizes what the local cache holds.
type CacheStats struct {
	Profiles  int
	Points    int
	Samples   int
	JobEvents int
}

// GetCacheStats counts the rows of each cache table.
func (db *DB) GetCacheStats() (*CacheStats, error) {
	var s CacheStats
	err := db.QueryRowContext(context.Background(), `
		SELECT
			(SELECT COUNT(DISTINCT profile) FROM usage_points),
			(SELECT COUNT(*) FROM usage_points),
			(SELECT COUNT(*) FROM provider_samples),
			(SELECT COUNT(*) FROM job_events)
	`).Scan(&s.Profiles, &s.Points, &s.Samples, &s.JobEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache stats: %w", err)
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
