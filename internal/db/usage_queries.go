package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
)

// sortTime converts an API timestamp to the stored sort key, or NULL when the
// timestamp is not a recognizable date.
func sortTime(timestamp string) sql.NullString {
	t := models.ParseTimestamp(timestamp)
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

// SaveUsageHistory stores a freshly fetched usage history for profile.
// Cached points inside the time range covered by points are replaced.
func (db *DB) SaveUsageHistory(profile string, points []models.UsagePoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lo, hi string
	for _, p := range points {
		st := sortTime(p.Timestamp)
		if !st.Valid {
			continue
		}
		if lo == "" || st.String < lo {
			lo = st.String
		}
		if st.String > hi {
			hi = st.String
		}
	}
	if lo != "" {
		if err := deletePoints(ctx, tx, `profile = ? AND sort_time >= ? AND sort_time <= ?`, profile, lo, hi); err != nil {
			return fmt.Errorf("failed to clear cached usage range: %w", err)
		}
	}

	fetchedAt := time.Now().UTC().Format(timeLayout)
	for _, p := range points {
		if err := deletePoints(ctx, tx, `profile = ? AND timestamp = ?`, profile, p.Timestamp); err != nil {
			return fmt.Errorf("failed to replace usage point: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO usage_points (profile, timestamp, sort_time, total_bytes, fetched_at)
			VALUES (?, ?, ?, ?, ?)`,
			profile, p.Timestamp, sortTime(p.Timestamp), p.TotalBytes, fetchedAt)
		if err != nil {
			return fmt.Errorf("failed to insert usage point: %w", err)
		}
		pointID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read usage point id: %w", err)
		}

		for i, s := range p.Providers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO provider_samples (point_id, position, provider, bytes)
				VALUES (?, ?, ?, ?)`,
				pointID, i, s.Provider, s.Bytes); err != nil {
				return fmt.Errorf("failed to insert provider sample: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage history: %w", err)
	}
	return nil
}

// GetUsageHistory returns the cached points of profile from the last days,
// oldest first.
func (db *DB) GetUsageHistory(profile string, days int) ([]models.UsagePoint, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	query := `
		SELECT id, timestamp, total_bytes
		FROM usage_points
		WHERE profile = ? ` + sqlPointWindowClause + `
		ORDER BY COALESCE(sort_time, fetched_at), id
	`

	rows, err := db.QueryContext(context.Background(), query, profile, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	points := []models.UsagePoint{}
	index := make(map[int64]int)
	for rows.Next() {
		var id int64
		var p models.UsagePoint
		if err := rows.Scan(&id, &p.Timestamp, &p.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan usage point: %w", err)
		}
		p.Providers = []models.ProviderSample{}
		index[id] = len(points)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return points, nil
	}

	if err := db.attachSamples(profile, cutoff, points, index); err != nil {
		return nil, err
	}
	return points, nil
}

func (db *DB) attachSamples(profile, cutoff string, points []models.UsagePoint, index map[int64]int) error {
	query := `
		SELECT s.point_id, s.provider, s.bytes
		FROM provider_samples s
		JOIN usage_points p ON p.id = s.point_id
		WHERE p.profile = ? ` + sqlPointWindowClause + `
		ORDER BY s.point_id, s.position
	`

	rows, err := db.QueryContext(context.Background(), query, profile, cutoff)
	if err != nil {
		return fmt.Errorf("failed to query provider samples: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	for rows.Next() {
		var pointID int64
		var s models.ProviderSample
		if err := rows.Scan(&pointID, &s.Provider, &s.Bytes); err != nil {
			return fmt.Errorf("failed to scan provider sample: %w", err)
		}
		if i, ok := index[pointID]; ok {
			points[i].Providers = append(points[i].Providers, s)
		}
	}
	return rows.Err()
}

// PruneUsageHistory deletes cached points and job events older than the
// given age. It returns the number of usage points removed.
func (db *DB) PruneUsageHistory(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM provider_samples WHERE point_id IN (
			SELECT id FROM usage_points WHERE sort_time IS NOT NULL AND sort_time < ?
		)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune provider samples: %w", err)
	}
	result, err := tx.ExecContext(ctx,
		`DELETE FROM usage_points WHERE sort_time IS NOT NULL AND sort_time < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_events WHERE seen_at < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune job events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// deletePoints removes usage points matching where and their samples.
// Samples are deleted explicitly because foreign_keys is a per-connection
// pragma and the pool may hand out connections that never saw it.
func deletePoints(ctx context.Context, tx *sql.Tx, where string, args ...any) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM provider_samples WHERE point_id IN (SELECT id FROM usage_points WHERE `+where+`)`,
		args...); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM usage_points WHERE `+where, args...)
	return err
}
