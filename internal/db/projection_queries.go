package db

import (
	"context"
	"fmt"
	"time"

	"github.com/breeze-rmm/breeze-console/internal/logger"
)

// DailyTotal is the largest total seen on one UTC day.
type DailyTotal struct {
	Day        time.Time
	TotalBytes float64
}

// GetDailyTotals returns one total per day for profile over the last days,
// oldest first. Points with unparseable timestamps are ignored.
func (db *DB) GetDailyTotals(profile string, days int) ([]DailyTotal, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	query := `
		SELECT substr(sort_time, 1, 10) AS day, MAX(total_bytes)
		FROM usage_points
		WHERE profile = ? AND sort_time IS NOT NULL AND sort_time >= ?
		GROUP BY day
		ORDER BY day
	`

	rows, err := db.QueryContext(context.Background(), query, profile, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var totals []DailyTotal
	for rows.Next() {
		var dayStr string
		var d DailyTotal
		if err := rows.Scan(&dayStr, &d.TotalBytes); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		d.Day, err = time.Parse("2006-01-02", dayStr)
		if err != nil {
			continue
		}
		totals = append(totals, d)
	}

	return totals, rows.Err()
}
