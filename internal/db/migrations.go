package db

import (
	"context"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version. Bump it and add the
// upgrade statements to migrations when the schema changes.
const schemaVersion = 1

// migrations[v] upgrades a cache at version v to v+1.
var migrations = map[int][]string{}

func (db *DB) migrate() error {
	return db.migrateTo(schemaVersion)
}

// migrateTo brings the cache up to target. A cache at version 0 was just
// created by createSchema and is only stamped.
func (db *DB) migrateTo(target int) error {
	ctx := context.Background()

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= target {
		return nil
	}

	if version > 0 {
		for v := version; v < target; v++ {
			for _, query := range migrations[v] {
				if _, err := db.ExecContext(ctx, query); err != nil {
					return fmt.Errorf("failed to migrate schema to version %d: %w", v+1, err)
				}
			}
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
