package store

import (
	"database/sql"
	"fmt"
)

// migrate creates the schema. Every statement is idempotent.
func migrate(db *sql.DB) error {
	migrations := []string{
		// Provider tokens (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workouts in SI units; converted to display units before grouping
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			activity_type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			distance_m REAL NOT NULL,
			duration_s REAL NOT NULL,
			elevation_gain_m REAL NOT NULL DEFAULT 0,
			average_temp_c REAL,
			humidity_pct REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_start_date ON workouts(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_type ON workouts(activity_type)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
