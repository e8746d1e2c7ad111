package history

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      func(*sql.DB) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_batches_and_case_outcomes",
		up:      migrationV1,
	},
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		if err := m.up(db); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}

	return nil
}

func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE batches (
			id TEXT PRIMARY KEY,
			queue TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			submitted INTEGER NOT NULL DEFAULT 0,
			direct INTEGER NOT NULL DEFAULT 0,
			deferred INTEGER NOT NULL DEFAULT 0,
			downloaded INTEGER NOT NULL DEFAULT 0,
			not_found INTEGER NOT NULL DEFAULT 0,
			rejected INTEGER NOT NULL DEFAULT 0,
			fetch_failed INTEGER NOT NULL DEFAULT 0,
			report_path TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("create batches table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE case_outcomes (
			batch_id TEXT NOT NULL,
			case_number TEXT NOT NULL,
			state TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			pickup_handle TEXT NOT NULL DEFAULT '',
			artifact_path TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			attempt INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("create case_outcomes table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX idx_batches_started ON batches(started_at DESC);
		CREATE INDEX idx_case_outcomes_batch ON case_outcomes(batch_id);
		CREATE INDEX idx_case_outcomes_case ON case_outcomes(case_number);
	`)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	return nil
}
