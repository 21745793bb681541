package db

import (
	"github.com/cockroachdb/errors"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
-- Named document slots; each holds one serialized payload
CREATE TABLE document_slots (
    name TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`,
	},
	{
		version: 2,
		sql: `
-- Previous payloads, kept so a bad write can be recovered by hand
CREATE TABLE document_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    payload TEXT NOT NULL,
    replaced_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX idx_document_history_name ON document_history(name, id);
`,
	},
}

// SchemaVersion returns the highest applied migration
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get current schema version")
	}
	return version, nil
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	currentVersion, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	// Apply pending migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := tx.Exec(m.sql); err != nil {
			return errors.Wrapf(err, "failed to apply migration %d", m.version)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return errors.Wrapf(err, "failed to record migration %d", m.version)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migrations")
	}

	return nil
}
