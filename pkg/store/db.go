// Package store persists parsed build reports in a SQLite history database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the history database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect.
	conn.SetMaxOpenConns(1)

	db := &DB{DB: conn}
	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001},
		{2, migration002},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

const migration001 = `
-- One row per stored parse
CREATE TABLE parses (
    id INTEGER PRIMARY KEY,
    label TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    parsed_at DATETIME NOT NULL,
    group_count INTEGER NOT NULL DEFAULT 0,
    entry_count INTEGER NOT NULL DEFAULT 0,
    issue_count INTEGER NOT NULL DEFAULT 0,
    total_bytes REAL NOT NULL DEFAULT 0
);

-- Groups in header order
CREATE TABLE groups (
    id INTEGER PRIMARY KEY,
    parse_id INTEGER NOT NULL REFERENCES parses(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    bundle_count INTEGER NOT NULL,
    size REAL NOT NULL,
    size_unit TEXT NOT NULL,
    explicit_asset_count INTEGER NOT NULL,
    line INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_groups_parse ON groups(parse_id, position);

-- Entries in their stored sort order
CREATE TABLE entries (
    id INTEGER PRIMARY KEY,
    group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    address TEXT NOT NULL,
    size REAL NOT NULL,
    size_unit TEXT NOT NULL,
    byte_size REAL,
    line INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_entries_group ON entries(group_id, position);
CREATE INDEX idx_entries_address ON entries(address);
`

const migration002 = `
-- Non-fatal parse issues in the order they were found
CREATE TABLE issues (
    id INTEGER PRIMARY KEY,
    parse_id INTEGER NOT NULL REFERENCES parses(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,
    line INTEGER NOT NULL DEFAULT 0,
    group_name TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL
);

CREATE INDEX idx_issues_parse ON issues(parse_id, position);
`
