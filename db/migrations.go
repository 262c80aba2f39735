package db

import (
	"database/sql"
	"fmt"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations list all database migrations in order
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create initial schema",
		SQL: `
			-- Create sequences for row ids
			CREATE SEQUENCE IF NOT EXISTS seq_snapshots_id START 1;
			CREATE SEQUENCE IF NOT EXISTS seq_diffs_id START 1;

			-- Create snapshots table: point-in-time file contents
			CREATE TABLE IF NOT EXISTS snapshots (
				id BIGINT PRIMARY KEY DEFAULT nextval('seq_snapshots_id'),
				session_id TEXT NOT NULL,
				file_path TEXT NOT NULL,
				content TEXT NOT NULL,
				hash TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_snapshots_session_path ON snapshots(session_id, file_path);

			-- Create diffs table: computed diff results
			CREATE TABLE IF NOT EXISTS diffs (
				id BIGINT PRIMARY KEY DEFAULT nextval('seq_diffs_id'),
				session_id TEXT NOT NULL,
				file_path TEXT NOT NULL,
				before_snapshot_id BIGINT,
				after_snapshot_id BIGINT,
				diff_data JSON NOT NULL,
				added_count INTEGER NOT NULL DEFAULT 0,
				deleted_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_diffs_session ON diffs(session_id);
			CREATE INDEX IF NOT EXISTS idx_diffs_session_path ON diffs(session_id, file_path);

			-- Create diff_views table: which diffs were viewed, and how
			CREATE TABLE IF NOT EXISTS diff_views (
				session_id TEXT NOT NULL,
				diff_id BIGINT NOT NULL,
				viewed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				view_mode TEXT NOT NULL,
				PRIMARY KEY (session_id, diff_id)
			);

			-- Create preferences table: per-user viewer settings
			CREATE TABLE IF NOT EXISTS preferences (
				user_id TEXT PRIMARY KEY,
				default_mode TEXT NOT NULL,
				context_lines INTEGER NOT NULL,
				word_wrap BOOLEAN NOT NULL,
				show_line_numbers BOOLEAN NOT NULL,
				show_whitespace BOOLEAN NOT NULL,
				theme TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}

// Migrate runs all pending database migrations
func (db *DB) Migrate() error {
	// First, ensure migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return serr.Wrap(err, "failed to create migrations table")
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return serr.Wrap(err, "failed to get current migration version")
	}

	logger.Info("Current migration version", "version", currentVersion)

	// Apply pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("Applying migration", "version", migration.Version, "description", migration.Description)

		// Execute migration in a transaction
		err := db.Transaction(func(tx *sql.Tx) error {
			// Execute migration SQL
			if _, err := tx.Exec(migration.SQL); err != nil {
				return serr.Wrap(err, fmt.Sprintf("failed to execute migration %d", migration.Version))
			}

			// Record migration
			_, err := tx.Exec(
				"INSERT INTO migrations (version, description) VALUES (?, ?)",
				migration.Version, migration.Description,
			)
			if err != nil {
				return serr.Wrap(err, "failed to record migration")
			}

			return nil
		})

		if err != nil {
			return err
		}

		logger.Info("Migration applied successfully", "version", migration.Version)
	}

	return nil
}
