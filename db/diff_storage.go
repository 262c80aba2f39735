package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Snapshot represents a stored file snapshot in the database
type Snapshot struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	FilePath  string    `json:"filePath"`
	Content   string    `json:"content"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`
}

// Diff represents a stored diff in the database. DiffData holds the
// serialized result with the line script and stats only; groups and
// split rows are derived again when the diff is loaded. The
// added/deleted counts are denormalized for cheap listing.
type Diff struct {
	ID               int64           `json:"id"`
	SessionID        string          `json:"sessionId"`
	FilePath         string          `json:"filePath"`
	BeforeSnapshotID *int64          `json:"beforeSnapshotId,omitempty"`
	AfterSnapshotID  *int64          `json:"afterSnapshotId,omitempty"`
	DiffData         json.RawMessage `json:"diffData"`
	AddedCount       int             `json:"addedCount"`
	DeletedCount     int             `json:"deletedCount"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// DiffView represents a record of viewing a diff
type DiffView struct {
	SessionID string    `json:"sessionId"`
	DiffID    int64     `json:"diffId"`
	ViewedAt  time.Time `json:"viewedAt"`
	ViewMode  string    `json:"viewMode"` // "side-by-side" or "inline"
}

// Preferences represents user preferences for diff viewing
type Preferences struct {
	UserID          string    `json:"userId"`
	DefaultMode     string    `json:"defaultMode"`
	ContextLines    int       `json:"contextLines"`
	WordWrap        bool      `json:"wordWrap"`
	ShowLineNumbers bool      `json:"showLineNumbers"`
	ShowWhitespace  bool      `json:"showWhitespace"`
	Theme           string    `json:"theme"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SaveSnapshot stores a file snapshot in the database.
// Returns the ID of the created snapshot.
func (db *DB) SaveSnapshot(snapshot *Snapshot) (int64, error) {
	query := `
		INSERT INTO snapshots (session_id, file_path, content, hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := db.QueryRow(query,
		snapshot.SessionID,
		snapshot.FilePath,
		snapshot.Content,
		snapshot.Hash,
		snapshot.CreatedAt,
	).Scan(&id)

	if err != nil {
		return 0, serr.Wrap(err, "failed to save snapshot")
	}

	logger.Debug("Saved snapshot",
		"id", id,
		"sessionId", snapshot.SessionID,
		"filePath", snapshot.FilePath,
		"hash", snapshot.Hash[:8],
	)

	return id, nil
}

// GetSnapshot retrieves a snapshot by ID.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	query := `
		SELECT id, session_id, file_path, content, hash, created_at
		FROM snapshots
		WHERE id = ?
	`

	var snapshot Snapshot
	err := db.QueryRow(query, id).Scan(
		&snapshot.ID,
		&snapshot.SessionID,
		&snapshot.FilePath,
		&snapshot.Content,
		&snapshot.Hash,
		&snapshot.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, serr.Wrap(err, "failed to get snapshot")
	}

	return &snapshot, nil
}

// LatestSnapshotID returns the ID of the most recent snapshot for a
// file in a session, or nil when none exists.
func (db *DB) LatestSnapshotID(sessionID, filePath string) (*int64, error) {
	query := `
		SELECT id
		FROM snapshots
		WHERE session_id = ? AND file_path = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var id int64
	err := db.QueryRow(query, sessionID, filePath).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, serr.Wrap(err, "failed to get latest snapshot")
	}

	return &id, nil
}

// SaveDiff stores a diff in the database.
// Returns the ID of the created diff.
func (db *DB) SaveDiff(diff *Diff) (int64, error) {
	query := `
		INSERT INTO diffs (session_id, file_path, before_snapshot_id, after_snapshot_id, diff_data, added_count, deleted_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := db.QueryRow(query,
		diff.SessionID,
		diff.FilePath,
		nullableInt64(diff.BeforeSnapshotID),
		nullableInt64(diff.AfterSnapshotID),
		string(diff.DiffData),
		diff.AddedCount,
		diff.DeletedCount,
		diff.CreatedAt,
	).Scan(&id)

	if err != nil {
		return 0, serr.Wrap(err, "failed to save diff")
	}

	logger.Debug("Saved diff",
		"id", id,
		"sessionId", diff.SessionID,
		"filePath", diff.FilePath,
		"added", diff.AddedCount,
		"deleted", diff.DeletedCount,
	)

	return id, nil
}

// GetDiff retrieves a diff by ID.
func (db *DB) GetDiff(id int64) (*Diff, error) {
	query := `
		SELECT id, session_id, file_path, before_snapshot_id, after_snapshot_id, diff_data, added_count, deleted_count, created_at
		FROM diffs
		WHERE id = ?
	`

	var diff Diff
	var beforeSnapshotID, afterSnapshotID sql.NullInt64
	var diffData string

	err := db.QueryRow(query, id).Scan(
		&diff.ID,
		&diff.SessionID,
		&diff.FilePath,
		&beforeSnapshotID,
		&afterSnapshotID,
		&diffData,
		&diff.AddedCount,
		&diff.DeletedCount,
		&diff.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, serr.Wrap(err, "failed to get diff")
	}

	if beforeSnapshotID.Valid {
		diff.BeforeSnapshotID = &beforeSnapshotID.Int64
	}
	if afterSnapshotID.Valid {
		diff.AfterSnapshotID = &afterSnapshotID.Int64
	}
	diff.DiffData = json.RawMessage(diffData)

	return &diff, nil
}

// GetSessionDiffs retrieves all diffs for a session.
// Ordered by creation time descending (newest first).
func (db *DB) GetSessionDiffs(sessionID string) ([]*Diff, error) {
	query := `
		SELECT id, session_id, file_path, before_snapshot_id, after_snapshot_id, diff_data, added_count, deleted_count, created_at
		FROM diffs
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query, sessionID)
	if err != nil {
		return nil, serr.Wrap(err, "failed to get session diffs")
	}
	defer rows.Close()

	return scanDiffs(rows)
}

// GetFileDiffs retrieves all diffs for a specific file in a session.
// Ordered by creation time descending (newest first).
func (db *DB) GetFileDiffs(sessionID, filePath string) ([]*Diff, error) {
	query := `
		SELECT id, session_id, file_path, before_snapshot_id, after_snapshot_id, diff_data, added_count, deleted_count, created_at
		FROM diffs
		WHERE session_id = ? AND file_path = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := db.Query(query, sessionID, filePath)
	if err != nil {
		return nil, serr.Wrap(err, "failed to get file diffs")
	}
	defer rows.Close()

	return scanDiffs(rows)
}

// scanDiffs reads diff rows into structs
func scanDiffs(rows *sql.Rows) ([]*Diff, error) {
	var diffs []*Diff
	for rows.Next() {
		var diff Diff
		var beforeSnapshotID, afterSnapshotID sql.NullInt64
		var diffData string

		err := rows.Scan(
			&diff.ID,
			&diff.SessionID,
			&diff.FilePath,
			&beforeSnapshotID,
			&afterSnapshotID,
			&diffData,
			&diff.AddedCount,
			&diff.DeletedCount,
			&diff.CreatedAt,
		)
		if err != nil {
			return nil, serr.Wrap(err, "failed to scan diff")
		}

		if beforeSnapshotID.Valid {
			diff.BeforeSnapshotID = &beforeSnapshotID.Int64
		}
		if afterSnapshotID.Valid {
			diff.AfterSnapshotID = &afterSnapshotID.Int64
		}
		diff.DiffData = json.RawMessage(diffData)

		diffs = append(diffs, &diff)
	}

	return diffs, nil
}

// MarkDiffViewed records that a diff has been viewed.
func (db *DB) MarkDiffViewed(sessionID string, diffID int64, viewMode string) error {
	query := `
		INSERT INTO diff_views (session_id, diff_id, viewed_at, view_mode)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, diff_id) DO UPDATE
		SET viewed_at = ?, view_mode = ?
	`

	now := time.Now()
	_, err := db.Exec(query, sessionID, diffID, now, viewMode, now, viewMode)
	if err != nil {
		return serr.Wrap(err, "failed to mark diff as viewed")
	}

	return nil
}

// GetPreferences retrieves user preferences for diff viewing.
// Returns default preferences if none exist.
func (db *DB) GetPreferences(userID string) (*Preferences, error) {
	query := `
		SELECT user_id, default_mode, context_lines, word_wrap, show_line_numbers, show_whitespace, theme, updated_at
		FROM preferences
		WHERE user_id = ?
	`

	var prefs Preferences
	err := db.QueryRow(query, userID).Scan(
		&prefs.UserID,
		&prefs.DefaultMode,
		&prefs.ContextLines,
		&prefs.WordWrap,
		&prefs.ShowLineNumbers,
		&prefs.ShowWhitespace,
		&prefs.Theme,
		&prefs.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			// Return default preferences
			return &Preferences{
				UserID:          userID,
				DefaultMode:     "side-by-side",
				ContextLines:    3,
				WordWrap:        false,
				ShowLineNumbers: true,
				ShowWhitespace:  false,
				Theme:           "dark",
				UpdatedAt:       time.Now(),
			}, nil
		}
		return nil, serr.Wrap(err, "failed to get preferences")
	}

	return &prefs, nil
}

// SavePreferences stores user preferences for diff viewing.
func (db *DB) SavePreferences(prefs *Preferences) error {
	query := `
		INSERT INTO preferences (user_id, default_mode, context_lines, word_wrap, show_line_numbers, show_whitespace, theme, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET default_mode = ?, context_lines = ?, word_wrap = ?, show_line_numbers = ?, show_whitespace = ?, theme = ?, updated_at = ?
	`

	now := time.Now()
	_, err := db.Exec(query,
		prefs.UserID,
		prefs.DefaultMode,
		prefs.ContextLines,
		prefs.WordWrap,
		prefs.ShowLineNumbers,
		prefs.ShowWhitespace,
		prefs.Theme,
		now,
		prefs.DefaultMode,
		prefs.ContextLines,
		prefs.WordWrap,
		prefs.ShowLineNumbers,
		prefs.ShowWhitespace,
		prefs.Theme,
		now,
	)

	if err != nil {
		return serr.Wrap(err, "failed to save preferences")
	}

	return nil
}

// nullableInt64 converts a nil *int64 to sql.NullInt64.
func nullableInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
