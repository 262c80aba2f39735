package db

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"diffview/config"
)

var (
	testDBOnce sync.Once
	testDB     *DB
	testDBErr  error
)

// openTestDB opens the singleton database against a throwaway data
// directory so tests never touch a real install.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	testDBOnce.Do(func() {
		dir, err := os.MkdirTemp("", "diffview-db-test")
		if err != nil {
			testDBErr = err
			return
		}
		os.Setenv("DIFFVIEW_DATA_DIR", dir)
		config.Initialize()
		testDB, testDBErr = GetDB()
	})
	if testDBErr != nil {
		t.Fatalf("open test database: %v", testDBErr)
	}
	return testDB
}

func TestSnapshotStorage(t *testing.T) {
	database := openTestDB(t)

	first, err := database.SaveSnapshot(&Snapshot{
		SessionID: "snap-sess",
		FilePath:  "main.go",
		Content:   "package main\n",
		Hash:      "0bee89b07a248e27c83fc3d5951213c1",
		CreatedAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("save first snapshot: %v", err)
	}

	second, err := database.SaveSnapshot(&Snapshot{
		SessionID: "snap-sess",
		FilePath:  "main.go",
		Content:   "package main\n\nfunc main() {}\n",
		Hash:      "c157a79031e1c40f85931829bc5fc552",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("save second snapshot: %v", err)
	}

	got, err := database.GetSnapshot(first)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot, got nil")
	}
	if got.ID != first || got.SessionID != "snap-sess" || got.FilePath != "main.go" {
		t.Errorf("snapshot identity: got %+v", got)
	}
	if got.Content != "package main\n" || got.Hash != "0bee89b07a248e27c83fc3d5951213c1" {
		t.Errorf("snapshot content: got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("snapshot should carry its creation time")
	}

	missing, err := database.GetSnapshot(1 << 40)
	if err != nil {
		t.Fatalf("get missing snapshot: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}

	latest, err := database.LatestSnapshotID("snap-sess", "main.go")
	if err != nil {
		t.Fatalf("latest snapshot id: %v", err)
	}
	if latest == nil || *latest != second {
		t.Errorf("latest snapshot id: got %v, want %d", latest, second)
	}

	none, err := database.LatestSnapshotID("snap-sess", "other.go")
	if err != nil {
		t.Fatalf("latest snapshot id for unknown file: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown file, got %v", none)
	}
}

func TestDiffStorageNewestFirst(t *testing.T) {
	database := openTestDB(t)

	type payload struct {
		Marker string `json:"marker"`
	}
	save := func(marker string, createdAt time.Time) int64 {
		t.Helper()
		data, err := json.Marshal(payload{Marker: marker})
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		id, err := database.SaveDiff(&Diff{
			SessionID:    "diff-sess",
			FilePath:     "main.go",
			DiffData:     data,
			AddedCount:   1,
			DeletedCount: 1,
			CreatedAt:    createdAt,
		})
		if err != nil {
			t.Fatalf("save diff %s: %v", marker, err)
		}
		return id
	}

	older := save("older", time.Now().Add(-time.Minute))
	newer := save("newer", time.Now())

	record, err := database.GetDiff(older)
	if err != nil {
		t.Fatalf("get diff: %v", err)
	}
	if record == nil {
		t.Fatal("expected a diff, got nil")
	}
	var p payload
	if err := json.Unmarshal(record.DiffData, &p); err != nil {
		t.Fatalf("unmarshal diff data: %v", err)
	}
	if p.Marker != "older" {
		t.Errorf("diff data: got marker %q, want %q", p.Marker, "older")
	}
	if record.BeforeSnapshotID != nil || record.AfterSnapshotID != nil {
		t.Errorf("snapshot ids should be nil when unset, got %+v", record)
	}

	fileDiffs, err := database.GetFileDiffs("diff-sess", "main.go")
	if err != nil {
		t.Fatalf("get file diffs: %v", err)
	}
	if len(fileDiffs) != 2 {
		t.Fatalf("file diffs: got %d, want 2", len(fileDiffs))
	}
	if fileDiffs[0].ID != newer || fileDiffs[1].ID != older {
		t.Errorf("file diffs order: got [%d %d], want [%d %d]",
			fileDiffs[0].ID, fileDiffs[1].ID, newer, older)
	}

	empty, err := database.GetFileDiffs("diff-sess", "absent.go")
	if err != nil {
		t.Fatalf("get file diffs for unknown file: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no diffs for unknown file, got %d", len(empty))
	}

	sessionDiffs, err := database.GetSessionDiffs("diff-sess")
	if err != nil {
		t.Fatalf("get session diffs: %v", err)
	}
	if len(sessionDiffs) != 2 || sessionDiffs[0].ID != newer {
		t.Errorf("session diffs: got %d records, first id %d", len(sessionDiffs), sessionDiffs[0].ID)
	}
}

func TestMarkDiffViewedUpsert(t *testing.T) {
	database := openTestDB(t)

	id, err := database.SaveDiff(&Diff{
		SessionID: "view-sess",
		FilePath:  "main.go",
		DiffData:  json.RawMessage(`{"marker":"viewed"}`),
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("save diff: %v", err)
	}

	if err := database.MarkDiffViewed("view-sess", id, "side-by-side"); err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	// Second view of the same diff updates in place
	if err := database.MarkDiffViewed("view-sess", id, "inline"); err != nil {
		t.Fatalf("mark viewed again: %v", err)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	database := openTestDB(t)

	defaults, err := database.GetPreferences("pref-nobody")
	if err != nil {
		t.Fatalf("get default preferences: %v", err)
	}
	if defaults.DefaultMode != "side-by-side" || defaults.ContextLines != 3 {
		t.Errorf("default preferences: got %+v", defaults)
	}

	saved := &Preferences{
		UserID:          "pref-user",
		DefaultMode:     "inline",
		ContextLines:    5,
		WordWrap:        true,
		ShowLineNumbers: false,
		ShowWhitespace:  true,
		Theme:           "light",
	}
	if err := database.SavePreferences(saved); err != nil {
		t.Fatalf("save preferences: %v", err)
	}

	got, err := database.GetPreferences("pref-user")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if got.DefaultMode != "inline" || got.ContextLines != 5 || !got.WordWrap ||
		got.ShowLineNumbers || !got.ShowWhitespace || got.Theme != "light" {
		t.Errorf("preferences round trip: got %+v", got)
	}
}
