package diff

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestServiceCompute(t *testing.T) {
	svc := NewService(-1)
	result := svc.Compute("a\nb\nc", "a\nx\nc")

	if len(result.Script) != 4 {
		t.Errorf("script length: got %d, want 4", len(result.Script))
	}
	if result.Stats != (Stats{Added: 1, Deleted: 1, Unchanged: 2}) {
		t.Errorf("stats: got %+v", result.Stats)
	}
	if len(result.Rows) != 3 {
		t.Errorf("rows: got %d, want 3", len(result.Rows))
	}
	if len(result.Groups) != 1 {
		t.Errorf("groups: got %d, want 1", len(result.Groups))
	}
	if result.Before != "a\nb\nc" || result.After != "a\nx\nc" {
		t.Error("result should carry the input documents")
	}
}

// Stored diffs persist the script only; Hydrate must rebuild groups and
// split rows identical to the ones the result was computed with.
func TestServiceHydrateRestoresDerivedViews(t *testing.T) {
	svc := NewService(-1)
	full := svc.Compute(
		"a\nb\nc\nd\ne\nf\ng\nh\ni\nj",
		"a\nb\nc\nd\ne\nf\ng\nh\ni\nx",
	)

	// Mirror the storage path: strip the derived views, round-trip
	// through JSON, then rehydrate.
	stored := *full
	stored.Groups = nil
	stored.Rows = nil
	data, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var loaded Result
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if loaded.Groups != nil || loaded.Rows != nil {
		t.Fatal("stored form should not carry derived views")
	}

	svc.Hydrate(&loaded)

	if !reflect.DeepEqual(loaded.Script, full.Script) {
		t.Error("script should survive the round trip unchanged")
	}
	if !reflect.DeepEqual(loaded.Groups, full.Groups) {
		t.Errorf("hydrated groups differ:\ngot  %+v\nwant %+v", loaded.Groups, full.Groups)
	}
	if !reflect.DeepEqual(loaded.Rows, full.Rows) {
		t.Errorf("hydrated rows differ:\ngot  %+v\nwant %+v", loaded.Rows, full.Rows)
	}
}

func TestServiceSnapshotLifecycle(t *testing.T) {
	svc := NewService(-1)

	snapshot := svc.CreateSnapshot("sess1", "main.go", "package main\n")
	if snapshot == nil || len(snapshot.Hash) != 64 {
		t.Fatalf("expected snapshot with sha256 hash, got %+v", snapshot)
	}

	if got := svc.GetSnapshot("sess1", "main.go"); got != snapshot {
		t.Error("GetSnapshot should return the stored snapshot")
	}
	if svc.GetSnapshot("sess1", "other.go") != nil {
		t.Error("GetSnapshot should return nil for unknown path")
	}

	if svc.HasChanges("sess1", "main.go", "package main\n") {
		t.Error("unchanged content should report no changes")
	}
	if !svc.HasChanges("sess1", "main.go", "package main\n\nfunc main() {}\n") {
		t.Error("changed content should report changes")
	}
	if !svc.HasChanges("sess1", "unknown.go", "anything") {
		t.Error("missing snapshot should report changes")
	}

	result, err := svc.Generate("sess1", "main.go", "package main\n\nfunc main() {}\n")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.SessionID != "sess1" || result.Path != "main.go" {
		t.Errorf("result identity: got %s %s", result.SessionID, result.Path)
	}
	if result.Stats.Added == 0 {
		t.Error("expected added lines in result stats")
	}

	svc.ClearSnapshot("sess1", "main.go")
	if _, err := svc.Generate("sess1", "main.go", "x"); err == nil {
		t.Error("Generate should fail after snapshot is cleared")
	}
}

func TestServiceSessionSnapshots(t *testing.T) {
	svc := NewService(-1)
	svc.CreateSnapshot("sess1", "a.go", "a")
	svc.CreateSnapshot("sess1", "b.go", "b")
	svc.CreateSnapshot("sess2", "c.go", "c")

	if got := svc.SessionSnapshots("sess1"); len(got) != 2 {
		t.Errorf("sess1 snapshots: got %d, want 2", len(got))
	}
	if got := svc.SessionSnapshots("sess2"); len(got) != 1 {
		t.Errorf("sess2 snapshots: got %d, want 1", len(got))
	}

	svc.ClearSessionSnapshots("sess1")
	if got := svc.SessionSnapshots("sess1"); len(got) != 0 {
		t.Errorf("after clear: got %d snapshots, want 0", len(got))
	}
	if svc.GetSnapshot("sess2", "c.go") == nil {
		t.Error("clearing sess1 should not touch sess2")
	}
}

func TestComputeStats(t *testing.T) {
	script := ComputeLineDiff("a\nb\nc\nd", "a\nx\ny\nd")
	stats := ComputeStats(script)

	if stats.Unchanged != 2 {
		t.Errorf("unchanged: got %d, want 2", stats.Unchanged)
	}
	if stats.Deleted != 2 || stats.Added != 2 {
		t.Errorf("got %d deleted, %d added, want 2 and 2", stats.Deleted, stats.Added)
	}
}
