package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Service manages file snapshots and runs the diff pipeline over them.
// It captures file states before modifications and turns the before and
// after contents into a renderable Result. The engine functions it
// calls are pure; the service only adds snapshot bookkeeping on top.
type Service struct {
	// snapshots stores file snapshots keyed by session:path
	snapshots    map[string]*Snapshot
	contextLines int
	mu           sync.RWMutex
}

// Snapshot represents a point-in-time capture of a file's content.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Hash      string    `json:"hash"` // SHA256 hash of content
}

// Result contains everything the presentation layer needs to render a
// diff: the edit script, its progressive-disclosure groups, the
// side-by-side rows, and summary statistics. All of it is derived from
// Before and After on each call; nothing is cached between calls.
type Result struct {
	SessionID string      `json:"sessionId,omitempty"`
	Path      string      `json:"path,omitempty"`
	Before    string      `json:"before"`
	After     string      `json:"after"`
	Script    []DiffLine  `json:"script"`
	Groups    []DiffGroup `json:"groups,omitempty"`
	Rows      []SplitRow  `json:"rows,omitempty"`
	Stats     Stats       `json:"stats"`
	Timestamp time.Time   `json:"timestamp"`
}

// Stats summarizes an edit script.
type Stats struct {
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// ComputeStats counts lines of each kind in a script.
func ComputeStats(script []DiffLine) Stats {
	var st Stats
	for _, line := range script {
		switch line.Kind {
		case Add:
			st.Added++
		case Delete:
			st.Deleted++
		case Equal:
			st.Unchanged++
		}
	}
	return st
}

// NewService creates a diff service. contextLines controls how many
// equal lines stay visible around collapsed runs; pass a negative value
// for the default.
func NewService(contextLines int) *Service {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	return &Service{
		snapshots:    make(map[string]*Snapshot),
		contextLines: contextLines,
	}
}

// Compute runs the full pipeline over a before/after pair directly,
// without snapshot involvement.
func (s *Service) Compute(before, after string) *Result {
	script := ComputeLineDiff(before, after)
	result := &Result{
		Before:    before,
		After:     after,
		Script:    script,
		Stats:     ComputeStats(script),
		Timestamp: time.Now(),
	}
	s.Hydrate(result)
	return result
}

// Hydrate recomputes the derived views (groups and split rows) from the
// script. Stored diffs persist the script only; the views are restored
// with this on load. Grouping is deterministic, so a rehydrated result
// carries the same group ids it was computed with.
func (s *Service) Hydrate(r *Result) {
	r.Groups = GroupLines(r.Script, s.contextLines)
	r.Rows = BuildSplitRows(r.Script)
}

// CreateSnapshot captures the current state of a file for later diff
// generation. Called before the file is modified.
func (s *Service) CreateSnapshot(sessionID, path, content string) *Snapshot {
	hash := sha256.Sum256([]byte(content))

	snapshot := &Snapshot{
		SessionID: sessionID,
		Path:      path,
		Content:   content,
		Timestamp: time.Now(),
		Hash:      hex.EncodeToString(hash[:]),
	}

	key := snapshotKey(sessionID, path)
	s.mu.Lock()
	s.snapshots[key] = snapshot
	s.mu.Unlock()

	logger.Debug("Created file snapshot",
		"sessionId", sessionID,
		"path", path,
		"hash", snapshot.Hash[:8],
	)

	return snapshot
}

// GetSnapshot retrieves a previously captured snapshot.
// Returns nil if no snapshot exists for the given session and path.
func (s *Service) GetSnapshot(sessionID, path string) *Snapshot {
	s.mu.RLock()
	snapshot := s.snapshots[snapshotKey(sessionID, path)]
	s.mu.RUnlock()
	return snapshot
}

// Generate diffs a snapshot against new content and returns the full
// renderable result.
func (s *Service) Generate(sessionID, path, newContent string) (*Result, error) {
	snapshot := s.GetSnapshot(sessionID, path)
	if snapshot == nil {
		return nil, serr.New("no snapshot found for file",
			"sessionId", sessionID,
			"path", path,
		)
	}

	result := s.Compute(snapshot.Content, newContent)
	result.SessionID = sessionID
	result.Path = path

	logger.Debug("Generated diff",
		"sessionId", sessionID,
		"path", path,
		"lines", len(result.Script),
		"added", result.Stats.Added,
		"deleted", result.Stats.Deleted,
	)

	return result, nil
}

// HasChanges checks if the new content differs from the snapshot.
// Uses hash comparison for efficiency.
func (s *Service) HasChanges(sessionID, path, newContent string) bool {
	snapshot := s.GetSnapshot(sessionID, path)
	if snapshot == nil {
		return true // no snapshot means it's a new file
	}

	hash := sha256.Sum256([]byte(newContent))
	return snapshot.Hash != hex.EncodeToString(hash[:])
}

// ClearSnapshot removes a snapshot from memory.
// Called after the diff is persisted or no longer needed.
func (s *Service) ClearSnapshot(sessionID, path string) {
	s.mu.Lock()
	delete(s.snapshots, snapshotKey(sessionID, path))
	s.mu.Unlock()
}

// ClearSessionSnapshots removes all snapshots for a session.
func (s *Service) ClearSessionSnapshots(sessionID string) {
	prefix := sessionID + ":"
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.snapshots {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(s.snapshots, key)
		}
	}
}

// SessionSnapshots returns all snapshots for a session.
// Useful for showing all modified files in a session.
func (s *Service) SessionSnapshots(sessionID string) []*Snapshot {
	prefix := sessionID + ":"
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshots []*Snapshot
	for key, snapshot := range s.snapshots {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			snapshots = append(snapshots, snapshot)
		}
	}

	return snapshots
}

func snapshotKey(sessionID, path string) string {
	return fmt.Sprintf("%s:%s", sessionID, path)
}
