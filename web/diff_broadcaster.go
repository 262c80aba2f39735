package web

import "diffview/diff"

// diffBroadcaster implements the diff.EventBroadcaster interface
type diffBroadcaster struct{}

// BroadcastDiffAvailable implements the EventBroadcaster interface
func (db *diffBroadcaster) BroadcastDiffAvailable(sessionID string, diffID int64, filePath string, stats diff.Stats) {
	BroadcastDiffAvailable(sessionID, diffID, filePath, stats)
}

// InitDiffBroadcaster sets up the diff event broadcaster
func InitDiffBroadcaster() {
	diff.SetEventBroadcaster(&diffBroadcaster{})
}
