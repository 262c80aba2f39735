package web

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"diffview/config"
	"diffview/db"
	"diffview/diff"
)

// Global diff service instance
var diffService *diff.Service

// InitDiffService initializes the diff service.
// Should be called during server startup.
func InitDiffService() {
	diffService = diff.NewService(config.Get().ContextLines)
	logger.Info("Diff service initialized")
}

// computeDiffHandler runs the full diff pipeline over a raw old/new
// text pair, with no snapshot or persistence involved.
// POST /api/diff/compute
func computeDiffHandler(c rweb.Context) error {
	var req struct {
		OldText string `json:"oldText"`
		NewText string `json:"newText"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	return c.WriteJSON(diffService.Compute(req.OldText, req.NewText))
}

// wordDiffHandler computes intra-line highlight spans for one old/new
// line pair.
// POST /api/diff/word
func wordDiffHandler(c rweb.Context) error {
	var req struct {
		OldLine string `json:"oldLine"`
		NewLine string `json:"newLine"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	return c.WriteJSON(diff.ComputeWordDiff(req.OldLine, req.NewLine))
}

// createSnapshotHandler captures a file's current content before
// modification, both in memory and in the database.
// POST /api/diff/snapshot
func createSnapshotHandler(c rweb.Context) error {
	var req struct {
		SessionID string `json:"sessionId"`
		FilePath  string `json:"filePath"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}
	if req.SessionID == "" || req.FilePath == "" {
		return c.WriteError(serr.New("sessionId and filePath are required"), 400)
	}

	// Read the current file content
	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, use empty content
			content = []byte{}
		} else {
			logger.LogErr(err, "failed to read file", "path", req.FilePath)
			return c.WriteError(serr.Wrap(err, "failed to read file"), 500)
		}
	}

	snapshot := diffService.CreateSnapshot(req.SessionID, req.FilePath, string(content))

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	snapshotID, err := database.SaveSnapshot(&db.Snapshot{
		SessionID: snapshot.SessionID,
		FilePath:  snapshot.Path,
		Content:   snapshot.Content,
		Hash:      snapshot.Hash,
		CreatedAt: snapshot.Timestamp,
	})
	if err != nil {
		logger.LogErr(err, "failed to save snapshot to database")
		return c.WriteError(serr.Wrap(err, "failed to save snapshot"), 500)
	}

	return c.WriteJSON(map[string]interface{}{
		"id":        snapshotID,
		"sessionId": snapshot.SessionID,
		"filePath":  snapshot.Path,
		"hash":      snapshot.Hash,
		"timestamp": snapshot.Timestamp,
	})
}

// generateDiffHandler diffs the previously snapshotted content against
// the file's current content, persists the result, and broadcasts a
// diff-available event.
// POST /api/diff/generate
func generateDiffHandler(c rweb.Context) error {
	var req struct {
		SessionID string `json:"sessionId"`
		FilePath  string `json:"filePath"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	// Read the current file content
	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		logger.LogErr(err, "failed to read file", "path", req.FilePath)
		return c.WriteError(serr.Wrap(err, "failed to read file"), 500)
	}

	result, err := diffService.Generate(req.SessionID, req.FilePath, string(content))
	if err != nil {
		logger.LogErr(err, "failed to generate diff")
		return c.WriteError(serr.Wrap(err, "failed to generate diff"), 500)
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	// The before snapshot was stored when the snapshot was taken
	beforeSnapshotID, err := database.LatestSnapshotID(req.SessionID, req.FilePath)
	if err != nil {
		logger.LogErr(err, "failed to look up before snapshot")
	}

	// Save the "after" snapshot
	afterSnapshot := diffService.CreateSnapshot(req.SessionID, req.FilePath, string(content))
	afterSnapshotID, err := database.SaveSnapshot(&db.Snapshot{
		SessionID: afterSnapshot.SessionID,
		FilePath:  afterSnapshot.Path,
		Content:   afterSnapshot.Content,
		Hash:      afterSnapshot.Hash,
		CreatedAt: afterSnapshot.Timestamp,
	})
	if err != nil {
		logger.LogErr(err, "failed to save after snapshot")
		return c.WriteError(serr.Wrap(err, "failed to save after snapshot"), 500)
	}

	// Persist the script only. Groups and rows are pure derivations of
	// it and are recomputed when the diff is loaded.
	stored := *result
	stored.Groups = nil
	stored.Rows = nil
	diffData, err := json.Marshal(stored)
	if err != nil {
		logger.LogErr(err, "failed to serialize diff data")
		return c.WriteError(serr.Wrap(err, "failed to serialize diff"), 500)
	}

	diffID, err := database.SaveDiff(&db.Diff{
		SessionID:        req.SessionID,
		FilePath:         req.FilePath,
		BeforeSnapshotID: beforeSnapshotID,
		AfterSnapshotID:  &afterSnapshotID,
		DiffData:         diffData,
		AddedCount:       result.Stats.Added,
		DeletedCount:     result.Stats.Deleted,
		CreatedAt:        time.Now(),
	})
	if err != nil {
		logger.LogErr(err, "failed to save diff to database")
		return c.WriteError(serr.Wrap(err, "failed to save diff"), 500)
	}

	// The in-memory snapshot has served its purpose
	diffService.ClearSnapshot(req.SessionID, req.FilePath)

	diff.BroadcastDiffAvailable(req.SessionID, diffID, req.FilePath, result.Stats)

	return c.WriteJSON(map[string]interface{}{
		"id":        diffID,
		"sessionId": result.SessionID,
		"filePath":  result.Path,
		"stats":     result.Stats,
	})
}

// getDiffByIdHandler retrieves a stored diff by ID.
// GET /api/diff/:id
func getDiffByIdHandler(c rweb.Context) error {
	record, errResp := loadDiff(c)
	if record == nil {
		return errResp
	}

	var result diff.Result
	if err := json.Unmarshal(record.DiffData, &result); err != nil {
		logger.LogErr(err, "failed to parse diff data")
		return c.WriteError(serr.Wrap(err, "failed to parse diff data"), 500)
	}
	diffService.Hydrate(&result)

	return c.WriteJSON(map[string]interface{}{
		"id":        record.ID,
		"sessionId": record.SessionID,
		"filePath":  record.FilePath,
		"createdAt": record.CreatedAt,
		"result":    result,
	})
}

// getFileDiffHandler retrieves the most recent stored diff for one file
// within a session.
// GET /api/session/:id/file-diff?path=<file path>
func getFileDiffHandler(c rweb.Context) error {
	sessionID := c.Request().Param("id")
	filePath := c.Request().QueryParam("path")
	if sessionID == "" || filePath == "" {
		return c.WriteError(serr.New("session id and path are required"), 400)
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	diffs, err := database.GetFileDiffs(sessionID, filePath)
	if err != nil {
		logger.LogErr(err, "failed to get file diffs")
		return c.WriteError(serr.Wrap(err, "failed to retrieve diffs"), 500)
	}
	if len(diffs) == 0 {
		return c.WriteError(serr.New("no diffs found for file"), 404)
	}

	// Diffs come back newest first
	record := diffs[0]

	var result diff.Result
	if err := json.Unmarshal(record.DiffData, &result); err != nil {
		logger.LogErr(err, "failed to parse diff data")
		return c.WriteError(serr.Wrap(err, "failed to parse diff data"), 500)
	}
	diffService.Hydrate(&result)

	return c.WriteJSON(map[string]interface{}{
		"id":        record.ID,
		"sessionId": record.SessionID,
		"filePath":  record.FilePath,
		"createdAt": record.CreatedAt,
		"result":    result,
	})
}

// getSnapshotByIdHandler retrieves a stored snapshot by ID, including
// its full captured content.
// GET /api/snapshot/:id
func getSnapshotByIdHandler(c rweb.Context) error {
	idStr := c.Request().Param("id")
	snapshotID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "invalid snapshot ID"), 400)
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	snapshot, err := database.GetSnapshot(snapshotID)
	if err != nil {
		logger.LogErr(err, "failed to get snapshot")
		return c.WriteError(serr.Wrap(err, "failed to retrieve snapshot"), 500)
	}
	if snapshot == nil {
		return c.WriteError(serr.New("snapshot not found"), 404)
	}

	return c.WriteJSON(snapshot)
}

// listSessionDiffsHandler lists all diffs in a session.
// GET /api/session/:id/diffs
func listSessionDiffsHandler(c rweb.Context) error {
	sessionID := c.Request().Param("id")
	if sessionID == "" {
		return c.WriteError(serr.New("sessionId is required"), 400)
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	diffs, err := database.GetSessionDiffs(sessionID)
	if err != nil {
		logger.LogErr(err, "failed to get session diffs")
		return c.WriteError(serr.Wrap(err, "failed to retrieve diffs"), 500)
	}

	var response []map[string]interface{}
	for _, d := range diffs {
		response = append(response, map[string]interface{}{
			"id":        d.ID,
			"filePath":  d.FilePath,
			"createdAt": d.CreatedAt,
			"added":     d.AddedCount,
			"deleted":   d.DeletedCount,
		})
	}

	return c.WriteJSON(map[string]interface{}{
		"diffs": response,
		"total": len(response),
	})
}

// markDiffViewedHandler marks a diff as viewed.
// POST /api/diff/:id/viewed
func markDiffViewedHandler(c rweb.Context) error {
	diffIDStr := c.Request().Param("id")
	diffID, err := strconv.ParseInt(diffIDStr, 10, 64)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "invalid diff ID"), 400)
	}

	var req struct {
		SessionID string `json:"sessionId"`
		ViewMode  string `json:"viewMode"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	if req.ViewMode == "" {
		req.ViewMode = "side-by-side"
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	if err := database.MarkDiffViewed(req.SessionID, diffID, req.ViewMode); err != nil {
		logger.LogErr(err, "failed to mark diff as viewed")
		return c.WriteError(serr.Wrap(err, "failed to mark diff as viewed"), 500)
	}

	return c.WriteJSON(map[string]interface{}{
		"success": true,
	})
}

// getPreferencesHandler retrieves user diff preferences.
// GET /api/preferences
func getPreferencesHandler(c rweb.Context) error {
	// For now, use a default user ID
	// In the future, this would come from auth
	userID := "default"

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	prefs, err := database.GetPreferences(userID)
	if err != nil {
		logger.LogErr(err, "failed to get preferences")
		return c.WriteError(serr.Wrap(err, "failed to retrieve preferences"), 500)
	}

	return c.WriteJSON(prefs)
}

// savePreferencesHandler saves user diff preferences.
// POST /api/preferences
func savePreferencesHandler(c rweb.Context) error {
	var prefs db.Preferences
	body := c.Request().Body()
	if err := json.Unmarshal(body, &prefs); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	// For now, use a default user ID
	prefs.UserID = "default"

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	if err := database.SavePreferences(&prefs); err != nil {
		logger.LogErr(err, "failed to save preferences")
		return c.WriteError(serr.Wrap(err, "failed to save preferences"), 500)
	}

	return c.WriteJSON(map[string]interface{}{
		"success": true,
	})
}

// loadDiff resolves the :id parameter to a stored diff. On failure it
// writes the error response and returns a nil record alongside it.
func loadDiff(c rweb.Context) (*db.Diff, error) {
	diffIDStr := c.Request().Param("id")
	diffID, err := strconv.ParseInt(diffIDStr, 10, 64)
	if err != nil {
		return nil, c.WriteError(serr.Wrap(err, "invalid diff ID"), 400)
	}

	database, err := db.GetDB()
	if err != nil {
		logger.LogErr(err, "failed to get database connection")
		return nil, c.WriteError(serr.Wrap(err, "database connection failed"), 500)
	}

	record, err := database.GetDiff(diffID)
	if err != nil {
		logger.LogErr(err, "failed to get diff")
		return nil, c.WriteError(serr.Wrap(err, "failed to retrieve diff"), 500)
	}
	if record == nil {
		return nil, c.WriteError(serr.New("diff not found"), 404)
	}

	return record, nil
}
