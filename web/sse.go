package web

import (
	"encoding/json"
	"sync"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"

	"diffview/diff"
)

const sseStdMsgType = "message" // note that JS EventSource only picks up on "message" event type

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Type      string      `json:"type"`
	SessionId string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data"`
}

// SSEHub manages SSE connections
type SSEHub struct {
	mu      sync.RWMutex
	clients map[chan any]bool
}

// Global SSE hub
var sseHub = &SSEHub{
	clients: make(map[chan any]bool),
}

// Register adds a new SSE client
func (h *SSEHub) Register(client chan any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes an SSE client
func (h *SSEHub) Unregister(client chan any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	close(client)
}

// Broadcast sends an event to all connected clients
func (h *SSEHub) Broadcast(event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	logger.F("Broadcasting SSE event: type=%s, sessionID=%s, nbrOfClients=%d", event.Type, event.SessionId, len(h.clients))

	bytPayload, err := json.Marshal(event)
	if err != nil {
		logger.LogErr(err, "On broadcast, failed to marshal SSE event")
		return
	}

	rEvent := rweb.SSEvent{
		Type: sseStdMsgType, // Type fixed here bc that's what EventSource expects
		Data: string(bytPayload),
	}

	for client := range h.clients {
		select {
		case client <- rEvent:
		default:
			// Client's channel is full, skip
			logger.Log("warn", "SSE client channel full, skipping")
		}
	}
}

// BroadcastDiffAvailable broadcasts when a new diff is available
func BroadcastDiffAvailable(sessionID string, diffID int64, filePath string, stats diff.Stats) {
	sseHub.Broadcast(SSEEvent{
		Type:      "diff_available",
		SessionId: sessionID,
		Data: map[string]interface{}{
			"diffId":   diffID,
			"filePath": filePath,
			"stats":    stats,
		},
	})
}
