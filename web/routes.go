package web

import (
	"github.com/rohanthewiz/rweb"
)

// SetupRoutes configures all HTTP routes for the server
func SetupRoutes(s *rweb.Server) {
	// Root endpoint - serves the compose page
	s.Get("/", rootHandler)

	// Pure computation endpoints
	s.Post("/api/diff/compute", computeDiffHandler)
	s.Post("/api/diff/word", wordDiffHandler)

	// Snapshot lifecycle endpoints
	s.Post("/api/diff/snapshot", createSnapshotHandler)
	s.Post("/api/diff/generate", generateDiffHandler)

	// Stored diff and snapshot endpoints
	s.Get("/api/diff/:id", getDiffByIdHandler)
	s.Get("/api/session/:id/diffs", listSessionDiffsHandler)
	s.Get("/api/session/:id/file-diff", getFileDiffHandler)
	s.Get("/api/snapshot/:id", getSnapshotByIdHandler)
	s.Post("/api/diff/:id/viewed", markDiffViewedHandler)

	// Preference endpoints
	s.Get("/api/preferences", getPreferencesHandler)
	s.Post("/api/preferences", savePreferencesHandler)

	// Rendered diff pages
	s.Post("/diff/preview", previewDiffHandler)
	s.Get("/diff/:id", viewDiffPageHandler)

	// SSE endpoint for streaming events
	s.Get("/events",
		func(c rweb.Context) error {

			// Create client channel
			clientChan := make(chan any, 10)
			sseHub.Register(clientChan)

			// We cannot unregister here because the conn is long-lived

			s.SetupSSE(c, clientChan, "")

			return nil
		},
	)
}
