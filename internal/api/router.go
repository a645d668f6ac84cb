package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"streamgate/internal/api/handler"
	mw "streamgate/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
// An empty apiKey leaves the API open.
func NewRouter(
	mediaHandler *handler.MediaHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// CORS for browser players
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if apiKey != "" {
			r.Use(mw.APIKeyAuth(apiKey))
		}

		// Metadata
		r.Get("/info", mediaHandler.Info)
		r.Get("/extractors", mediaHandler.Extractors)
		r.Get("/history", mediaHandler.History)

		// Stream operations. No write timeout applies here: streams
		// stay open for the length of the media.
		r.Get("/stream", mediaHandler.Stream)
		r.Get("/audio", mediaHandler.Audio)
		r.Get("/convert", mediaHandler.Convert)
		r.Get("/remux", mediaHandler.Remux)
	})

	return r
}
