package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kdabb05/llmud/internal/services"
)

// NewRouter registers the REST routes and mounts mcpHandler at /mcp.
func NewRouter(game *services.GameService, mcpHandler http.Handler, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/health", NewHealthHandler(game, logger))

	sessions := NewSessionHandler(game, logger)
	mux.Handle("/v1/sessions/{id}", sessions)
	mux.Handle("GET /v1/sessions/{id}/map.svg", NewMapHandler(game, logger))

	if mcpHandler != nil {
		mux.Handle("/mcp", mcpHandler)
	}
	return mux
}
