package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kdabb05/llmud/internal/services"
)

// MapHandler serves the rendered navigation diagram.
// GET /v1/sessions/{id}/map.svg
type MapHandler struct {
	game   *services.GameService
	logger *slog.Logger
}

func NewMapHandler(game *services.GameService, logger *slog.Logger) *MapHandler {
	return &MapHandler{
		game:   game,
		logger: logger,
	}
}

func (h *MapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	view, err := h.game.GetCurrentMap(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(view.Diagram)); err != nil {
		h.logger.Error("Failed to write map", "session_id", sessionID, "error", err)
	}
}
