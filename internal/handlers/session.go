package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kdabb05/llmud/internal/services"
)

type SessionHandler struct {
	game   *services.GameService
	logger *slog.Logger
}

func NewSessionHandler(game *services.GameService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		game:   game,
		logger: logger,
	}
}

// ServeHTTP handles session administration.
// Routes:
// GET /v1/sessions/{id}    - Read session state
// DELETE /v1/sessions/{id} - Delete the session and its characters
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		st, err := h.game.GetSessionState(r.Context(), sessionID)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(st); err != nil {
			h.logger.Error("Failed to encode session state", "session_id", sessionID, "error", err)
		}

	case http.MethodDelete:
		if err := h.game.DeleteSession(r.Context(), sessionID); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, DELETE")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
	}
}
