package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kdabb05/llmud/pkg/gameerr"
)

type ErrorResponse struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	ValidExits []string `json:"valid_exits,omitempty"`
}

func statusFor(kind gameerr.Kind) int {
	switch kind {
	case gameerr.KindNotFound:
		return http.StatusNotFound
	case gameerr.KindAlreadyExists:
		return http.StatusConflict
	case gameerr.KindMalformed:
		return http.StatusBadRequest
	case gameerr.KindCorruptMap, gameerr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError writes err as a JSON ErrorResponse with a status matching its kind.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ge := gameerr.As(err)
	status := statusFor(ge.Kind)

	response := ErrorResponse{
		Error:      ge.Message,
		Kind:       string(ge.Kind),
		Hint:       ge.Hint,
		ValidExits: ge.ValidExits,
	}
	if ge.Kind == gameerr.KindInternal {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
