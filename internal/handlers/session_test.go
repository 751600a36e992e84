package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdabb05/llmud/internal/services"
	"github.com/kdabb05/llmud/pkg/dice"
	"github.com/kdabb05/llmud/pkg/scenario"
	"github.com/kdabb05/llmud/pkg/state"
	"github.com/kdabb05/llmud/pkg/storage"
)

func newTestRouter(t *testing.T) (http.Handler, *services.GameService) {
	t.Helper()
	store := storage.NewMemoryStorage()
	store.AddMap(&scenario.Map{
		Name:         "village",
		StartingRoom: "tavern",
		Rooms: map[string]scenario.Room{
			"tavern": {Description: "A warm tavern.", Exits: map[string]string{"north": "street"}},
			"street": {Description: "A muddy street.", Exits: map[string]string{"south": "tavern"}},
		},
	})
	store.SetLayout("village", scenario.Layout{"tavern": {X: 0, Y: 1}, "street": {X: 0, Y: 0}})

	game := services.NewGameService(store, store, dice.NewSeededRoller(1), "village", testLogger())
	_, err := game.CreateSession(context.Background(), "s1", "Hero")
	require.NoError(t, err)
	return NewRouter(game, nil, testLogger()), game
}

func TestSessionHandler_Get(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var st state.SessionState
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "s1", st.SessionID)
	assert.Equal(t, "tavern", st.CurrentRoom)
	assert.Equal(t, []string{"Hero"}, st.Characters)
}

func TestSessionHandler_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		wantKind string
	}{
		{"unknown session", http.MethodGet, "/v1/sessions/ghost", http.StatusNotFound, "not_found"},
		{"malformed id", http.MethodGet, "/v1/sessions/bad-id", http.StatusBadRequest, "malformed"},
		{"method not allowed", http.MethodPost, "/v1/sessions/s1", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Kind)
		})
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	router, game := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := game.GetSessionState(context.Background(), "s1")
	assert.Error(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/sessions/s1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMapHandler(t *testing.T) {
	router, game := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/map.svg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `data-room="tavern"`))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "</svg>"))

	_, err := game.MoveCharacter(context.Background(), "s1", "north")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/s1/map.svg", nil))
	assert.Contains(t, w.Body.String(), `class="room current" data-room="street"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/ghost/map.svg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
