package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/scenario"
)

// SessionState is the position and progress of one game session.
type SessionState struct {
	SessionID    string         `json:"session_id"`
	CurrentRoom  string         `json:"current_room"`
	CurrentMap   string         `json:"current_map"`
	Characters   []string       `json:"characters"`
	ActiveQuests []string       `json:"active_quests"`
	EventFlags   map[string]any `json:"event_flags"`
	TurnCount    int            `json:"turn_count"`
	CreatedAt    time.Time      `json:"created_at,omitzero"`
	UpdatedAt    time.Time      `json:"updated_at,omitzero"`
}

// NewSessionState places a new session at the map's starting room.
func NewSessionState(sessionID string, m *scenario.Map, characters ...string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		SessionID:    sessionID,
		CurrentRoom:  m.StartingRoom,
		CurrentMap:   m.Name,
		Characters:   append([]string{}, characters...),
		ActiveQuests: []string{},
		EventFlags:   map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DecodeSessionState parses a stored session state document.
func DecodeSessionState(data []byte) (*SessionState, error) {
	var s SessionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if s.Characters == nil {
		s.Characters = []string{}
	}
	if s.ActiveQuests == nil {
		s.ActiveQuests = []string{}
	}
	if s.EventFlags == nil {
		s.EventFlags = map[string]any{}
	}
	return &s, nil
}

func (s *SessionState) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// HasCharacter reports whether name is on the session roster.
func (s *SessionState) HasCharacter(name string) bool {
	for _, c := range s.Characters {
		if c == name {
			return true
		}
	}
	return false
}

// ValidateSessionID checks that id is non-empty and only letters, digits and underscores.
func ValidateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return gameerr.New(gameerr.KindMalformed, "Session ID cannot be empty",
			"Provide a session ID such as 'my_adventure'")
	}
	for _, r := range id {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return gameerr.New(gameerr.KindMalformed, "Invalid session ID",
				"Use only letters, numbers and underscores (e.g., 'my_adventure_1')")
		}
	}
	return nil
}
