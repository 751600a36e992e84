package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/pkg/actor"
)

// CreateSessionInput represents the MCP tool input for creating a session.
type CreateSessionInput struct {
	SessionID     string `json:"session_id" jsonschema:"unique session id; letters, digits and underscores"`
	CharacterName string `json:"character_name" jsonschema:"name of the player character"`
}

// CreateSessionResult represents the MCP tool output for creating a session.
type CreateSessionResult struct {
	Success      bool        `json:"success" jsonschema:"whether the session was created"`
	SessionID    string      `json:"session_id,omitempty" jsonschema:"the new session id"`
	Character    actor.Sheet `json:"character,omitempty" jsonschema:"the new character sheet"`
	StartingRoom string      `json:"starting_room,omitempty" jsonschema:"room the session starts in"`
	Error        string      `json:"error,omitempty" jsonschema:"failure description"`
	Kind         string      `json:"kind,omitempty" jsonschema:"machine-readable failure kind"`
	Hint         string      `json:"hint,omitempty" jsonschema:"how to fix the request"`
}

// SessionInput represents MCP tool input that only names a session.
type SessionInput struct {
	SessionID string `json:"session_id"`
}

// SessionStateResult is the output of a successful get_session_state.
type SessionStateResult struct {
	Success      bool           `json:"success"`
	SessionID    string         `json:"session_id"`
	CurrentRoom  string         `json:"current_room"`
	CurrentMap   string         `json:"current_map"`
	Characters   []string       `json:"characters"`
	ActiveQuests []string       `json:"active_quests"`
	EventFlags   map[string]any `json:"event_flags"`
	TurnCount    int            `json:"turn_count"`
}

func createSessionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_session",
		Description: "Starts a new game session with one character at the map's starting room. Fails if the session id is taken",
	}
}

func getSessionStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_session_state",
		Description: "Returns a session's position, characters, quests, flags and turn count",
		InputSchema: stringProps(map[string]string{"session_id": "session id"}),
	}
}

func (s *Server) createSession(ctx context.Context, _ *mcp.CallToolRequest, in CreateSessionInput) (*mcp.CallToolResult, CreateSessionResult, error) {
	l := s.invocation("create_session", "session_id", in.SessionID, "character", in.CharacterName)

	created, err := s.game.CreateSession(ctx, in.SessionID, in.CharacterName)
	if err != nil {
		out := CreateSessionResult{}
		out.Error, out.Kind, out.Hint = failure(l, err)
		return errorResult(), out, nil
	}
	return nil, CreateSessionResult{
		Success:      true,
		SessionID:    created.SessionID,
		Character:    created.Character,
		StartingRoom: created.StartingRoom,
	}, nil
}

func (s *Server) getSessionState(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in SessionInput
	if err := decodeArguments(req, &in, `Pass {"session_id": ...}`); err != nil {
		return toolResult(newToolFailure(s.invocation("get_session_state"), err), true)
	}
	l := s.invocation("get_session_state", "session_id", in.SessionID)

	st, err := s.game.GetSessionState(ctx, in.SessionID)
	if err != nil {
		return toolResult(newToolFailure(l, err), true)
	}
	flags := st.EventFlags
	if flags == nil {
		flags = map[string]any{}
	}
	return toolResult(SessionStateResult{
		Success:      true,
		SessionID:    st.SessionID,
		CurrentRoom:  st.CurrentRoom,
		CurrentMap:   st.CurrentMap,
		Characters:   nonNilStrings(st.Characters),
		ActiveQuests: nonNilStrings(st.ActiveQuests),
		EventFlags:   flags,
		TurnCount:    st.TurnCount,
	}, false)
}
