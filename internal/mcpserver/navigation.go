package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/internal/services"
	"github.com/kdabb05/llmud/pkg/gameerr"
)

// MoveInput represents the MCP tool input for moving.
type MoveInput struct {
	SessionID string `json:"session_id"`
	Direction string `json:"direction"`
}

// MapResult is the output of a successful get_current_map or move_character.
type MapResult struct {
	Success         bool              `json:"success"`
	CurrentRoom     string            `json:"current_room"`
	RoomDescription string            `json:"room_description"`
	Exits           map[string]string `json:"exits"`
	Items           []string          `json:"items"`
	Diagram         string            `json:"diagram"`
}

// MoveFailure is the output of a move through an exit the room lacks.
type MoveFailure struct {
	ToolFailure
	ValidExits []string `json:"valid_exits"`
}

func getCurrentMapTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_current_map",
		Description: "Describes the current room and its exits, with an SVG map of the area",
		InputSchema: stringProps(map[string]string{"session_id": "session id"}),
	}
}

func moveCharacterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move_character",
		Description: "Moves the party through an exit of the current room and describes the new room",
		InputSchema: stringProps(map[string]string{
			"session_id": "session id",
			"direction":  "exit to take, e.g. north, up, east",
		}),
	}
}

func (s *Server) getCurrentMap(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in SessionInput
	if err := decodeArguments(req, &in, `Pass {"session_id": ...}`); err != nil {
		return toolResult(newToolFailure(s.invocation("get_current_map"), err), true)
	}
	l := s.invocation("get_current_map", "session_id", in.SessionID)

	view, err := s.game.GetCurrentMap(ctx, in.SessionID)
	if err != nil {
		return toolResult(newToolFailure(l, err), true)
	}
	return toolResult(mapResult(view), false)
}

func (s *Server) moveCharacter(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in MoveInput
	if err := decodeArguments(req, &in, `Pass {"session_id": ..., "direction": ...}`); err != nil {
		return toolResult(newToolFailure(s.invocation("move_character"), err), true)
	}
	l := s.invocation("move_character", "session_id", in.SessionID, "direction", in.Direction)

	view, err := s.game.MoveCharacter(ctx, in.SessionID, in.Direction)
	if err != nil {
		out := newToolFailure(l, err)
		if ge := gameerr.As(err); ge.Kind == gameerr.KindNoSuchExit {
			return toolResult(MoveFailure{ToolFailure: out, ValidExits: nonNilStrings(ge.ValidExits)}, true)
		}
		return toolResult(out, true)
	}
	return toolResult(mapResult(view), false)
}

func mapResult(view *services.MapView) MapResult {
	exits := view.Exits
	if exits == nil {
		exits = map[string]string{}
	}
	return MapResult{
		Success:         true,
		CurrentRoom:     view.CurrentRoom,
		RoomDescription: view.Description,
		Exits:           exits,
		Items:           nonNilStrings(view.Items),
		Diagram:         view.Diagram,
	}
}
