package mcpserver

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/pkg/actor"
)

// CharacterInput represents the MCP tool input for reading a character.
type CharacterInput struct {
	SessionID     string `json:"session_id" jsonschema:"session id"`
	CharacterName string `json:"character_name" jsonschema:"character name"`
}

// UpdateCharacterInput is decoded by hand so the updates keep their order.
type UpdateCharacterInput struct {
	SessionID     string        `json:"session_id"`
	CharacterName string        `json:"character_name"`
	Updates       actor.Updates `json:"updates"`
}

// CharacterResult represents the MCP tool output for character reads and updates.
type CharacterResult struct {
	Success   bool        `json:"success" jsonschema:"whether the call succeeded"`
	Character actor.Sheet `json:"character,omitempty" jsonschema:"the full character sheet"`
	Error     string      `json:"error,omitempty" jsonschema:"failure description"`
	Kind      string      `json:"kind,omitempty" jsonschema:"machine-readable failure kind"`
	Hint      string      `json:"hint,omitempty" jsonschema:"how to fix the request"`
}

const updatesDescription = `Update directives, applied in order. Keys:
  "field": value       assign (e.g. "gold": 50)
  "field": "+N" / "-N" add to a number (gold may not go below 0)
  "field+": value      append to a list (e.g. "inventory+": "sword")
  "field-": value      remove the first matching list entry
  "a.b": value         set a nested value (e.g. "stats.strength": 12, "stats.hp": "-5")
hp is always capped at max_hp. If any directive fails nothing is saved.`

func readCharacterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_character",
		Description: "Returns a character's full sheet: stats, inventory, gold and notes",
	}
}

func updateCharacterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_character",
		Description: "Changes a character sheet with ordered update directives; the whole batch succeeds or nothing changes",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"session_id":     {Type: "string", Description: "session id"},
				"character_name": {Type: "string", Description: "character name"},
				"updates":        {Type: "object", Description: updatesDescription},
			},
			Required: []string{"session_id", "character_name", "updates"},
		},
	}
}

func (s *Server) readCharacter(ctx context.Context, _ *mcp.CallToolRequest, in CharacterInput) (*mcp.CallToolResult, CharacterResult, error) {
	l := s.invocation("read_character", "session_id", in.SessionID, "character", in.CharacterName)

	sheet, err := s.game.ReadCharacter(ctx, in.SessionID, in.CharacterName)
	if err != nil {
		out := CharacterResult{}
		out.Error, out.Kind, out.Hint = failure(l, err)
		return errorResult(), out, nil
	}
	return nil, CharacterResult{Success: true, Character: sheet}, nil
}

func (s *Server) updateCharacter(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in UpdateCharacterInput
	err := decodeArguments(req, &in, `Pass {"session_id": ..., "character_name": ..., "updates": {...}}`)
	if err != nil {
		l := s.invocation("update_character")
		out := CharacterResult{}
		out.Error, out.Kind, out.Hint = failure(l, err)
		return toolResult(out, true)
	}
	l := s.invocation("update_character",
		"session_id", in.SessionID, "character", in.CharacterName, "directives", len(in.Updates))

	sheet, err := s.game.UpdateCharacter(ctx, in.SessionID, in.CharacterName, in.Updates)
	if err != nil {
		out := CharacterResult{}
		out.Error, out.Kind, out.Hint = failure(l, err)
		return toolResult(out, true)
	}
	return toolResult(CharacterResult{Success: true, Character: sheet}, false)
}
