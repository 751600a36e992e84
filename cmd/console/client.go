package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/internal/mcpserver"
	"github.com/kdabb05/llmud/pkg/actor"
	"github.com/kdabb05/llmud/pkg/lore"
)

// toolError is a failed tool call as reported by the server.
type toolError struct {
	Message string
	Kind    string
	Hint    string
}

func (e *toolError) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + " (" + e.Hint + ")"
}

// gameClient calls the game tools over an MCP session.
type gameClient struct {
	session *mcp.ClientSession
}

func connect(ctx context.Context, endpoint string) (*gameClient, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "llmud-console", Version: "0.1.0"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	return &gameClient{session: cs}, nil
}

func (c *gameClient) Close() error {
	return c.session.Close()
}

// call invokes a tool and decodes its structured content into out. The
// returned error is a *toolError when the tool reported a failure.
func (c *gameClient) call(ctx context.Context, name string, args any, out any) error {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", name, err)
	}

	var data []byte
	if res.StructuredContent != nil {
		data, err = json.Marshal(res.StructuredContent)
		if err != nil {
			return fmt.Errorf("failed to read %s result: %w", name, err)
		}
	} else {
		for _, content := range res.Content {
			if text, ok := content.(*mcp.TextContent); ok {
				data = []byte(text.Text)
				break
			}
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("%s returned no content", name)
	}

	var failure struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
		Hint  string `json:"hint"`
	}
	if err := json.Unmarshal(data, &failure); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", name, err)
	}
	if res.IsError {
		if failure.Error == "" {
			failure.Error = name + " failed"
		}
		return &toolError{Message: failure.Error, Kind: failure.Kind, Hint: failure.Hint}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", name, err)
	}
	return nil
}

// joinSession creates the session, or reuses it when it already exists.
func (c *gameClient) joinSession(ctx context.Context, sessionID, character string) (bool, error) {
	var created mcpserver.CreateSessionResult
	err := c.call(ctx, "create_session", mcpserver.CreateSessionInput{
		SessionID: sessionID, CharacterName: character,
	}, &created)
	var te *toolError
	if errors.As(err, &te) && te.Kind == "already_exists" {
		return false, nil
	}
	return err == nil, err
}

func (c *gameClient) state(ctx context.Context, sessionID string) (*mcpserver.SessionStateResult, error) {
	var out mcpserver.SessionStateResult
	if err := c.call(ctx, "get_session_state", mcpserver.SessionInput{SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *gameClient) look(ctx context.Context, sessionID string) (*mcpserver.MapResult, error) {
	var out mcpserver.MapResult
	if err := c.call(ctx, "get_current_map", mcpserver.SessionInput{SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *gameClient) move(ctx context.Context, sessionID, direction string) (*mcpserver.MapResult, error) {
	var out mcpserver.MapResult
	err := c.call(ctx, "move_character", mcpserver.MoveInput{SessionID: sessionID, Direction: direction}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *gameClient) sheet(ctx context.Context, sessionID, character string) (actor.Sheet, error) {
	var out mcpserver.CharacterResult
	err := c.call(ctx, "read_character", mcpserver.CharacterInput{SessionID: sessionID, CharacterName: character}, &out)
	if err != nil {
		return nil, err
	}
	return out.Character, nil
}

func (c *gameClient) update(ctx context.Context, sessionID, character string, updates actor.Updates) (actor.Sheet, error) {
	var out mcpserver.CharacterResult
	err := c.call(ctx, "update_character", mcpserver.UpdateCharacterInput{
		SessionID: sessionID, CharacterName: character, Updates: updates,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Character, nil
}

func (c *gameClient) roll(ctx context.Context, notation string) (*mcpserver.RollDiceResult, error) {
	var out mcpserver.RollDiceResult
	if err := c.call(ctx, "roll_dice", mcpserver.RollDiceInput{Notation: notation}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// lookupTools maps a lore category to its tool and query argument.
var lookupTools = map[lore.Category]struct{ tool, arg string }{
	lore.Geography: {"lookup_geography", "region"},
	lore.NPCs:      {"lookup_npc", "name"},
	lore.Creatures: {"lookup_creature", "creature_type"},
	lore.Scenarios: {"lookup_scenario", "scenario_id"},
	lore.Items:     {"lookup_item", "item_id"},
}

func (c *gameClient) lookup(ctx context.Context, category lore.Category, query string) (*mcpserver.LookupResult, error) {
	t, ok := lookupTools[category]
	if !ok {
		return nil, fmt.Errorf("unknown lore category %q", category)
	}
	var out mcpserver.LookupResult
	if err := c.call(ctx, t.tool, map[string]any{t.arg: strings.TrimSpace(query)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
