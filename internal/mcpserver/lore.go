package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/pkg/gameerr"
	"github.com/kdabb05/llmud/pkg/lore"
)

// LookupGeographyInput represents the MCP tool input for region lookups.
type LookupGeographyInput struct {
	Region string `json:"region" jsonschema:"region name, e.g. thornwood"`
}

// LookupNPCInput represents the MCP tool input for NPC lookups.
type LookupNPCInput struct {
	Name string `json:"name" jsonschema:"NPC key or display name"`
}

// LookupCreatureInput represents the MCP tool input for creature lookups.
type LookupCreatureInput struct {
	CreatureType string `json:"creature_type" jsonschema:"creature type, e.g. dire_wolf"`
}

// LookupScenarioInput represents the MCP tool input for scenario lookups.
type LookupScenarioInput struct {
	ScenarioID string `json:"scenario_id" jsonschema:"scenario identifier"`
}

// LookupItemInput represents the MCP tool input for item lookups.
type LookupItemInput struct {
	ItemID string `json:"item_id" jsonschema:"item identifier or part of its name"`
}

// LookupResult represents the MCP tool output for every lore lookup. Exactly
// one entry field is set on a hit.
type LookupResult struct {
	Found       bool           `json:"found" jsonschema:"whether an entry matched"`
	Query       string         `json:"query" jsonschema:"the search term used"`
	Region      *lore.Region   `json:"region,omitempty" jsonschema:"matched region"`
	NPC         *lore.NPC      `json:"npc,omitempty" jsonschema:"matched NPC"`
	Creature    *lore.Creature `json:"creature,omitempty" jsonschema:"matched creature"`
	Scenario    *lore.Scenario `json:"scenario,omitempty" jsonschema:"matched scenario"`
	Items       []lore.Item    `json:"items,omitempty" jsonschema:"matched items"`
	Suggestions []string       `json:"suggestions,omitempty" jsonschema:"similar keys when nothing matched"`
	Available   []string       `json:"available,omitempty" jsonschema:"every item name when there are no suggestions"`
	Error       string         `json:"error,omitempty" jsonschema:"failure description"`
	Kind        string         `json:"kind,omitempty" jsonschema:"machine-readable failure kind"`
	Hint        string         `json:"hint,omitempty" jsonschema:"how to fix the request"`
}

func lookupGeographyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_geography",
		Description: "Looks up a region of the game world: description, notable features and connections",
	}
}

func lookupNPCTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_npc",
		Description: "Looks up a non-player character by key or name: role, personality and what they know",
	}
}

func lookupCreatureTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_creature",
		Description: "Looks up a creature type for encounters: stats, weaknesses and abilities",
	}
}

func lookupScenarioTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_scenario",
		Description: "Looks up an adventure scenario: hook, details and rewards",
	}
}

func lookupItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_item",
		Description: "Looks up an item or artifact by id, or every item whose id or name contains the query",
	}
}

func (s *Server) lookupGeography(ctx context.Context, _ *mcp.CallToolRequest, in LookupGeographyInput) (*mcp.CallToolResult, LookupResult, error) {
	return s.lookup(ctx, "lookup_geography", lore.Geography, in.Region, func(c lore.Collection, out *LookupResult) error {
		r, err := c.Region(in.Region)
		out.Region = r
		return err
	})
}

func (s *Server) lookupNPC(ctx context.Context, _ *mcp.CallToolRequest, in LookupNPCInput) (*mcp.CallToolResult, LookupResult, error) {
	return s.lookup(ctx, "lookup_npc", lore.NPCs, in.Name, func(c lore.Collection, out *LookupResult) error {
		n, err := c.NPC(in.Name)
		out.NPC = n
		return err
	})
}

func (s *Server) lookupCreature(ctx context.Context, _ *mcp.CallToolRequest, in LookupCreatureInput) (*mcp.CallToolResult, LookupResult, error) {
	return s.lookup(ctx, "lookup_creature", lore.Creatures, in.CreatureType, func(c lore.Collection, out *LookupResult) error {
		cr, err := c.Creature(in.CreatureType)
		out.Creature = cr
		return err
	})
}

func (s *Server) lookupScenario(ctx context.Context, _ *mcp.CallToolRequest, in LookupScenarioInput) (*mcp.CallToolResult, LookupResult, error) {
	return s.lookup(ctx, "lookup_scenario", lore.Scenarios, in.ScenarioID, func(c lore.Collection, out *LookupResult) error {
		sc, err := c.Scenario(in.ScenarioID)
		out.Scenario = sc
		return err
	})
}

func (s *Server) lookupItem(ctx context.Context, _ *mcp.CallToolRequest, in LookupItemInput) (*mcp.CallToolResult, LookupResult, error) {
	return s.lookup(ctx, "lookup_item", lore.Items, in.ItemID, func(c lore.Collection, out *LookupResult) error {
		items, err := c.Items(in.ItemID)
		out.Items = items
		return err
	})
}

// lookup loads category and runs find against it. A miss is a normal result
// with suggestions, not a tool error.
func (s *Server) lookup(ctx context.Context, tool string, category lore.Category, query string,
	find func(lore.Collection, *LookupResult) error) (*mcp.CallToolResult, LookupResult, error) {
	l := s.invocation(tool, "query", query)
	out := LookupResult{Query: query}

	c, err := s.game.Lore(ctx, category)
	if err != nil {
		out.Error, out.Kind, out.Hint = failure(l, err)
		return errorResult(), out, nil
	}

	err = find(c, &out)
	if err == nil {
		out.Found = true
		return nil, out, nil
	}
	return s.missResult(l, category, out, err)
}

func (s *Server) missResult(l *slog.Logger, category lore.Category, out LookupResult, err error) (*mcp.CallToolResult, LookupResult, error) {
	var itemMiss *lore.ItemMiss
	var miss *lore.Miss
	switch {
	case errors.As(err, &itemMiss):
		out.Suggestions = itemMiss.Suggestions
		out.Available = itemMiss.All
	case errors.As(err, &miss):
		out.Suggestions = miss.Suggestions
	default:
		out.Error, out.Kind, out.Hint = failure(l, err)
		return errorResult(), out, nil
	}

	out.Error = fmt.Sprintf("No %s entry found for '%s'", category, out.Query)
	out.Kind = string(gameerr.KindNotFound)
	l.Debug("Lookup missed", "category", category, "suggestions", len(out.Suggestions))
	return nil, out, nil
}
