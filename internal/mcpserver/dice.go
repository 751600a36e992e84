package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Notation string `json:"notation" jsonschema:"dice notation such as 1d20, 2d6+3 or d8-1"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	Success  bool   `json:"success" jsonschema:"whether the roll happened"`
	Notation string `json:"notation,omitempty" jsonschema:"notation as given"`
	Rolls    []int  `json:"rolls,omitempty" jsonschema:"individual die results"`
	Modifier int    `json:"modifier,omitempty" jsonschema:"modifier added to the total"`
	Total    int    `json:"total" jsonschema:"sum of the dice and modifier"`
	Error    string `json:"error,omitempty" jsonschema:"failure description"`
	Kind     string `json:"kind,omitempty" jsonschema:"machine-readable failure kind"`
	Hint     string `json:"hint,omitempty" jsonschema:"how to fix the request"`
}

func rollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls dice in standard notation (NdS, NdS+M, NdS-M) and returns each die and the total",
	}
}

func (s *Server) rollDice(ctx context.Context, _ *mcp.CallToolRequest, in RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
	l := s.invocation("roll_dice", "notation", in.Notation)

	res, err := s.game.RollDice(in.Notation)
	if err != nil {
		out := RollDiceResult{}
		out.Error, out.Kind, out.Hint = failure(l, err)
		return errorResult(), out, nil
	}
	return nil, RollDiceResult{
		Success:  true,
		Notation: res.Notation,
		Rolls:    res.Rolls,
		Modifier: res.Modifier,
		Total:    res.Total,
	}, nil
}
