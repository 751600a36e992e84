// Package mcpserver exposes the game operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kdabb05/llmud/internal/services"
	"github.com/kdabb05/llmud/pkg/gameerr"
)

const (
	serverName    = "llmud"
	serverVersion = "0.1.0"
)

// Server wires GameService operations to MCP tools.
type Server struct {
	mcp    *mcp.Server
	game   *services.GameService
	logger *slog.Logger
}

// New creates a Server with every tool registered.
func New(game *services.GameService, logger *slog.Logger) *Server {
	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{}),
		game:   game,
		logger: logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, rollDiceTool(), s.rollDice)

	mcp.AddTool(s.mcp, lookupGeographyTool(), s.lookupGeography)
	mcp.AddTool(s.mcp, lookupNPCTool(), s.lookupNPC)
	mcp.AddTool(s.mcp, lookupCreatureTool(), s.lookupCreature)
	mcp.AddTool(s.mcp, lookupScenarioTool(), s.lookupScenario)
	mcp.AddTool(s.mcp, lookupItemTool(), s.lookupItem)

	mcp.AddTool(s.mcp, createSessionTool(), s.createSession)
	mcp.AddTool(s.mcp, readCharacterTool(), s.readCharacter)
	// Raw handler: directive order must survive decoding.
	s.mcp.AddTool(updateCharacterTool(), s.updateCharacter)

	// Raw handlers: success and failure payloads have different shapes.
	s.mcp.AddTool(getSessionStateTool(), s.getSessionState)
	s.mcp.AddTool(getCurrentMapTool(), s.getCurrentMap)
	s.mcp.AddTool(moveCharacterTool(), s.moveCharacter)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// RunStdio serves a single client over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// invocation returns a logger tagged with the tool name and a fresh
// invocation id, and logs the call at debug.
func (s *Server) invocation(tool string, args ...any) *slog.Logger {
	l := s.logger.With("tool", tool, "invocation_id", uuid.NewString())
	l.Debug("Tool called", args...)
	return l
}

// failure describes err for a tool result and logs it. Internal errors get a
// generic message; their detail stays in the log.
func failure(l *slog.Logger, err error) (message string, kind string, hint string) {
	ge := gameerr.As(err)
	if ge.Kind == gameerr.KindInternal {
		l.Error("Tool failed", "error", err)
		return "Internal error", string(ge.Kind), ge.Hint
	}
	l.Debug("Tool rejected request", "kind", ge.Kind, "error", err)
	return ge.Message, string(ge.Kind), ge.Hint
}

func errorResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{IsError: true}
}

// ToolFailure is the output of a raw tool call that failed.
type ToolFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Hint    string `json:"hint,omitempty"`
}

func newToolFailure(l *slog.Logger, err error) ToolFailure {
	out := ToolFailure{}
	out.Error, out.Kind, out.Hint = failure(l, err)
	return out
}

// toolResult builds a raw tool result carrying out as both text and
// structured content.
func toolResult(out any, isError bool) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: json.RawMessage(data),
		IsError:           isError,
	}, nil
}

// decodeArguments reads a raw tool call's arguments into in. Missing
// arguments leave in zero.
func decodeArguments(req *mcp.CallToolRequest, in any, usage string) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, in); err != nil {
		return gameerr.Wrap(gameerr.KindMalformed, err, "Invalid arguments", usage)
	}
	return nil
}

// stringProps builds an object schema whose properties are all required
// strings.
func stringProps(descriptions map[string]string) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}}
	for name, desc := range descriptions {
		schema.Properties[name] = &jsonschema.Schema{Type: "string", Description: desc}
		schema.Required = append(schema.Required, name)
	}
	sort.Strings(schema.Required)
	return schema
}

func nonNilStrings(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
