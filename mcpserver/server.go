// Package mcpserver serves the tool catalogue over the Model Context
// Protocol, so MCP clients can drive the desktop without the built-in agent.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/tools"
)

// Name is the server name reported during initialization.
const Name = "deskagent"

// Catalogue lists and executes tools. The global tools registry satisfies
// it through Registry.
type Catalogue interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Registry is the Catalogue backed by the global tools registry.
type Registry struct{}

func (Registry) List() []protocol.Tool {
	return tools.List()
}

func (Registry) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Execute(ctx, name, args)
}

// New creates an MCP server exposing every tool in c. Only names in allow
// are exposed when allow is non-empty.
func New(version string, c Catalogue, allow ...string) *server.MCPServer {
	s := server.NewMCPServer(Name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}

	for _, t := range c.List() {
		if len(allowed) > 0 && !allowed[t.Name] {
			continue
		}
		s.AddTool(toMCPTool(t), handler(c, t.Name))
	}

	return s
}

// Serve runs s over the stdio transport on in and out until ctx is done or
// in is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

func toMCPTool(t protocol.Tool) mcp.Tool {
	params := t.Parameters
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	schema, err := json.Marshal(params)
	if err != nil {
		schema = []byte(`{"type":"object","properties":{}}`)
	}
	return mcp.NewToolWithRawSchema(t.Name, t.Description, schema)
}

func handler(c Catalogue, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := rawArguments(req.GetRawArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error: invalid arguments: %s", err)), nil
		}

		result, err := c.Execute(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error: %s", err)), nil
		}
		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}

func rawArguments(v any) (json.RawMessage, error) {
	switch a := v.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case json.RawMessage:
		if len(a) == 0 {
			return json.RawMessage("{}"), nil
		}
		return a, nil
	case []byte:
		if len(a) == 0 {
			return json.RawMessage("{}"), nil
		}
		return json.RawMessage(a), nil
	default:
		return json.Marshal(a)
	}
}
