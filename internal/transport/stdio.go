package transport

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/dispatcher"
)

const (
	// ServerName is the name advertised to MCP clients during initialize.
	ServerName = "ragmcp"
	// ServerVersion is the current server version string.
	ServerVersion = "0.1.0"
)

// Stdio wraps a mark3labs/mcp-go server over a Dispatcher. One Stdio
// instance serves exactly one client connection, matching the stdio
// transport's single-pipe-pair nature.
type Stdio struct {
	mcp        *server.MCPServer
	dispatcher *dispatcher.Dispatcher
}

// NewStdio builds a Stdio transport and registers every tool the
// dispatcher publishes.
func NewStdio(d *dispatcher.Dispatcher) *Stdio {
	t := &Stdio{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		dispatcher: d,
	}
	for _, ts := range d.ListTools() {
		t.mcp.AddTool(toMCPTool(ts), t.handlerFor(ts.Name))
	}
	return t
}

// Serve blocks, reading JSON-RPC requests from stdin and writing
// responses to stdout, until stdin is closed or server.ServeStdio's own
// SIGINT/SIGTERM handling stops it; ctx is not consulted.
// Callers should have already redirected log output away from stdout,
// since the MCP framing requires stdout to carry nothing else.
func (t *Stdio) Serve(ctx context.Context) error {
	return server.ServeStdio(t.mcp)
}

// handlerFor adapts one dispatcher tool into mcp-go's handler shape,
// translating *apperr.Error into the tool-result error channel rather
// than the JSON-RPC transport-error channel, matching how MCP clients
// expect tool failures (as opposed to protocol failures) to surface.
func (t *Stdio) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		res, err := t.dispatcher.Call(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(errorText(err)), nil
		}
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

// errorText renders an error for the tool-result content block. Typed
// *apperr.Error carries a stable, client-safe message; anything else is
// reported generically so internal detail never leaks to the client.
func errorText(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// toMCPTool converts a dispatcher.ToolSchema's generic JSON-schema map
// into mcp-go's typed ToolInputSchema.
func toMCPTool(ts dispatcher.ToolSchema) mcp.Tool {
	schema := mcp.ToolInputSchema{Type: "object"}
	if props, ok := ts.InputSchema["properties"].(map[string]any); ok {
		converted := make(map[string]interface{}, len(props))
		for k, v := range props {
			converted[k] = v
		}
		schema.Properties = converted
	}
	if req, ok := ts.InputSchema["required"].([]string); ok {
		schema.Required = req
	}
	return mcp.Tool{
		Name:        ts.Name,
		Description: ts.Description,
		InputSchema: schema,
	}
}
