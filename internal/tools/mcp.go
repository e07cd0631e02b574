package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
)

// RegisterMCP adds every tool to s. Each MCP tool accepts an extra optional
// "account" argument naming the Google account to act for.
func (d *Dispatcher) RegisterMCP(s *mcpserver.MCPServer) error {
	for _, t := range d.registry.Tools() {
		schema, err := json.Marshal(withAccountProperty(t.Schema))
		if err != nil {
			return fmt.Errorf("failed to encode schema for tool %q: %w", t.Name, err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), d.MCPHandler(t.Name))
	}
	return nil
}

// MCPHandler returns the MCP handler for the tool name. Scheduling outcomes
// other than success and conflict are returned as tool errors, never as
// protocol errors.
func (d *Dispatcher) MCPHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := maps.Clone(request.GetArguments())
		if args == nil {
			args = map[string]any{}
		}

		account, err := accountFromArgs(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid account: %v", err)), nil
		}

		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result := d.Call(google.ContextWithAccount(ctx, account), name, string(raw))
		switch result.Outcome() {
		case instrumentation.OutcomeSuccess, instrumentation.OutcomeConflict:
			return mcp.NewToolResultText(result.Text()), nil
		default:
			return mcp.NewToolResultError(result.Text()), nil
		}
	}
}

func withAccountProperty(s *jsonschema.Schema) *jsonschema.Schema {
	props := maps.Clone(s.Properties)
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	props[accountArg] = str("Account name (default: 'default'). Used to manage multiple Google accounts.")
	return &jsonschema.Schema{
		Type:        s.Type,
		Description: s.Description,
		Properties:  props,
		Required:    s.Required,
	}
}
