package tools

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/honeybadger-mcp/utils"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ErrFailedUnmarshalInput is returned when the tool input does not parse
// against the declared schema.
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")

// ErrInvalidRequest is returned when a required argument is missing or
// malformed. No upstream call is made in that case.
var ErrInvalidRequest = errors.New("invalid request")

// McpServerRegistrator registers a tool and its handler with an MCP server.
// Satisfied by *server.MCPServer.
type McpServerRegistrator interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// ITool is a single callable operation exposed over MCP.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool.
	Description() string
	// Parameters returns the parameters definition of the tool.
	Parameters() any

	// Call executes the tool with the given JSON input and returns the result.
	// If the tool fails to parse the input, it returns ErrFailedUnmarshalInput.
	Call(context.Context, string) (string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

// RegisterMCPTool declares the tool on the server with its raw JSON schema
// and adapts the MCP call envelope to the tool's Call entry point.
// All tool failures are converted to a tool error result, never a protocol
// error: the calling agent decides whether to retry.
func RegisterMCPTool(r McpServerRegistrator, t ITool) error {
	raw, err := json.Marshal(t.Parameters())
	if err != nil {
		return errors.Wrapf(err, "failed to marshal parameters schema for %q", t.Name())
	}

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := t.Call(ctx, string(input))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}

	r.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw), handler)
	return nil
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a YAML rendering of the tool names and descriptions.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return utils.ToYAML(d)
}
