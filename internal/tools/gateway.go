// Package tools registers the gateway's MCP tools on the upstream server
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-nexus/internal/types"
)

// Tool names exposed upstream
const (
	ServerInformationTool = "get-server-information"
	ListToolsTool         = "list-tools"
	InputSchemaTool       = "get-input-schema-for-tools"
	CallToolTool          = "call-tool"
)

const (
	// ServerName is the upstream server identity
	ServerName = "nexus-mcp"

	// ServerVersion is the upstream server version
	ServerVersion = "0.0.1"
)

// Catalog renders the aggregated catalog views
type Catalog interface {
	Info(ctx context.Context) *mcp.CallToolResult
	FullCatalog(ctx context.Context) *mcp.CallToolResult
	Schemas(ctx context.Context, requests []types.ServerToolsRequest) *mcp.CallToolResult
}

// Caller forwards a single tool call downstream
type Caller interface {
	CallTool(ctx context.Context, serverName, toolName string, args map[string]any) *mcp.CallToolResult
}

// NewServer creates the upstream MCP server with the gateway tools registered
func NewServer(catalog Catalog, caller Caller) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	Register(server, catalog, caller)
	return server
}

// Register adds the four gateway tools to server. Handlers always answer
// with a result; failures are reported through isError.
func Register(server *mcp.Server, catalog Catalog, caller Caller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ServerInformationTool,
		Description: "Use this to show the information of this MCP server.",
		InputSchema: openObject(),
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ map[string]any) (*mcp.CallToolResult, any, error) {
		return catalog.Info(ctx), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        ListToolsTool,
		Description: "Use this to show all tool lists.",
		InputSchema: openObject(),
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ map[string]any) (*mcp.CallToolResult, any, error) {
		return catalog.FullCatalog(ctx), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        InputSchemaTool,
		Description: "Use this to show the input schema of the specific tools.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args types.SchemaLookupArgs) (*mcp.CallToolResult, any, error) {
		return catalog.Schemas(ctx, args.Servers), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: CallToolTool,
		Description: "Use this to call a tool and run the script of the tool. " +
			"Use this only when you already know the server name, tool name, and the input schema of the tool.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args types.CallToolArgs) (*mcp.CallToolResult, any, error) {
		return caller.CallTool(ctx, args.ServerName, args.ToolName, args.Args), nil, nil
	})
}

// openObject accepts any argument object, including none
func openObject() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}
