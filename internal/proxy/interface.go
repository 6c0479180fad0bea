package proxy

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:generate mockgen -destination=mocks/mock_tool_client.go -package=mocks github.com/dslh/mcp-nexus/internal/proxy ToolClient

// ToolClient is the part of a downstream MCP client session the gateway uses.
// *mcp.ClientSession satisfies it.
//
// Implementations must allow concurrent calls: the gateway does not serialize
// requests to a single downstream server.
type ToolClient interface {
	// ListTools returns one page of the server's tool catalog
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)

	// CallTool invokes a tool on the server
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
}

// SessionSource gives read access to the connected downstream sessions.
// This is the canonical definition used by the catalog and router packages.
type SessionSource interface {
	// Sessions returns every connected session in configuration order
	Sessions() []*Session

	// Lookup returns the session registered under name
	Lookup(name string) (*Session, bool)
}
