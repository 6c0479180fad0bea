// Package testkit runs real MCP servers in-process for tests. Servers are
// reached through in-memory transports instead of subprocesses.
package testkit

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/proxy"
)

// Tool describes a tool exposed by a test server
type Tool struct {
	Name        string
	Description string
	// InputSchema defaults to an empty object schema
	InputSchema map[string]any
	// Handler defaults to EchoHandler
	Handler mcp.ToolHandler
}

// NewServer returns an MCP server named name that reports version and
// exposes tools
func NewServer(name, version string, tools ...Tool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	for _, tool := range tools {
		schema := tool.InputSchema
		if schema == nil {
			schema = map[string]any{"type": "object"}
		}
		handler := tool.Handler
		if handler == nil {
			handler = EchoHandler
		}
		server.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		}, handler)
	}
	return server
}

// EchoHandler returns the raw call arguments as a single text block
func EchoHandler(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(req.Params.Arguments)}},
	}, nil
}

// Dialer connects each descriptor to the server registered under its name.
// Descriptors without a server fail to dial.
func Dialer(servers map[string]*mcp.Server) proxy.Dialer {
	return func(ctx context.Context, d config.ServerDescriptor) (mcp.Transport, error) {
		server, ok := servers[d.Name]
		if !ok {
			return nil, fmt.Errorf("no test server named %s", d.Name)
		}
		serverTransport, clientTransport := mcp.NewInMemoryTransports()
		if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
			return nil, fmt.Errorf("failed to start test server %s: %w", d.Name, err)
		}
		return clientTransport, nil
	}
}

// Descriptors returns one descriptor per name, in order
func Descriptors(names ...string) []config.ServerDescriptor {
	descriptors := make([]config.ServerDescriptor, 0, len(names))
	for _, name := range names {
		descriptors = append(descriptors, config.ServerDescriptor{
			Name:    name,
			Command: name + "-server",
		})
	}
	return descriptors
}

// Connect builds a manager connected to servers, in the order of names
func Connect(ctx context.Context, servers map[string]*mcp.Server, names ...string) *proxy.Manager {
	m := proxy.NewManager(proxy.WithDialer(Dialer(servers)))
	m.ConnectAll(ctx, Descriptors(names...))
	return m
}
