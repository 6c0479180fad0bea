package proxy

import (
	"context"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UnknownVersion is reported for servers whose handshake carries no version
const UnknownVersion = "unknown"

// Session is the live connection to one downstream server
type Session struct {
	Name    string
	Version string
	Client  ToolClient

	transport mcp.Transport
	closer    io.Closer
}

// NewSession wraps an already connected client
func NewSession(name, version string, client ToolClient) *Session {
	if version == "" {
		version = UnknownVersion
	}
	return &Session{
		Name:    name,
		Version: version,
		Client:  client,
	}
}

// Transport returns the transport the session was established over, or nil
// for sessions built with NewSession
func (s *Session) Transport() mcp.Transport {
	return s.transport
}

// ListAllTools fetches the complete tool catalog, following pagination
// cursors. A cursor seen before ends the walk.
func (s *Session) ListAllTools(ctx context.Context) ([]*mcp.Tool, error) {
	var (
		tools  []*mcp.Tool
		cursor string
		seen   = map[string]struct{}{"": {}}
	)
	for {
		params := &mcp.ListToolsParams{Cursor: cursor}
		res, err := s.Client.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		if res == nil {
			return tools, nil
		}
		tools = append(tools, res.Tools...)
		if _, ok := seen[res.NextCursor]; ok {
			return tools, nil
		}
		seen[res.NextCursor] = struct{}{}
		cursor = res.NextCursor
	}
}

// CallTool forwards a tool call to the downstream server
func (s *Session) CallTool(ctx context.Context, toolName string, arguments map[string]any) (*mcp.CallToolResult, error) {
	if arguments == nil {
		arguments = map[string]any{}
	}
	return s.Client.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	})
}

func (s *Session) close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
