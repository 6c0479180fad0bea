// Package catalog renders the aggregated views over every connected
// downstream server: a summary, the full tool inventory and input schema
// lookups. Catalogs are fetched fresh for every request.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/envelope"
	"github.com/dslh/mcp-nexus/internal/logging"
	"github.com/dslh/mcp-nexus/internal/metrics"
	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/types"
)

const (
	separator = "=================================================="

	// MissingSchemaRequest is returned when a schema lookup names no servers
	MissingSchemaRequest = "Provide the server names and tool names for each server."
)

var searchHints = []string{
	"💡 SEARCH HINTS FOR COMPLEX TASKS:",
	"- PDF Generation: Search for 'convert' or 'mimeType' (Target: 'application/pdf').",
	"- Markdown to Doc: Search for 'markdown' in descriptions.",
	"- Shareable URL: You MUST change 'permission' or 'share' to 'public' or 'anyone' BEFORE sharing.",
	"- Google Apps Script (GAS): Search for 'explanation_reference_generate_google_apps_script' or 'gas'.",
}

// FetchError reports a downstream server whose tool catalog could not be
// fetched
type FetchError struct {
	Server string
	Err    error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch tools from %s: %v", e.Server, e.Err)
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Aggregator builds catalog views from the sessions of a SessionSource
type Aggregator struct {
	source      proxy.SessionSource
	logger      *zap.SugaredLogger
	metrics     *metrics.Recorder
	concurrency int
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger used to report fetch failures
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics records every catalog fetch
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(a *Aggregator) {
		a.metrics = recorder
	}
}

// WithConcurrency bounds how many catalogs are fetched at once. Values below
// one fall back to the default.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAggregator creates an aggregator over source
func NewAggregator(source proxy.SessionSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:      source,
		logger:      logging.Nop(),
		concurrency: config.DefaultCatalogConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ServerCatalog is the outcome of fetching one session's catalog. Err is a
// *FetchError when the fetch failed.
type ServerCatalog struct {
	Session *proxy.Session
	Tools   []*mcp.Tool
	Err     error
}

// Reason returns the cause of a failed fetch without the server prefix, or
// "" when the fetch succeeded
func (c ServerCatalog) Reason() string {
	if c.Err == nil {
		return ""
	}
	return reason(c.Err)
}

// Catalogs fetches the catalog of every session in registry order. A failed
// or panicking server is reported in its entry and never affects the others.
func (a *Aggregator) Catalogs(ctx context.Context) []ServerCatalog {
	return a.fetchAll(ctx, a.source.Sessions())
}

// Info summarizes every connected server with its version and tool count
func (a *Aggregator) Info(ctx context.Context) *mcp.CallToolResult {
	catalogs := a.Catalogs(ctx)

	plural := ""
	if len(catalogs) > 1 {
		plural = "s"
	}
	lines := []string{
		fmt.Sprintf("Currently, you can use the following tools of %d server%s.", len(catalogs), plural),
	}

	for _, c := range catalogs {
		if c.Err != nil {
			lines = append(lines, fmt.Sprintf("Server name: %s - Error fetching details: %s", c.Session.Name, reason(c.Err)))
			continue
		}
		lines = append(lines, fmt.Sprintf("Server name: %s (v%s) Total tools: %d", c.Session.Name, c.Session.Version, len(c.Tools)))
	}

	return envelope.Text("%s", strings.Join(lines, "\n"))
}

// FullCatalog lists every tool of every connected server, followed by
// search hints
func (a *Aggregator) FullCatalog(ctx context.Context) *mcp.CallToolResult {
	catalogs := a.Catalogs(ctx)

	lines := []string{
		separator,
		fmt.Sprintf("MCP SERVER INVENTORY (Total Servers: %d)", len(catalogs)),
		separator,
		"Directives: Use the EXACT string in [SERVER_ID] and [TOOL_ID].\n",
	}

	for _, c := range catalogs {
		if c.Err != nil {
			lines = append(lines, fmt.Sprintf("[SERVER_ID: %s] | Error fetching details: %s\n", c.Session.Name, reason(c.Err)))
			continue
		}

		lines = append(lines, fmt.Sprintf("[SERVER_ID: %s] (Version: v%s)", c.Session.Name, c.Session.Version))
		toolLines := make([]string, 0, len(c.Tools))
		for _, tool := range c.Tools {
			desc := strings.ReplaceAll(tool.Description, "\n", " ")
			toolLines = append(toolLines, fmt.Sprintf("- [TOOL_ID: %s] | DESC: %s", tool.Name, desc))
		}
		lines = append(lines, strings.Join(toolLines, "\n"), "")
	}

	lines = append(lines, separator)
	lines = append(lines, searchHints...)
	lines = append(lines, separator)

	return envelope.Text("%s", strings.Join(lines, "\n"))
}

// Schemas returns the input schema of each requested tool. Unknown servers
// and tools are skipped; a server whose catalog cannot be fetched is
// reported inline.
func (a *Aggregator) Schemas(ctx context.Context, requests []types.ServerToolsRequest) *mcp.CallToolResult {
	if len(requests) == 0 {
		return envelope.Error("%s", MissingSchemaRequest)
	}

	var (
		known    []types.ServerToolsRequest
		sessions []*proxy.Session
	)
	for _, req := range requests {
		session, ok := a.source.Lookup(req.ServerName)
		if !ok {
			a.logger.Debugw("Skipping schema request for unknown server", "server", req.ServerName)
			continue
		}
		known = append(known, req)
		sessions = append(sessions, session)
	}

	catalogs := a.fetchAll(ctx, sessions)

	var parts []string
	for i, req := range known {
		c := catalogs[i]
		if c.Err != nil {
			parts = append(parts, fmt.Sprintf("Error fetching schemas from %s: %s", req.ServerName, reason(c.Err)))
			continue
		}

		schemas := make(map[string]any, len(c.Tools))
		for _, tool := range c.Tools {
			schemas[tool.Name] = tool.InputSchema
		}

		for _, name := range req.ToolNames {
			schema, ok := schemas[name]
			if !ok || schema == nil {
				continue
			}
			encoded, err := compactJSON(schema)
			if err != nil {
				parts = append(parts, fmt.Sprintf("Error fetching schemas from %s: %v", req.ServerName, err))
				continue
			}
			parts = append(parts, fmt.Sprintf("# Server name: %s, Tool name: %s\n````json\n%s\n````", req.ServerName, name, encoded))
		}
	}

	return envelope.Text("%s", strings.Join(parts, "\n"))
}

// fetchAll fetches the catalog of every session concurrently. Results are
// returned in the order of sessions.
func (a *Aggregator) fetchAll(ctx context.Context, sessions []*proxy.Session) []ServerCatalog {
	results := make([]ServerCatalog, len(sessions))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, session := range sessions {
		g.Go(func() error {
			tools, err := a.fetch(ctx, session)
			results[i] = ServerCatalog{Session: session, Tools: tools, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Aggregator) fetch(ctx context.Context, session *proxy.Session) (tools []*mcp.Tool, err error) {
	defer func() {
		if r := recover(); r != nil {
			tools = nil
			err = fmt.Errorf("panic while listing tools: %v", r)
		}
		if err != nil {
			err = &FetchError{Server: session.Name, Err: err}
			a.logger.Warnw("Failed to fetch tool catalog", "server", session.Name, "error", err)
		}
		a.metrics.ObserveFetch(session.Name, err)
	}()

	return session.ListAllTools(ctx)
}

// reason returns the message shown inline for a failed fetch
func reason(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Err.Error()
	}
	return err.Error()
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
