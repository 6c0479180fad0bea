// Package router forwards a single tool call to the downstream server that
// owns the tool
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/envelope"
	"github.com/dslh/mcp-nexus/internal/logging"
	"github.com/dslh/mcp-nexus/internal/metrics"
	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/validation"
)

// MissingCallRequest is returned when a call names no server or no tool
const MissingCallRequest = "Provide the server name, tool name, and arguments for the tool."

var errEmptyResult = errors.New("downstream server returned no result")

// Router validates call requests and forwards them to their session
type Router struct {
	source   proxy.SessionSource
	logger   *zap.SugaredLogger
	metrics  *metrics.Recorder
	validate bool
}

// Option configures a Router
type Option func(*Router)

// WithLogger sets the logger used to report failed calls
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMetrics records every routed call
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(r *Router) {
		r.metrics = recorder
	}
}

// WithArgValidation checks arguments against the tool's live input schema
// before forwarding
func WithArgValidation(enabled bool) Option {
	return func(r *Router) {
		r.validate = enabled
	}
}

// New creates a router over source
func New(source proxy.SessionSource, opts ...Option) *Router {
	r := &Router{
		source: source,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CallTool forwards one call and returns the downstream result unchanged.
// Every failure is reported as an error result; CallTool never returns nil.
func (r *Router) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) *mcp.CallToolResult {
	start := time.Now()

	if serverName == "" || toolName == "" {
		r.metrics.ObserveCall(metrics.UnknownServer, metrics.OutcomeRejected, 0)
		return envelope.Error("%s", MissingCallRequest)
	}

	session, ok := r.source.Lookup(serverName)
	if !ok {
		r.metrics.ObserveCall(metrics.UnknownServer, metrics.OutcomeRejected, 0)
		return envelope.Error("Provide server name (%s) was not found.", serverName)
	}

	if r.validate {
		if res := r.checkArgs(ctx, session, toolName, args); res != nil {
			r.metrics.ObserveCall(session.Name, metrics.OutcomeRejected, 0)
			return res
		}
	}

	res, err := r.forward(ctx, session, toolName, args)
	if err != nil {
		r.logger.Warnw("Tool call failed", "server", serverName, "tool", toolName, "error", err)
		r.metrics.ObserveCall(session.Name, metrics.OutcomeError, time.Since(start))
		return envelope.Error("Error calling tool: %s", err.Error())
	}

	outcome := metrics.OutcomeOK
	if res.IsError {
		outcome = metrics.OutcomeError
	}
	r.metrics.ObserveCall(session.Name, outcome, time.Since(start))
	return res
}

func (r *Router) forward(ctx context.Context, session *proxy.Session, toolName string, args map[string]any) (res *mcp.CallToolResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = fmt.Errorf("panic during call: %v", p)
		}
	}()

	res, err = session.CallTool(ctx, toolName, args)
	if err == nil && res == nil {
		err = errEmptyResult
	}
	return res, err
}

// checkArgs returns an error result when args do not satisfy the tool's
// schema. Anything that prevents validation lets the call through.
func (r *Router) checkArgs(ctx context.Context, session *proxy.Session, toolName string, args map[string]any) *mcp.CallToolResult {
	tools, err := listTools(ctx, session)
	if err != nil {
		r.logger.Debugw("Skipping argument validation", "server", session.Name, "tool", toolName, "error", err)
		return nil
	}

	var schema any
	found := false
	for _, tool := range tools {
		if tool.Name == toolName {
			schema, found = tool.InputSchema, true
			break
		}
	}
	if !found {
		return nil
	}

	if err := validation.ValidateArgs(schema, args); err != nil {
		if validation.IsSchemaError(err) {
			r.logger.Debugw("Skipping argument validation", "server", session.Name, "tool", toolName, "error", err)
			return nil
		}
		return envelope.Error("Invalid arguments for tool %s: %s", toolName, validation.FormatValidationError(err))
	}
	return nil
}

func listTools(ctx context.Context, session *proxy.Session) (tools []*mcp.Tool, err error) {
	defer func() {
		if p := recover(); p != nil {
			tools = nil
			err = fmt.Errorf("panic while listing tools: %v", p)
		}
	}()
	return session.ListAllTools(ctx)
}
