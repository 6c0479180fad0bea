// Package httpserver serves the gateway over MCP streamable HTTP, alongside
// health and metrics endpoints
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/metrics"
	"github.com/dslh/mcp-nexus/internal/proxy"
)

const (
	// MCPPath is where the streamable MCP endpoint is mounted
	MCPPath = "/mcp"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// StatusSource reports the connection outcome of every configured server
type StatusSource interface {
	Statuses() []proxy.ServerStatus
}

// Options selects what a router serves
type Options struct {
	// MCPServer is mounted at MCPPath when set
	MCPServer *mcp.Server
	// Metrics is served at /metrics when set
	Metrics *metrics.Recorder
	// Statuses backs /healthz when set
	Statuses StatusSource
	// AllowedOrigins for CORS on the MCP endpoint. Empty serves no CORS
	// headers, so browsers keep cross-origin pages out.
	AllowedOrigins []string
}

// serverHealth is one entry of the /healthz body
type serverHealth struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewRouter builds the HTTP handler for opts
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Get("/healthz", healthHandler(opts.Statuses))

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	if opts.MCPServer != nil {
		server := opts.MCPServer
		streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil)
		var handler http.Handler = streamable
		if len(opts.AllowedOrigins) > 0 {
			handler = corsHandler(opts.AllowedOrigins).Handler(streamable)
		}
		r.Handle(MCPPath, handler)
	}

	return r
}

func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	})
}

func healthHandler(source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		servers := []serverHealth{}
		if source != nil {
			for _, status := range source.Statuses() {
				entry := serverHealth{
					Name:    status.Name,
					State:   string(status.State),
					Version: status.Version,
				}
				if status.Err != nil {
					entry.Error = status.Err.Error()
				}
				servers = append(servers, entry)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"servers": servers})
	}
}

// Serve listens on address and serves handler until ctx is cancelled
func Serve(ctx context.Context, address string, handler http.Handler, logger *zap.SugaredLogger) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return ServeListener(ctx, listener, handler, logger)
}

// ServeListener serves handler on an existing listener until ctx is cancelled
func ServeListener(ctx context.Context, listener net.Listener, handler http.Handler, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		BaseContext:       func(net.Listener) context.Context { return ctx },
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Infow("Starting HTTP server", "address", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
