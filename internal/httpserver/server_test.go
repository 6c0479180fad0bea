package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dslh/mcp-nexus/internal/catalog"
	"github.com/dslh/mcp-nexus/internal/envelope"
	"github.com/dslh/mcp-nexus/internal/httpserver"
	"github.com/dslh/mcp-nexus/internal/metrics"
	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/router"
	"github.com/dslh/mcp-nexus/internal/testkit"
	"github.com/dslh/mcp-nexus/internal/tools"
)

type fixedStatuses []proxy.ServerStatus

func (f fixedStatuses) Statuses() []proxy.ServerStatus { return f }

func TestHealthz(t *testing.T) {
	t.Parallel()

	handler := httpserver.NewRouter(httpserver.Options{
		Statuses: fixedStatuses{
			{Name: "fs", State: proxy.StateConnected, Version: "1.0.0"},
			{Name: "git", State: proxy.StateFailed, Err: errors.New("exec: not found")},
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"servers":[
		{"name":"fs","state":"connected","version":"1.0.0"},
		{"name":"git","state":"failed","error":"exec: not found"}
	]}`, rec.Body.String())
}

func TestHealthzWithoutSource(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpserver.NewRouter(httpserver.Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"servers":[]}`, rec.Body.String())
}

func TestOptionalRoutes(t *testing.T) {
	t.Parallel()

	handler := httpserver.NewRouter(httpserver.Options{})
	for _, path := range []string{"/metrics", httpserver.MCPPath} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	handler = httpserver.NewRouter(httpserver.Options{Metrics: metrics.New()})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamableEndpoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	downstream := map[string]*mcp.Server{
		"fs": testkit.NewServer("fs", "1.0.0", testkit.Tool{Name: "read_file"}),
	}
	m := testkit.Connect(ctx, downstream, "fs")
	defer m.Close()

	gateway := tools.NewServer(catalog.NewAggregator(m), router.New(m))
	srv := httptest.NewServer(httpserver.NewRouter(httpserver.Options{MCPServer: gateway, Statuses: m}))
	defer srv.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "agent", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: srv.URL + httpserver.MCPPath}, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: tools.ServerInformationTool})
	require.NoError(t, err)
	assert.Equal(t,
		"Currently, you can use the following tools of 1 server.\nServer name: fs (v1.0.0) Total tools: 1",
		envelope.TextOf(res))
}

func preflight(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, httpserver.MCPPath, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	gateway := tools.NewServer(catalog.NewAggregator(proxy.NewManager()), router.New(proxy.NewManager()))

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "same origin only by default", origin: "https://evil.example"},
		{name: "listed origin", allowed: []string{"https://agent.example"}, origin: "https://agent.example", want: "https://agent.example"},
		{name: "unlisted origin", allowed: []string{"https://agent.example"}, origin: "https://evil.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := httpserver.NewRouter(httpserver.Options{
				MCPServer:      gateway,
				AllowedOrigins: tt.allowed,
			})
			rec := preflight(handler, tt.origin)

			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.want == "" {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpserver.ServeListener(ctx, listener, httpserver.NewRouter(httpserver.Options{}), zaptest.NewLogger(t).Sugar())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body map[string]any
		return json.NewDecoder(resp.Body).Decode(&body) == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
