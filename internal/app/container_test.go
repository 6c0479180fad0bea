package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dslh/mcp-nexus/internal/app"
	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/envelope"
	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/testkit"
	"github.com/dslh/mcp-nexus/internal/tools"
)

func writeServerList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestContainerConnect(t *testing.T) {
	t.Parallel()

	path := writeServerList(t, `{
		// downstream servers
		"mcpServers": {
			"fs": {"command": "fs-server"},
			"broken": {"command": "broken-server"},
		},
	}`)

	downstream := map[string]*mcp.Server{
		"fs": testkit.NewServer("fs", "1.0.0", testkit.Tool{Name: "read_file"}),
	}
	settings := config.Settings{ServerList: path, CatalogConcurrency: 2}

	c, err := app.New(settings, zap.NewNop().Sugar(), proxy.WithDialer(testkit.Dialer(downstream)))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	c.Connect(ctx)

	assert.Equal(t, []string{"fs"}, c.Manager().Names())
	assert.Len(t, c.Manager().Statuses(), 2)
	assert.Equal(t, settings, c.Settings())
	assert.NotNil(t, c.Metrics())
	assert.NotNil(t, c.Aggregator())
	assert.NotNil(t, c.Router())

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = c.Server().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	cs, err := mcp.NewClient(&mcp.Implementation{Name: "agent", Version: "0.0.1"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: tools.ServerInformationTool})
	require.NoError(t, err)
	assert.Equal(t,
		"Currently, you can use the following tools of 1 server.\nServer name: fs (v1.0.0) Total tools: 1",
		envelope.TextOf(res))
}

func TestContainerConnectWithoutServerList(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	c, err := app.New(config.Settings{}, zap.New(core).Sugar())
	require.NoError(t, err)
	defer c.Close()

	c.Connect(context.Background())

	assert.True(t, c.Manager().Initialized())
	assert.Zero(t, c.Manager().Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to load server list, continuing without downstream servers").Len())
	assert.Equal(t, "Currently, you can use the following tools of 0 server.",
		envelope.TextOf(c.Aggregator().Info(context.Background())))
}
