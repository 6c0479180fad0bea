package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dslh/mcp-nexus/internal/config"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "nexus-mcp 0.0.1 (client nexus-mcp-client 0.0.1)\n", out.String())
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"serve", "list", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{config.KeyServerList, config.KeyLogLevel, config.KeyHTTPAddr, config.KeyValidateArgs} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestSetupReadsFlagsAndEnvironment(t *testing.T) {
	t.Setenv(config.EnvServerList, "/etc/nexus/servers.json")
	t.Setenv("NEXUS_CATALOG_CONCURRENCY", "8")

	root := NewRootCmd()
	list, _, err := root.Find([]string{"list"})
	require.NoError(t, err)
	require.NoError(t, list.ParseFlags([]string{"--log-level", "debug", "--validate-args"}))

	settings, logger, err := setup(list)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, "/etc/nexus/servers.json", settings.ServerList)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, 8, settings.CatalogConcurrency)
	assert.True(t, settings.ValidateArgs)
}

func TestSetupRejectsBadLogLevel(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"list", "--log-level", "loud"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
