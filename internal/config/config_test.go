package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	configContent := `{
  "mcpServers": {
    "github": {
      "command": "mcp-server-github",
      "args": ["--token", "${GITHUB_TOKEN}"],
      "env": {
        "DEBUG": "true"
      }
    },
    "slack": {
      "command": "mcp-server-slack",
      "args": [],
      "env": {
        "SLACK_TOKEN": "${SLACK_TOKEN}"
      }
    },
    "fs": {
      "command": "fs-server"
    }
  }
}`

	t.Setenv("GITHUB_TOKEN", "test-github-token")
	t.Setenv("SLACK_TOKEN", "test-slack-token")

	descriptors, err := Load(writeFile(t, "servers.json", configContent))
	require.NoError(t, err)

	// Document order is preserved
	assert.Equal(t, []string{"github", "slack", "fs"}, Names(descriptors))

	github := descriptors[0]
	assert.Equal(t, "mcp-server-github", github.Command)
	assert.Equal(t, []string{"--token", "test-github-token"}, github.Args)
	assert.Equal(t, map[string]string{"DEBUG": "true"}, github.Env)

	slack := descriptors[1]
	assert.Equal(t, "test-slack-token", slack.Env["SLACK_TOKEN"])

	fs := descriptors[2]
	assert.Equal(t, "fs-server", fs.Command)
	assert.Empty(t, fs.Args)
	assert.Empty(t, fs.Env)
}

func TestLoadPreservesOrderForManyServers(t *testing.T) {
	configContent := `{"mcpServers":{
		"zeta":{"command":"z"},
		"alpha":{"command":"a"},
		"mid":{"command":"m"},
		"beta":{"command":"b"}
	}}`

	descriptors, err := Load(writeFile(t, "servers.json", configContent))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid", "beta"}, Names(descriptors))
}

func TestLoadJSONWithComments(t *testing.T) {
	configContent := `{
  // downstream servers
  "mcpServers": {
    "fs": {
      "command": "fs-server", /* launched over stdio */
      "args": ["--root", "/tmp",],
    },
  },
}`

	descriptors, err := Load(writeFile(t, "servers.jsonc", configContent))
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "fs", descriptors[0].Name)
	assert.Equal(t, []string{"--root", "/tmp"}, descriptors[0].Args)
}

func TestLoadYAML(t *testing.T) {
	configContent := `
mcpServers:
  search:
    command: search-server
    args: ["--port", "0"]
  fs:
    command: fs-server
    env:
      ROOT: ${NEXUS_TEST_ROOT}
`
	t.Setenv("NEXUS_TEST_ROOT", "/srv")

	descriptors, err := Load(writeFile(t, "servers.yaml", configContent))
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "fs"}, Names(descriptors))
	assert.Equal(t, []string{"--port", "0"}, descriptors[0].Args)
	assert.Equal(t, "/srv", descriptors[1].Env["ROOT"])
}

func TestLoadDuplicateNameKeepsFirstPosition(t *testing.T) {
	configContent := `{"mcpServers":{
		"a":{"command":"first"},
		"b":{"command":"other"},
		"a":{"command":"second"}
	}}`

	descriptors, err := Load(writeFile(t, "servers.json", configContent))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Names(descriptors))
	assert.Equal(t, "second", descriptors[0].Command)
}

func TestLoadEmptyServerMap(t *testing.T) {
	descriptors, err := Load(writeFile(t, "servers.json", `{"mcpServers":{}}`))
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		location func(t *testing.T) string
		wantErr  error
	}{
		{
			name:     "unset location",
			location: func(t *testing.T) string { return "" },
			wantErr:  ErrLocationUnset,
		},
		{
			name: "missing file",
			location: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.json")
			},
			wantErr: ErrNotFound,
		},
		{
			name: "invalid JSON",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", "{not valid json")
			},
			wantErr: ErrInvalidDocument,
		},
		{
			name: "invalid YAML",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.yaml", "mcpServers: [unclosed")
			},
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing servers key",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", `{"servers":{"fs":{"command":"x"}}}`)
			},
			wantErr: ErrMissingServersKey,
		},
		{
			name: "null servers key",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", `{"mcpServers":null}`)
			},
			wantErr: ErrMissingServersKey,
		},
		{
			name: "missing servers key in YAML",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.yml", "other: true\n")
			},
			wantErr: ErrMissingServersKey,
		},
		{
			name: "servers is not an object",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", `{"mcpServers":["fs"]}`)
			},
			wantErr: ErrInvalidDocument,
		},
		{
			name: "server entry has wrong shape",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", `{"mcpServers":{"fs":{"command":42}}}`)
			},
			wantErr: ErrInvalidServer,
		},
		{
			name: "server without command",
			location: func(t *testing.T) string {
				return writeFile(t, "servers.json", `{"mcpServers":{"fs":{"args":["x"]}}}`)
			},
			wantErr: ErrInvalidServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptors, err := Load(tt.location(t))
			require.Error(t, err)
			assert.Nil(t, descriptors, "load must not return a partial result")

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandString(t *testing.T) {
	t.Setenv("NEXUS_EXPAND_SET", "value")

	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"${NEXUS_EXPAND_SET}", "value"},
		{"pre-${NEXUS_EXPAND_SET}-post", "pre-value-post"},
		{"${NEXUS_EXPAND_UNSET_VAR}", ""},
		{"$NEXUS_EXPAND_SET", "$NEXUS_EXPAND_SET"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, expandString(tt.input))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]ServerDescriptor{{Name: "fs", Command: "fs-server"}}))

	err := Validate([]ServerDescriptor{{Name: "fs", Command: "   "}})
	assert.ErrorIs(t, err, ErrInvalidServer)
	assert.Contains(t, err.Error(), "fs")

	err = Validate([]ServerDescriptor{{Name: "", Command: "x"}})
	assert.ErrorIs(t, err, ErrInvalidServer)
}

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvServerList, "")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(flags)

		v, err := NewViper(flags)
		require.NoError(t, err)

		s := SettingsFrom(v)
		assert.Equal(t, "", s.ServerList)
		assert.Equal(t, "info", s.LogLevel)
		assert.Equal(t, "console", s.LogFormat)
		assert.Equal(t, DefaultCatalogConcurrency, s.CatalogConcurrency)
		assert.False(t, s.ValidateArgs)
		assert.Empty(t, s.AllowedOrigins)
	})

	t.Run("allowed origins", func(t *testing.T) {
		t.Setenv("NEXUS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(flags)

		v, err := NewViper(flags)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, SettingsFrom(v).AllowedOrigins)

		require.NoError(t, flags.Parse([]string{"--allowed-origins", "https://c.example"}))
		assert.Equal(t, []string{"https://c.example"}, SettingsFrom(v).AllowedOrigins)
	})

	t.Run("server list from environment", func(t *testing.T) {
		t.Setenv(EnvServerList, "/etc/servers.json")
		t.Setenv("NEXUS_LOG_LEVEL", "debug")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(flags)

		v, err := NewViper(flags)
		require.NoError(t, err)

		s := SettingsFrom(v)
		assert.Equal(t, "/etc/servers.json", s.ServerList)
		assert.Equal(t, "debug", s.LogLevel)
	})

	t.Run("flags win over environment", func(t *testing.T) {
		t.Setenv(EnvServerList, "/etc/servers.json")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		RegisterFlags(flags)
		require.NoError(t, flags.Parse([]string{
			"--config", "/tmp/other.json",
			"--validate-args",
			"--catalog-concurrency", "0",
		}))

		v, err := NewViper(flags)
		require.NoError(t, err)

		s := SettingsFrom(v)
		assert.Equal(t, "/tmp/other.json", s.ServerList)
		assert.True(t, s.ValidateArgs)
		assert.Equal(t, DefaultCatalogConcurrency, s.CatalogConcurrency)
	})
}
