package proxy

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dslh/mcp-nexus/internal/config"
)

// Dialer builds the transport for one downstream server
type Dialer func(ctx context.Context, d config.ServerDescriptor) (mcp.Transport, error)

// CommandDialer launches the server as a subprocess speaking MCP over stdio.
// The child inherits the gateway's environment with the descriptor's
// overrides applied on top, and writes its stderr to ours.
func CommandDialer(_ context.Context, d config.ServerDescriptor) (mcp.Transport, error) {
	if strings.TrimSpace(d.Command) == "" {
		return nil, fmt.Errorf("command missing for %s", d.Name)
	}

	env, err := MergeEnv(os.Environ(), d.Env)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(d.Command, d.Args...)
	cmd.Env = env
	cmd.Stderr = os.Stderr

	return &mcp.CommandTransport{Command: cmd}, nil
}

// MergeEnv applies overrides to a KEY=VALUE environment list. The result is
// sorted by key.
func MergeEnv(base []string, overrides map[string]string) ([]string, error) {
	env := make(map[string]string, len(base)+len(overrides))
	for _, kv := range base {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}

	if len(overrides) > 0 {
		if err := mergo.Merge(&env, overrides, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
			return nil, fmt.Errorf("failed to merge environment: %w", err)
		}
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make([]string, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, key+"="+env[key])
	}
	return merged, nil
}
