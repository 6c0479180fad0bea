package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	// ServersKey is the top-level key that maps server names to descriptors
	ServersKey = "mcpServers"

	// EnvServerList names the environment variable holding the server list location
	EnvServerList = "MCP_SERVER_LIST"
)

// ServerDescriptor represents a single downstream MCP server configuration.
// Name comes from the key in the server map; descriptors are not modified
// after Load returns them.
type ServerDescriptor struct {
	Name    string            `json:"-" yaml:"-"`
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Names returns the server names of descriptors in order
func Names(descriptors []ServerDescriptor) []string {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	return names
}

// expandEnvVars performs ${VAR} expansion on all string values of the descriptors
func expandEnvVars(descriptors []ServerDescriptor) {
	for i := range descriptors {
		d := &descriptors[i]

		d.Command = expandString(d.Command)

		for j, arg := range d.Args {
			d.Args[j] = expandString(arg)
		}

		for key, value := range d.Env {
			d.Env[key] = expandString(value)
		}
	}
}

// envVarPattern matches ${VAR_NAME} patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandString expands ${VAR} environment variable references in a string.
// Unset variables expand to the empty string.
func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// Validate checks the descriptors for basic validity
func Validate(descriptors []ServerDescriptor) error {
	for _, d := range descriptors {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: server with empty name", ErrInvalidServer)
		}
		if strings.TrimSpace(d.Command) == "" {
			return fmt.Errorf("%w: server %s has empty command", ErrInvalidServer, d.Name)
		}
	}
	return nil
}
