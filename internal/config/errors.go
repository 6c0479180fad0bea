package config

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationUnset is returned when no server list location was provided
	ErrLocationUnset = errors.New("server list location is unset; set " + EnvServerList + " to the path of the MCP server list file")

	// ErrNotFound is returned when the server list file does not exist
	ErrNotFound = errors.New("server list file not found")

	// ErrInvalidDocument is returned when the file is not valid structured data
	ErrInvalidDocument = errors.New("invalid server list document")

	// ErrMissingServersKey is returned when the document has no top-level server map
	ErrMissingServersKey = errors.New("invalid server list (missing " + ServersKey + " key)")

	// ErrInvalidServer is returned when a single server entry is malformed
	ErrInvalidServer = errors.New("invalid server entry")
)

// ConfigError reports a failure to load the server list. Load never returns
// a partial result alongside a ConfigError.
type ConfigError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ConfigError) Unwrap() error {
	return e.Err
}
