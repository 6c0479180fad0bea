package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dslh/mcp-nexus/internal/paths"
)

// Load reads the server list at location and returns its descriptors in
// document order. JSON (comments and trailing commas allowed) and YAML
// (.yaml / .yml) documents are supported.
//
// Any failure is reported as a *ConfigError and no descriptors are returned.
func Load(location string) ([]ServerDescriptor, error) {
	if strings.TrimSpace(location) == "" {
		return nil, &ConfigError{Err: ErrLocationUnset}
	}

	path, err := paths.Resolve(location)
	if err != nil {
		return nil, &ConfigError{Path: location, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
		}
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	var descriptors []ServerDescriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		descriptors, err = decodeYAML(data)
	default:
		descriptors, err = decodeJSON(data)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	expandEnvVars(descriptors)

	if err := Validate(descriptors); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return descriptors, nil
}

// decodeJSON walks the server map in document order. A repeated server name
// keeps its first position and takes the last value.
func decodeJSON(data []byte) ([]ServerDescriptor, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	servers := gjson.GetBytes(std, ServersKey)
	if !servers.Exists() || servers.Type == gjson.Null {
		return nil, ErrMissingServersKey
	}
	if !servers.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidDocument, ServersKey)
	}

	var (
		c         collector
		decodeErr error
	)
	servers.ForEach(func(key, value gjson.Result) bool {
		var d ServerDescriptor
		if err := json.Unmarshal([]byte(value.Raw), &d); err != nil {
			decodeErr = fmt.Errorf("%w: server %s: %v", ErrInvalidServer, key.String(), err)
			return false
		}
		d.Name = key.String()
		c.add(d)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return c.descriptors, nil
}

func decodeYAML(data []byte) ([]ServerDescriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrMissingServersKey
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidDocument)
	}

	var servers *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == ServersKey {
			servers = root.Content[i+1]
		}
	}
	if servers == nil || servers.Tag == "!!null" {
		return nil, ErrMissingServersKey
	}
	if servers.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping", ErrInvalidDocument, ServersKey)
	}

	var c collector
	for i := 0; i+1 < len(servers.Content); i += 2 {
		name := servers.Content[i].Value

		var d ServerDescriptor
		if err := servers.Content[i+1].Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: server %s: %v", ErrInvalidServer, name, err)
		}
		d.Name = name
		c.add(d)
	}

	return c.descriptors, nil
}

type collector struct {
	descriptors []ServerDescriptor
	index       map[string]int
}

func (c *collector) add(d ServerDescriptor) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[d.Name]; ok {
		c.descriptors[i] = d
		return
	}
	c.index[d.Name] = len(c.descriptors)
	c.descriptors = append(c.descriptors, d)
}
