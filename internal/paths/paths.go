package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the current user's home directory
func HomeDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return homeDir, nil
}

// Resolve turns a configured file location into an absolute path.
// Environment references ($VAR or ${VAR}) are expanded and a leading "~" is
// replaced with the user's home directory.
func Resolve(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty location")
	}

	location = os.ExpandEnv(location)

	if location == "~" || strings.HasPrefix(location, "~/") {
		homeDir, err := HomeDir()
		if err != nil {
			return "", err
		}
		location = filepath.Join(homeDir, strings.TrimPrefix(location, "~"))
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	return abs, nil
}
