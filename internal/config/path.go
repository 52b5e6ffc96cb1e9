// Package config loads and validates homestats configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// xdgDir returns $envVar when set, otherwise ~/fallback, joined with the app name.
func xdgDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(ExpandPath("~"), fallback, appName)
}

// DefaultDataDir is where the snapshot history lives.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// DefaultStateDir is where the dashboard log file lives.
func DefaultStateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// DefaultConfigDir is searched for config.yaml.
func DefaultConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}
