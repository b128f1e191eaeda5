package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Discover when no candidate file exists.
var ErrNotFound = errors.New("config not found")

// Source tells where a discovered config file came from.
type Source string

const (
	SourceEnv    Source = "env"    // AUTOANI_CONFIG
	SourceCwd    Source = "cwd"    // ./config.toml
	SourceUser   Source = "user"   // $XDG_CONFIG_HOME/autoani
	SourceSystem Source = "system" // /etc/autoani
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autoani", "config.toml")
}

// Discover finds the config file. Search order:
//  1. AUTOANI_CONFIG environment variable
//  2. ./config.toml
//  3. $XDG_CONFIG_HOME/autoani/config.toml
//  4. /etc/autoani/config.toml
func Discover() (string, Source, error) {
	if envPath := os.Getenv("AUTOANI_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", "", fmt.Errorf("AUTOANI_CONFIG=%s: %w", envPath, err)
		}
		return envPath, SourceEnv, nil
	}

	candidates := []struct {
		path   string
		source Source
	}{
		{"./config.toml", SourceCwd},
		{DefaultPath(), SourceUser},
		{"/etc/autoani/config.toml", SourceSystem},
	}
	var checked []string
	for _, c := range candidates {
		if _, err := os.Stat(c.path); err == nil {
			return c.path, c.source, nil
		}
		checked = append(checked, c.path)
	}
	return "", "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(checked, ", "))
}

// resolvePaths anchors the relative state paths of c (database, intervals
// file) at dir, the directory of the config file, so the daemon finds the
// same state whatever its working directory.
func (c *Config) resolvePaths(dir string) {
	c.Database.Path = anchor(dir, c.Database.Path)
	c.Scheduler.IntervalsFile = anchor(dir, c.Scheduler.IntervalsFile)
}

func anchor(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
