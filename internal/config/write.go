package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed default_config.toml
var defaultConfig string

// StatePaths are the files a freshly written config points the daemon at.
type StatePaths struct {
	Database  string
	Intervals string
}

// WriteDefault writes the annotated example config to path, creating parent
// directories. It returns the state paths that config resolves to so the
// caller can seed them.
func WriteDefault(path string) (StatePaths, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return StatePaths{}, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return StatePaths{}, fmt.Errorf("write config: %w", err)
	}

	var c Config
	c.applyDefaults()
	c.resolvePaths(filepath.Dir(path))
	return StatePaths{Database: c.Database.Path, Intervals: c.Scheduler.IntervalsFile}, nil
}
