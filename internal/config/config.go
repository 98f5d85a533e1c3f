// Package config handles .loctree/config.toml project-level configuration
// and the process-wide verbose sink.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfig represents the .loctree/config.toml configuration file.
type ProjectConfig struct {
	Version  int             `toml:"version"`
	Commands commandSection  `toml:"commands"`
	Scan     scanSection     `toml:"scan"`
}

// commandSection tunes Tauri command detection.
type commandSection struct {
	// CustomMacros lists attribute macros that mark a Rust fn as a command
	// handler in addition to tauri::command (e.g. "specta::specta").
	CustomMacros []string `toml:"custom_macros"`
	// DOMExclusions extends the built-in DOM method exclusion set.
	DOMExclusions []string `toml:"dom_exclusions"`
	// NonInvokeExclusions extends the built-in invoke-look-alike set.
	NonInvokeExclusions []string `toml:"non_invoke_exclusions"`
	// InvalidCommandNames extends the built-in invalid command name set.
	InvalidCommandNames []string `toml:"invalid_command_names"`
}

// scanSection tunes file discovery.
type scanSection struct {
	IgnoreGlobs   []string `toml:"ignore_globs"`
	MaxDepth      int      `toml:"max_depth"`
	IncludeHidden bool     `toml:"include_hidden"`
	// PythonRoots adds user-specified module roots to the resolver.
	PythonRoots []string `toml:"python_roots"`
}

// LoadProjectConfig loads configuration from .loctree/config.toml under dir.
// If explicitPath is provided (from --config), that file is loaded instead.
// Returns nil (no error) when no config file exists.
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	configPath := explicitPath
	if configPath == "" {
		configPath = filepath.Join(dir, ".loctree", "config.toml")
		if _, err := os.Stat(configPath); err != nil {
			return nil, nil
		}
	}

	cfg := &ProjectConfig{}
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are valid.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("scan.max_depth must be >= 0, got %d", c.Scan.MaxDepth)
	}
	return nil
}
