package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".loctree")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `version = 1

[commands]
custom_macros = ["specta::specta"]
invalid_command_names = ["playwright"]

[scan]
ignore_globs = ["fixtures/**"]
python_roots = ["backend/src"]
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("config not found")
	}
	if len(cfg.Commands.CustomMacros) != 1 || cfg.Commands.CustomMacros[0] != "specta::specta" {
		t.Errorf("custom macros = %+v", cfg.Commands.CustomMacros)
	}
	if len(cfg.Scan.PythonRoots) != 1 || cfg.Scan.PythonRoots[0] != "backend/src" {
		t.Errorf("python roots = %+v", cfg.Scan.PythonRoots)
	}
}

func TestLoadProjectConfigAbsent(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir(), "")
	if err != nil || cfg != nil {
		t.Errorf("absent config: cfg=%v err=%v, want nil/nil", cfg, err)
	}
}

func TestValidateRejectsBadVersion(t *testing.T) {
	cfg := &ProjectConfig{Version: 9}
	if err := cfg.Validate(); err == nil {
		t.Error("version 9 accepted")
	}
}

func TestVerboseEnvVar(t *testing.T) {
	t.Setenv("LOCTREE_VERBOSE", "1")
	InitVerbose(false)
	if !VerboseEnabled() {
		t.Error("LOCTREE_VERBOSE did not enable verbose logging")
	}
	t.Setenv("LOCTREE_VERBOSE", "")
	InitVerbose(false)
	if VerboseEnabled() {
		t.Error("verbose stuck on")
	}
}
