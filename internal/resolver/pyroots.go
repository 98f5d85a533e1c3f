package resolver

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// pyprojectConfig is the subset of pyproject.toml that declares where Python
// packages live.
type pyprojectConfig struct {
	Tool struct {
		Poetry struct {
			Packages []struct {
				Include string `toml:"include"`
				From    string `toml:"from"`
			} `toml:"packages"`
		} `toml:"poetry"`
		Setuptools struct {
			Packages struct {
				Find struct {
					Where []string `toml:"where"`
				} `toml:"find"`
			} `toml:"packages"`
		} `toml:"setuptools"`
	} `toml:"tool"`
}

// discoverPythonRoots builds the union of Python module roots for a repo:
// the root itself, src/ when present, poetry packages[].from, setuptools
// packages.find.where, and user overrides. Paths are repo-relative; "" is
// the repo root.
func discoverPythonRoots(root string, userRoots []string) []string {
	roots := []string{""}

	if info, err := os.Stat(filepath.Join(root, "src")); err == nil && info.IsDir() {
		roots = append(roots, "src")
	}

	var cfg pyprojectConfig
	if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &cfg); err == nil {
		for _, pkg := range cfg.Tool.Poetry.Packages {
			if pkg.From != "" {
				roots = append(roots, filepath.ToSlash(pkg.From))
			}
		}
		for _, where := range cfg.Tool.Setuptools.Packages.Find.Where {
			if where != "" && where != "." {
				roots = append(roots, filepath.ToSlash(where))
			}
		}
	}

	roots = append(roots, userRoots...)

	seen := make(map[string]bool, len(roots))
	out := roots[:0]
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
