// Package discovery walks repository roots and produces the candidate file
// list the scanner extracts from.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/extract"
)

// skipDirs lists directory names never worth walking.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
	".next":        true,
	".turbo":       true,
	"coverage":     true,
}

// Options controls a walk.
type Options struct {
	UseGitignore  bool
	IgnoreGlobs   []string
	FocusGlobs    []string
	ExcludeGlobs  []string
	MaxDepth      int // 0 = unlimited
	IncludeHidden bool
}

// DiscoveredFile is one file selected for extraction.
type DiscoveredFile struct {
	AbsPath string
	RelPath string // forward-slash, root-relative
}

// ValidateGlobs rejects focus/exclude sets that overlap: a pattern focused
// and excluded at once is a configuration error surfaced before any work.
func ValidateGlobs(opts Options) error {
	for _, f := range opts.FocusGlobs {
		if !doublestar.ValidatePattern(f) {
			return fmt.Errorf("invalid focus glob %q", f)
		}
		for _, e := range opts.ExcludeGlobs {
			if f == e {
				return fmt.Errorf("focus and exclude globs overlap: %q", f)
			}
			if ok, _ := doublestar.Match(e, f); ok {
				return fmt.Errorf("focus glob %q is excluded by %q", f, e)
			}
		}
	}
	for _, e := range opts.ExcludeGlobs {
		if !doublestar.ValidatePattern(e) {
			return fmt.Errorf("invalid exclude glob %q", e)
		}
	}
	for _, g := range opts.IgnoreGlobs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid ignore glob %q", g)
		}
	}
	return nil
}

// Walk discovers all analyzable source files under root, honoring
// .gitignore (when enabled), ignore/focus/exclude globs, max depth, and
// hidden-file visibility.
func Walk(root string, opts Options) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var gitIgnore *ignore.GitIgnore
	if opts.UseGitignore {
		gitignorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
			}
		}
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			config.Verbosef("skipping %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && strings.Count(rel, "/")+1 >= opts.MaxDepth {
				return fs.SkipDir
			}
			if gitIgnore != nil && gitIgnore.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if extract.LanguageForPath(rel) == "" {
			return nil
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(rel) {
			return nil
		}
		for _, g := range opts.IgnoreGlobs {
			if ok, _ := doublestar.Match(g, rel); ok {
				return nil
			}
		}
		for _, g := range opts.ExcludeGlobs {
			if ok, _ := doublestar.Match(g, rel); ok {
				return nil
			}
		}
		if len(opts.FocusGlobs) > 0 {
			matched := false
			for _, g := range opts.FocusGlobs {
				if ok, _ := doublestar.Match(g, rel); ok {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		files = append(files, DiscoveredFile{AbsPath: p, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return files, nil
}
