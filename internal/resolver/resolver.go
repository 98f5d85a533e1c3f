package resolver

import (
	"path"
	"sort"
	"strings"

	"github.com/loctree/loctree/pkg/types"
)

// tsCandidateExts is the fixed probe order for TS-family relative
// resolution. Each is tried as a direct suffix, then as /index.<ext>.
var tsCandidateExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".svelte", ".vue"}

// Result is the outcome of resolving one specifier. Path is set only for
// local resolutions.
type Result struct {
	Path       string
	Resolution types.Resolution
}

// Resolver answers specifier-to-path queries against a fixed set of known
// repo files. It never touches the filesystem after construction, so a
// resolver rebuilt from a snapshot behaves identically.
type Resolver struct {
	fileSet map[string]bool
	aliases []tsAlias
	baseURL string
	tsPaths map[string][]string
	pyRoots []string
}

// New builds a Resolver for a repository root, reading tsconfig.json and
// pyproject.toml when present. files are repo-relative forward-slash paths.
func New(root string, files []string, userPyRoots []string) *Resolver {
	baseURL, tsPaths := loadTSConfig(root)
	return build(files, types.ResolverConfig{
		TSBaseURL:   baseURL,
		TSPaths:     tsPaths,
		PythonRoots: discoverPythonRoots(root, userPyRoots),
	})
}

// FromConfig rebuilds a Resolver from a snapshot's cached resolver config,
// without filesystem access.
func FromConfig(cfg types.ResolverConfig, files []string) *Resolver {
	return build(files, cfg)
}

func build(files []string, cfg types.ResolverConfig) *Resolver {
	r := &Resolver{
		fileSet: make(map[string]bool, len(files)),
		aliases: compileTSAliases(cfg.TSPaths),
		baseURL: cfg.TSBaseURL,
		tsPaths: cfg.TSPaths,
		pyRoots: cfg.PythonRoots,
	}
	for _, f := range files {
		r.fileSet[strings.ReplaceAll(f, "\\", "/")] = true
	}
	return r
}

// Config returns the resolution state for persisting into a snapshot.
func (r *Resolver) Config() types.ResolverConfig {
	roots := make([]string, len(r.pyRoots))
	copy(roots, r.pyRoots)
	sort.Strings(roots)
	return types.ResolverConfig{
		TSBaseURL:   r.baseURL,
		TSPaths:     r.tsPaths,
		PythonRoots: roots,
	}
}

// Knows reports whether a repo-relative path is in the known file set.
func (r *Resolver) Knows(p string) bool {
	return r.fileSet[p]
}

// ResolveTS resolves a TS/JS specifier from the importing file. Relative
// specifiers probe candidate extensions; bare specifiers go through the
// tsconfig paths aliases, then baseUrl, then the Node builtin set.
func (r *Resolver) ResolveTS(spec, importer string) Result {
	if spec == "" {
		return Result{Resolution: types.ResolutionUnknown}
	}

	// Absolute URLs and protocol schemes are never repo files.
	if strings.Contains(spec, "://") || strings.HasPrefix(spec, "//") ||
		strings.HasPrefix(spec, "data:") || strings.HasPrefix(spec, "blob:") {
		return Result{Resolution: types.ResolutionUnknown}
	}

	if strings.HasPrefix(spec, "node:") {
		return Result{Resolution: types.ResolutionStdlib}
	}

	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base := path.Join(path.Dir(importer), spec)
		if p, ok := r.probeTS(base); ok {
			return Result{Path: p, Resolution: types.ResolutionLocal}
		}
		return Result{Resolution: types.ResolutionUnknown}
	}

	// tsconfig paths aliases, longest prefix first.
	for _, a := range r.aliases {
		for _, target := range a.expand(spec) {
			candidate := path.Clean(path.Join(r.baseURL, target))
			if p, ok := r.probeTS(candidate); ok {
				return Result{Path: p, Resolution: types.ResolutionLocal}
			}
		}
	}

	// baseUrl lets bare specifiers resolve from the configured base.
	if r.baseURL != "" {
		if p, ok := r.probeTS(path.Clean(path.Join(r.baseURL, spec))); ok {
			return Result{Path: p, Resolution: types.ResolutionLocal}
		}
	}

	head := spec
	if idx := strings.Index(head, "/"); idx >= 0 {
		head = head[:idx]
	}
	if jsBuiltins[head] {
		return Result{Resolution: types.ResolutionStdlib}
	}

	return Result{Resolution: types.ResolutionUnknown}
}

// probeTS tries a base path as-is, with each candidate extension, then as a
// directory index.
func (r *Resolver) probeTS(base string) (string, bool) {
	if r.fileSet[base] {
		return base, true
	}
	for _, ext := range tsCandidateExts {
		if r.fileSet[base+ext] {
			return base + ext, true
		}
	}
	for _, ext := range tsCandidateExts {
		candidate := base + "/index" + ext
		if r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// ResolvePython resolves a dotted Python specifier. Leading dots walk up
// from the importing package; absolute specifiers probe every Python root.
// A local file wins over a same-named stdlib module.
func (r *Resolver) ResolvePython(spec, importer string) Result {
	if spec == "" {
		return Result{Resolution: types.ResolutionUnknown}
	}

	if strings.HasPrefix(spec, ".") {
		dots := 0
		for dots < len(spec) && spec[dots] == '.' {
			dots++
		}
		baseDir := path.Dir(importer)
		for i := 1; i < dots; i++ {
			baseDir = path.Dir(baseDir)
		}
		rest := spec[dots:]
		if rest == "" {
			if p, ok := r.probePy(path.Join(baseDir, "__init__")); ok {
				return Result{Path: p, Resolution: types.ResolutionLocal}
			}
			return Result{Resolution: types.ResolutionUnknown}
		}
		base := path.Join(baseDir, strings.ReplaceAll(rest, ".", "/"))
		if p, ok := r.probePy(base); ok {
			return Result{Path: p, Resolution: types.ResolutionLocal}
		}
		return Result{Resolution: types.ResolutionUnknown}
	}

	rel := strings.ReplaceAll(spec, ".", "/")
	for _, root := range r.pyRoots {
		base := rel
		if root != "" {
			base = root + "/" + rel
		}
		if p, ok := r.probePy(base); ok {
			return Result{Path: p, Resolution: types.ResolutionLocal}
		}
	}

	head := spec
	if idx := strings.Index(head, "."); idx >= 0 {
		head = head[:idx]
	}
	if pyStdlib[head] {
		return Result{Resolution: types.ResolutionStdlib}
	}

	return Result{Resolution: types.ResolutionUnknown}
}

func (r *Resolver) probePy(base string) (string, bool) {
	if r.fileSet[base+".py"] {
		return base + ".py", true
	}
	if r.fileSet[base+"/__init__.py"] {
		return base + "/__init__.py", true
	}
	if r.fileSet[base+".pyi"] {
		return base + ".pyi", true
	}
	return "", false
}

// ResolveRelative resolves a plain relative specifier with an explicit
// candidate extension list. CSS imports use this; they have no alias
// system.
func (r *Resolver) ResolveRelative(spec, importer string, exts []string) Result {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return Result{Resolution: types.ResolutionUnknown}
	}
	base := path.Join(path.Dir(importer), spec)
	if r.fileSet[base] {
		return Result{Path: base, Resolution: types.ResolutionLocal}
	}
	for _, ext := range exts {
		if r.fileSet[base+ext] {
			return Result{Path: base + ext, Resolution: types.ResolutionLocal}
		}
	}
	return Result{Resolution: types.ResolutionUnknown}
}
