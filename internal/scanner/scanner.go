// Package scanner drives discovery, resolution, and extraction over one or
// more roots, producing the snapshot all finding engines consume.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/discovery"
	"github.com/loctree/loctree/internal/extract"
	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

// maxConcurrentRoots bounds simultaneous root scans.
const maxConcurrentRoots = 4

// SchemaVersion is the snapshot schema this build reads and writes.
const SchemaVersion = "3"

// Options configures a scan.
type Options struct {
	Root       string // primary root
	ExtraRoots []string
	Discovery discovery.Options
	// Prior enables incremental reuse of unchanged files.
	Prior *types.Snapshot
	// Detection tunes command detection; nil means defaults.
	Detection *extract.CommandDetectionConfig
	// PythonRoots adds user module roots to the resolver.
	PythonRoots []string
	// CollectEdges emits the dependency edge list. Finding engines need
	// it; a bare file inventory does not.
	CollectEdges bool
	// IgnoreSymbolSubstrings and IgnoreSymbolPrefixes filter the export
	// index.
	IgnoreSymbolSubstrings []string
	IgnoreSymbolPrefixes   []string
}

// rootResult is one root's scan output, merged by the owning goroutine.
type rootResult struct {
	root  string
	files []*types.FileAnalysis
	cfg   types.ResolverConfig
}

// Scan walks every root, extracts each file, and aggregates the snapshot.
// Multiple roots scan concurrently, at most four at a time; a single
// root is scanned sequentially to avoid overhead.
func Scan(opts Options) (*types.Snapshot, error) {
	if err := discovery.ValidateGlobs(opts.Discovery); err != nil {
		return nil, err
	}

	start := time.Now()

	parsers, err := parser.NewTreeSitterParser()
	if err != nil {
		// Tree-sitter unavailable: extraction degrades to file metadata.
		config.Verbosef("tree-sitter unavailable: %v", err)
		parsers = nil
	} else {
		defer parsers.Close()
	}

	roots := append([]string{opts.Root}, opts.ExtraRoots...)
	results := make([]*rootResult, len(roots))

	if len(roots) == 1 {
		res, err := scanRoot(roots[0], parsers, opts, len(roots) > 1)
		if err != nil {
			return nil, err
		}
		results[0] = res
	} else {
		g := new(errgroup.Group)
		g.SetLimit(maxConcurrentRoots)
		var mu sync.Mutex
		for i, root := range roots {
			i, root := i, root
			g.Go(func() error {
				res, err := scanRoot(root, parsers, opts, true)
				if err != nil {
					return err
				}
				mu.Lock()
				results[i] = res
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	snap := aggregate(results, opts)
	snap.Metadata.ScanDurationMS = time.Since(start).Milliseconds()
	snap.Metadata.Git = readGitInfo(opts.Root)
	Normalize(snap)
	return snap, nil
}

// scanRoot walks one root and extracts its files sequentially. Per-file
// work shares no mutable state, so this loop is safe to parallelize later.
func scanRoot(root string, parsers *parser.TreeSitterParser, opts Options, prefix bool) (*rootResult, error) {
	discovered, err := discovery.Walk(root, opts.Discovery)
	if err != nil {
		return nil, err
	}

	relPaths := make([]string, len(discovered))
	for i, d := range discovered {
		relPaths[i] = d.RelPath
	}
	res := resolver.New(root, relPaths, opts.PythonRoots)

	ex := extract.New(parsers, res, extract.Options{Detection: opts.Detection})

	prior := map[string]*types.FileAnalysis{}
	if opts.Prior != nil {
		for _, f := range opts.Prior.Files {
			prior[f.Path] = f
		}
	}

	rootName := filepath.Base(root)
	cached, fresh := 0, 0
	result := &rootResult{root: root, cfg: res.Config()}

	for _, d := range discovered {
		info, err := os.Stat(d.AbsPath)
		if err != nil {
			config.Verbosef("stat %s: %v", d.RelPath, err)
			continue
		}
		mtime := info.ModTime().UnixNano()
		size := info.Size()

		storedPath := d.RelPath
		if prefix {
			storedPath = rootName + "/" + d.RelPath
		}

		// (mtime, size) identifies the cached version; a mismatch in
		// either invalidates.
		if old, ok := prior[storedPath]; ok && old.Mtime == mtime && old.Size == size {
			result.files = append(result.files, old)
			cached++
			continue
		}

		content, err := os.ReadFile(d.AbsPath)
		if err != nil {
			config.Verbosef("read %s: %v", d.RelPath, err)
			continue
		}

		lang := extract.LanguageForPath(d.RelPath)
		fa := ex.Extract(content, d.RelPath, lang)
		fa.Path = storedPath
		fa.Mtime = mtime
		fa.Size = size
		fa.IsTest = discovery.IsTestPath(d.RelPath)
		if !fa.IsGenerated {
			fa.IsGenerated = discovery.IsGeneratedPath(d.RelPath)
		}
		markPackageTraits(fa, root, d.RelPath)
		result.files = append(result.files, fa)
		fresh++
	}

	config.Verbosef("root %s: %d cached, %d extracted", root, cached, fresh)
	return result, nil
}

// markPackageTraits sets Python packaging flags that need sibling files.
func markPackageTraits(fa *types.FileAnalysis, root, relPath string) {
	if fa.Language != types.LangPython {
		return
	}
	dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(relPath)))
	if _, err := os.Stat(filepath.Join(dir, "py.typed")); err == nil {
		fa.IsTypedPackage = true
	}
	if strings.HasSuffix(relPath, "/__init__.py") || relPath == "__init__.py" {
		return
	}
	if _, err := os.Stat(filepath.Join(dir, "__init__.py")); err != nil {
		fa.IsNamespacePackage = true
	}
}

// aggregate merges per-root results into one snapshot: export index,
// edges, and barrel derivation.
func aggregate(results []*rootResult, opts Options) *types.Snapshot {
	snap := &types.Snapshot{
		Metadata: types.SnapshotMetadata{
			SchemaVersion: SchemaVersion,
		},
		ExportIndex: map[string][]string{},
	}

	langs := map[types.Language]bool{}
	for _, res := range results {
		if res == nil {
			continue
		}
		snap.Metadata.Roots = append(snap.Metadata.Roots, res.root)
		for _, fa := range res.files {
			snap.Files = append(snap.Files, fa)
			snap.Metadata.TotalLOC += fa.LOC
			langs[fa.Language] = true
		}
	}
	snap.Metadata.FileCount = len(snap.Files)
	for l := range langs {
		snap.Metadata.Languages = append(snap.Metadata.Languages, l)
	}
	sort.Slice(snap.Metadata.Languages, func(i, j int) bool {
		return snap.Metadata.Languages[i] < snap.Metadata.Languages[j]
	})
	if len(results) > 0 && results[0] != nil {
		snap.Metadata.ResolverConfig = results[0].cfg
	}

	known := map[string]bool{}
	for _, fa := range snap.Files {
		known[fa.Path] = true
	}

	for _, fa := range snap.Files {
		indexExports(snap, fa, opts)
		if opts.CollectEdges {
			collectEdges(snap, fa, known)
		}
		if barrel := deriveBarrel(fa); barrel != nil {
			snap.Barrels = append(snap.Barrels, *barrel)
		}
	}

	return snap
}

// indexExports adds a file's original definitions to the export index,
// skipping re-export bindings, default exports, and test/dev files.
func indexExports(snap *types.Snapshot, fa *types.FileAnalysis, opts Options) {
	if fa.IsTest {
		return
	}
	for _, e := range fa.Exports {
		if e.Kind == "reexport" || e.ExportType == "default" {
			continue
		}
		if skipIndexedSymbol(e.Name, opts) {
			continue
		}
		snap.ExportIndex[e.Name] = append(snap.ExportIndex[e.Name], fa.Path)
	}
}

func skipIndexedSymbol(name string, opts Options) bool {
	for _, sub := range opts.IgnoreSymbolSubstrings {
		if sub != "" && strings.Contains(name, sub) {
			return true
		}
	}
	for _, prefix := range opts.IgnoreSymbolPrefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// collectEdges emits dependency edges. Static labels require the target to
// exist in the snapshot; dynamic edges may dangle by design.
func collectEdges(snap *types.Snapshot, fa *types.FileAnalysis, known map[string]bool) {
	for _, imp := range fa.Imports {
		label := types.EdgeImport
		switch {
		case imp.Kind == types.ImportDynamic:
			label = types.EdgeDynamicImport
		case imp.Kind == types.ImportType || imp.IsTypeChecking:
			label = types.EdgeTypeImport
		case imp.IsLazy:
			label = types.EdgeLazyImport
		}

		if label == types.EdgeDynamicImport {
			to := imp.ResolvedPath
			if to == "" {
				to = imp.Source
			}
			snap.Edges = append(snap.Edges, types.GraphEdge{From: fa.Path, To: to, Label: label})
			continue
		}

		if imp.ResolvedPath == "" || !known[imp.ResolvedPath] {
			continue
		}
		snap.Edges = append(snap.Edges, types.GraphEdge{From: fa.Path, To: imp.ResolvedPath, Label: label})
	}

	for _, re := range fa.Reexports {
		if re.Resolved == "" || !known[re.Resolved] {
			continue
		}
		snap.Edges = append(snap.Edges, types.GraphEdge{From: fa.Path, To: re.Resolved, Label: types.EdgeReexport})
	}
}

// deriveBarrel classifies index-like files with re-exports.
func deriveBarrel(fa *types.FileAnalysis) *types.BarrelFile {
	if len(fa.Reexports) == 0 || !isIndexLike(fa.Path) {
		return nil
	}
	barrel := &types.BarrelFile{
		Path:          fa.Path,
		ModuleID:      resolver.KeyForPath(fa.Path).AsKey(),
		ReexportCount: len(fa.Reexports),
	}
	for _, re := range fa.Reexports {
		barrel.Targets = append(barrel.Targets, re.Source)
	}
	for _, e := range fa.Exports {
		if e.Kind != "reexport" {
			barrel.Mixed = true
			break
		}
	}
	return barrel
}

func isIndexLike(p string) bool {
	base := filepath.Base(p)
	if strings.HasPrefix(base, "index.") || base == "mod.rs" || base == "__init__.py" || base == "lib.rs" {
		return true
	}
	return false
}

// Normalize sorts the snapshot canonically: files by path, edges by
// (from, to, label), barrels and bridges by path/name. Two scans of an
// unchanged tree serialize byte-identically.
func Normalize(snap *types.Snapshot) {
	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].Path < snap.Files[j].Path })
	sort.Slice(snap.Edges, func(i, j int) bool {
		a, b := snap.Edges[i], snap.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Label < b.Label
	})
	sort.Slice(snap.Barrels, func(i, j int) bool { return snap.Barrels[i].Path < snap.Barrels[j].Path })
	sort.Slice(snap.CommandBridges, func(i, j int) bool { return snap.CommandBridges[i].Name < snap.CommandBridges[j].Name })
	sort.Slice(snap.EventBridges, func(i, j int) bool { return snap.EventBridges[i].Name < snap.EventBridges[j].Name })
	for _, files := range snap.ExportIndex {
		sort.Strings(files)
	}
}

// readGitInfo reads branch and commit from .git without invoking git.
// Absence is not an error.
func readGitInfo(root string) types.GitInfo {
	var info types.GitInfo
	head, err := os.ReadFile(filepath.Join(root, ".git", "HEAD"))
	if err != nil {
		return info
	}
	line := strings.TrimSpace(string(head))
	if ref, ok := strings.CutPrefix(line, "ref: "); ok {
		info.Branch = strings.TrimPrefix(ref, "refs/heads/")
		if hash, err := os.ReadFile(filepath.Join(root, ".git", filepath.FromSlash(ref))); err == nil {
			info.Commit = shortHash(strings.TrimSpace(string(hash)))
		}
	} else {
		info.Commit = shortHash(line)
	}
	return info
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
