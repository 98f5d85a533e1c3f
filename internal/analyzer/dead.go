package analyzer

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

// DeadExportOptions is the filter configuration for the dead-export engine.
type DeadExportOptions struct {
	IncludeTests      bool
	IncludeHelpers    bool
	LibraryMode       bool
	PythonLibraryMode bool
	// HighConfidence additionally suppresses default exports and reports
	// confidence very_high.
	HighConfidence bool
	ExampleGlobs   []string
	// IncludeGo opts into the experimental Go path: exports are judged
	// against identifier uses pooled per directory (package scope). Off by
	// default until cross-package tracking is reliable.
	IncludeGo bool
}

// DeadExport is one exported symbol with no detectable consumer.
type DeadExport struct {
	File       string `json:"file"`
	Symbol     string `json:"symbol"`
	Kind       string `json:"kind"`
	Line       int    `json:"line"`
	Confidence string `json:"confidence"` // high | very_high
	Reason     string `json:"reason"`
	OpenURL    string `json:"open_url,omitempty"`
}

// consumerSets aggregates everything the snapshot says about symbol
// consumption.
type consumerSets struct {
	// usedExports maps module key → consumed symbol names ("*" for star).
	usedExports map[string]map[string]bool
	// allImportedSymbols is the name-only fallback for monorepo alias
	// failures.
	allImportedSymbols map[string]bool
	crateImports       []crateImport
	// rustQualified pools path-qualified call identifiers over all Rust
	// files.
	rustQualified map[string]bool
	// registeredHandlers unions tauri_registered_handlers over all files.
	registeredHandlers map[string]bool
	// goDirUses pools local_uses per directory for Go package reasoning.
	goDirUses map[string]map[string]int
	// reachable holds files transitively reachable from dynamic imports.
	reachable map[string]bool
}

// FindDeadExports runs the dead-export engine over a snapshot.
func FindDeadExports(snap *types.Snapshot, opts DeadExportOptions) []DeadExport {
	sets := buildConsumerSets(snap)

	var dead []DeadExport
	for _, fa := range snap.Files {
		if _, skip := skipFile(fa, opts); skip {
			continue
		}
		if sets.reachable[fa.Path] {
			continue
		}

		key := resolver.KeyForPath(fa.Path).AsKey()
		for _, e := range fa.Exports {
			if e.Kind == "reexport" || e.Kind == "__all__" {
				continue
			}
			if _, skip := skipExport(fa, e, opts); skip {
				continue
			}
			used, checks := isUsed(sets, fa, key, e)
			if used {
				continue
			}

			confidence := "high"
			if opts.HighConfidence {
				confidence = "very_high"
			}
			dead = append(dead, DeadExport{
				File:       fa.Path,
				Symbol:     e.Name,
				Kind:       e.Kind,
				Line:       e.Line,
				Confidence: confidence,
				Reason:     checks,
			})
		}
	}

	sort.Slice(dead, func(i, j int) bool {
		if dead[i].File != dead[j].File {
			return dead[i].File < dead[j].File
		}
		return dead[i].Symbol < dead[j].Symbol
	})
	return dead
}

// buildConsumerSets walks every import and re-export once.
func buildConsumerSets(snap *types.Snapshot) *consumerSets {
	sets := &consumerSets{
		usedExports:        map[string]map[string]bool{},
		allImportedSymbols: map[string]bool{},
		rustQualified:      map[string]bool{},
		registeredHandlers: map[string]bool{},
		goDirUses:          map[string]map[string]int{},
	}

	mark := func(key, name string) {
		if sets.usedExports[key] == nil {
			sets.usedExports[key] = map[string]bool{}
		}
		sets.usedExports[key][name] = true
	}

	for _, fa := range snap.Files {
		for _, imp := range fa.Imports {
			target := imp.Source
			if imp.ResolvedPath != "" {
				target = imp.ResolvedPath
			}
			key := resolver.KeyForPath(target).AsKey()

			for _, sym := range imp.Symbols {
				name := sym.Name
				if sym.IsDefault {
					name = "default"
				}
				mark(key, name)
				sets.allImportedSymbols[name] = true
			}

			if imp.IsCrateRelative || imp.IsSuperRelative || imp.IsSelfRelative {
				ci := crateImport{rawPath: imp.RawPath, importer: fa.Path}
				for _, sym := range imp.Symbols {
					ci.symbols = append(ci.symbols, sym.Name)
				}
				sets.crateImports = append(sets.crateImports, ci)
			}
		}

		for _, re := range fa.Reexports {
			target := re.Source
			if re.Resolved != "" {
				target = re.Resolved
			}
			// Declaration files collapse onto their implementation module
			// key, so foo.d.ts re-exporting from foo.js marks foo.js used.
			key := resolver.KeyForPath(target).AsKey()
			if re.Kind == types.ReexportStar {
				mark(key, "*")
				continue
			}
			for _, pair := range re.Names {
				mark(key, pair.Original)
				sets.allImportedSymbols[pair.Original] = true
			}
		}

		for _, h := range fa.TauriRegisteredHandlers {
			sets.registeredHandlers[h] = true
		}
		for _, q := range fa.RustQualifiedCalls {
			sets.rustQualified[q] = true
		}
		if fa.Language == types.LangGo {
			dir := path.Dir(fa.Path)
			if sets.goDirUses[dir] == nil {
				sets.goDirUses[dir] = map[string]int{}
			}
			for name, n := range fa.LocalUses {
				sets.goDirUses[dir][name] += n
			}
		}
	}

	sets.reachable = dynamicReachability(snap)
	return sets
}

// dynamicReachability seeds a BFS with every dynamically imported module
// (matched flexibly) and closes over resolved imports. Reached files are
// immune to dead detection.
func dynamicReachability(snap *types.Snapshot) map[string]bool {
	adjacency := map[string][]string{}
	for _, fa := range snap.Files {
		for _, imp := range fa.Imports {
			if imp.ResolvedPath != "" {
				adjacency[fa.Path] = append(adjacency[fa.Path], imp.ResolvedPath)
			}
		}
		for _, re := range fa.Reexports {
			if re.Resolved != "" {
				adjacency[fa.Path] = append(adjacency[fa.Path], re.Resolved)
			}
		}
	}

	seeds := map[string]bool{}
	for _, fa := range snap.Files {
		for _, spec := range fa.DynamicImports {
			for _, target := range matchDynamicTargets(snap, spec) {
				seeds[target] = true
			}
		}
	}

	reachable := map[string]bool{}
	queue := make([]string, 0, len(seeds))
	for s := range seeds {
		reachable[s] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reachable
}

// matchDynamicTargets finds snapshot files a dynamic specifier could load:
// exact path, alias-prefix-stripped, normalized module key, and
// extension-tolerant path suffix.
func matchDynamicTargets(snap *types.Snapshot, spec string) []string {
	specKey := resolver.KeyForPath(spec).Path
	stripped := stripAliasPrefix(specKey)

	var targets []string
	for _, fa := range snap.Files {
		if fa.Path == spec {
			targets = append(targets, fa.Path)
			continue
		}
		fileKey := resolver.KeyForPath(fa.Path).Path
		if fileKey == specKey || fileKey == stripped {
			targets = append(targets, fa.Path)
			continue
		}
		if stripped != "" && (strings.HasSuffix(fileKey, "/"+stripped) ||
			strings.HasSuffix(fileKey, "/"+specKey)) {
			targets = append(targets, fa.Path)
		}
	}
	return targets
}

// stripAliasPrefix drops a leading @scope/ or $alias/ segment.
func stripAliasPrefix(p string) string {
	if strings.HasPrefix(p, "@") || strings.HasPrefix(p, "$") || strings.HasPrefix(p, "~") {
		if idx := strings.Index(p, "/"); idx >= 0 {
			return p[idx+1:]
		}
	}
	return p
}

// isUsed runs the used-or-not decision ladder. The returned string is the
// audit trail of checks performed.
func isUsed(sets *consumerSets, fa *types.FileAnalysis, key string, e types.ExportSymbol) (bool, string) {
	name := e.Name
	if e.ExportType == "default" {
		name = "default"
	}

	if sets.usedExports[key][name] {
		return true, ""
	}
	if sets.usedExports[key]["*"] {
		return true, ""
	}
	if fa.LocalUses[e.Name] > 0 {
		return true, ""
	}
	if fa.Language == types.LangGo && sets.goDirUses[path.Dir(fa.Path)][e.Name] > 0 {
		// Package-peer use: another file in the directory references the
		// identifier.
		return true, ""
	}
	if sets.registeredHandlers[e.Name] {
		return true, ""
	}
	if sets.allImportedSymbols[e.Name] {
		return true, ""
	}
	if IsSvelteComponentAPI(fa.Path, e.Name) {
		return true, ""
	}
	if fa.Language == types.LangRust {
		if sets.rustQualified[e.Name] {
			return true, ""
		}
		for _, ci := range sets.crateImports {
			if rustFuzzyMatch(ci, e.Name, fa.Path) {
				return true, ""
			}
		}
	}
	if jsxRuntimeExports[e.Name] || fa.IsFlowFile || fa.HasWeakCollections {
		return true, ""
	}

	reason := fmt.Sprintf(
		"no import of %s from %s; checked: direct imports (%d consumers indexed), star re-exports, local uses (%d idents), name-only fallback (%d names), registered handlers (%d)",
		e.Name, key, len(sets.usedExports), len(fa.LocalUses),
		len(sets.allImportedSymbols), len(sets.registeredHandlers),
	)
	if fa.Language == types.LangRust {
		reason += fmt.Sprintf(", rust qualified calls (%d), crate-internal uses (%d)",
			len(sets.rustQualified), len(sets.crateImports))
	}
	return false, reason
}
