// Package extract turns source bytes into a FileAnalysis, one extractor per
// language. Extractors never abort the pipeline: parse trouble is logged at
// verbose level and the partial analysis is returned.
package extract

import (
	"bytes"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

// Options carries per-scan extractor configuration.
type Options struct {
	Detection *CommandDetectionConfig
}

// Extractor dispatches file bytes to the per-language extraction procedure.
type Extractor struct {
	parsers  *parser.TreeSitterParser
	resolver *resolver.Resolver
	opts     Options
}

// New creates an Extractor. parsers may be nil, in which case AST-backed
// languages degrade to empty analyses (discovery metadata only).
func New(parsers *parser.TreeSitterParser, res *resolver.Resolver, opts Options) *Extractor {
	if opts.Detection == nil {
		opts.Detection = DefaultCommandDetectionConfig()
	}
	return &Extractor{parsers: parsers, resolver: res, opts: opts}
}

// LanguageForPath maps a file path to its language tag, or "" when the
// extension is not analyzable.
func LanguageForPath(p string) types.Language {
	name := path.Base(p)
	switch {
	case strings.HasSuffix(name, ".tsx"):
		return types.LangTSX
	case strings.HasSuffix(name, ".ts"), strings.HasSuffix(name, ".mts"), strings.HasSuffix(name, ".cts"):
		return types.LangTS
	case strings.HasSuffix(name, ".jsx"):
		return types.LangJSX
	case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".mjs"), strings.HasSuffix(name, ".cjs"):
		return types.LangJS
	case strings.HasSuffix(name, ".rs"):
		return types.LangRust
	case strings.HasSuffix(name, ".py"), strings.HasSuffix(name, ".pyi"):
		return types.LangPython
	case strings.HasSuffix(name, ".go"):
		return types.LangGo
	case strings.HasSuffix(name, ".css"), strings.HasSuffix(name, ".scss"):
		return types.LangCSS
	case strings.HasSuffix(name, ".svelte"):
		return types.LangSvelte
	case strings.HasSuffix(name, ".vue"):
		return types.LangVue
	}
	return ""
}

// Extract produces a FileAnalysis for one file. relPath is repo-relative
// with forward slashes. The returned analysis always has Path, Language,
// and LOC set, even when parsing fails.
func (e *Extractor) Extract(content []byte, relPath string, lang types.Language) *types.FileAnalysis {
	fa := &types.FileAnalysis{
		Path:     relPath,
		Language: lang,
		LOC:      countLOC(content),
	}

	switch lang {
	case types.LangTS, types.LangTSX, types.LangJS, types.LangJSX:
		e.extractTS(fa, content, lang)
	case types.LangSvelte, types.LangVue:
		e.extractSFC(fa, content, lang)
	case types.LangPython:
		e.extractPython(fa, content)
	case types.LangRust:
		e.extractRust(fa, content)
	case types.LangGo:
		e.extractGo(fa, content)
	case types.LangCSS:
		e.extractCSS(fa, content)
	}

	return fa
}

// parse runs the pooled parser for a grammar, logging failures at verbose
// level. Callers must close the returned tree. A tree with error nodes is
// still returned: the partial analysis participates in the snapshot.
func (e *Extractor) parse(g parser.Grammar, content []byte, relPath string) *tree_sitter.Tree {
	if e.parsers == nil {
		return nil
	}
	tree, err := e.parsers.Parse(g, content)
	if err != nil {
		config.Verbosef("parse %s: %v", relPath, err)
		return nil
	}
	if config.VerboseEnabled() && tree.RootNode().HasError() {
		if errNode := firstErrorNode(tree.RootNode()); errNode != nil {
			pos := errNode.StartPosition()
			config.Verbosef("parse %s: syntax error at %d:%d", relPath, pos.Row+1, pos.Column+1)
		}
	}
	return tree
}

// firstErrorNode finds the first ERROR node in a tree.
func firstErrorNode(root *tree_sitter.Node) *tree_sitter.Node {
	var found *tree_sitter.Node
	walkTree(root, func(n *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// countLOC counts lines by newline bytes, plus one for a non-empty tail.
func countLOC(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// lineOf converts a node's start row to a 1-based line number.
func lineOf(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// text returns a node's source text.
func text(n *tree_sitter.Node, src []byte) string {
	return n.Utf8Text(src)
}

// unquote strips matching string delimiters from a literal's text.
func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

// eachChild invokes fn for every named child of n.
func eachChild(n *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			fn(c)
		}
	}
}

// walkTree walks every node depth-first. fn returning false prunes the
// subtree.
func walkTree(root *tree_sitter.Node, fn func(n *tree_sitter.Node) bool) {
	cursor := root.Walk()
	defer cursor.Close()

	var walk func()
	walk = func() {
		if !fn(cursor.Node()) {
			return
		}
		if cursor.GotoFirstChild() {
			walk()
			for cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()
}

// hasAncestorOfKind reports whether any ancestor of n has one of the kinds.
func hasAncestorOfKind(n *tree_sitter.Node, kinds ...string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		k := p.Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
	}
	return false
}

// isSnakeCase reports whether a name is all-lowercase snake case.
func isSnakeCase(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return false
		}
	}
	return strings.Contains(s, "_") || strings.ToLower(s) == s
}

// hasUppercase reports whether any rune in s is uppercase.
func hasUppercase(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
