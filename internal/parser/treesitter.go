// Package parser provides pooled tree-sitter parsers for the languages the
// extractors read with a grammar: TypeScript, TSX, Python, Rust, and Go.
//
// Tree-sitter requires CGO_ENABLED=1. Parsers are not thread-safe, so parse
// operations are serialized via a mutex; returned trees are safe to use
// concurrently after parsing. Every Tree must be explicitly closed.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/loctree/loctree/pkg/types"
)

// Grammar selects one pooled parser. TSX is separate from TS so that
// <T> generics in .ts files are never misread as JSX.
type Grammar int

const (
	GrammarTS Grammar = iota
	GrammarTSX
	GrammarPython
	GrammarRust
	GrammarGo
)

// TreeSitterParser holds one pooled parser per grammar.
type TreeSitterParser struct {
	mu      sync.Mutex
	parsers map[Grammar]*tree_sitter.Parser
}

// NewTreeSitterParser initializes all grammars. Returns an error if any
// language fails to initialize.
func NewTreeSitterParser() (*TreeSitterParser, error) {
	langs := map[Grammar]*tree_sitter.Language{
		GrammarTS:     tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		GrammarTSX:    tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		GrammarPython: tree_sitter.NewLanguage(tree_sitter_python.Language()),
		GrammarRust:   tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		GrammarGo:     tree_sitter.NewLanguage(tree_sitter_go.Language()),
	}

	p := &TreeSitterParser{parsers: make(map[Grammar]*tree_sitter.Parser, len(langs))}
	for g, lang := range langs {
		tsp := tree_sitter.NewParser()
		if err := tsp.SetLanguage(lang); err != nil {
			tsp.Close()
			p.Close()
			return nil, fmt.Errorf("set grammar %d: %w", g, err)
		}
		p.parsers[g] = tsp
	}
	return p, nil
}

// Close releases all parser resources. Must be called when done.
func (p *TreeSitterParser) Close() {
	for _, tsp := range p.parsers {
		tsp.Close()
	}
	p.parsers = nil
}

// GrammarFor picks the grammar for a language tag. JSX is enabled only for
// the tsx/jsx tags; svelte and vue script blocks parse as plain TS.
func GrammarFor(lang types.Language) (Grammar, bool) {
	switch lang {
	case types.LangTS, types.LangJS, types.LangSvelte, types.LangVue:
		return GrammarTS, true
	case types.LangTSX, types.LangJSX:
		return GrammarTSX, true
	case types.LangPython:
		return GrammarPython, true
	case types.LangRust:
		return GrammarRust, true
	case types.LangGo:
		return GrammarGo, true
	}
	return GrammarTS, false
}

// Parse parses content with the given grammar. Returns a Tree the caller
// must close. Thread-safe; parsing is serialized internally.
func (p *TreeSitterParser) Parse(g Grammar, content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tsp, ok := p.parsers[g]
	if !ok {
		return nil, fmt.Errorf("no parser for grammar %d", g)
	}
	tree := tsp.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}
