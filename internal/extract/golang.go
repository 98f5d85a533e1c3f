package extract

import (
	goast "go/ast"
	goparser "go/parser"
	"go/token"
	"strings"

	"github.com/fzipp/gocyclo"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/pkg/types"
)

// extractGo records exported (capitalized) top-level identifiers and pools
// identifier uses for package-scoped reasoning. Generated protobuf output
// is marked so dead detection excludes it.
func (e *Extractor) extractGo(fa *types.FileAnalysis, content []byte) {
	if strings.HasSuffix(fa.Path, ".pb.go") || strings.HasSuffix(fa.Path, ".pb.gw.go") ||
		strings.Contains(string(contentHead(content)), "Code generated") {
		fa.IsGenerated = true
	}
	fa.CyclomaticMax = goComplexity(fa.Path, content)

	tree := e.parse(parser.GrammarGo, content, fa.Path)
	if tree == nil {
		return
	}
	defer tree.Close()

	src := content
	walkTree(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_spec":
			if pathNode := n.ChildByFieldName("path"); pathNode != nil {
				spec := unquote(text(pathNode, src))
				entry := types.ImportEntry{
					Source:     spec,
					Kind:       types.ImportStatic,
					Line:       lineOf(n),
					IsBare:     true,
					Resolution: types.ResolutionUnknown,
				}
				fa.Imports = append(fa.Imports, entry)
			}
			return false
		case "function_declaration", "method_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := text(nameNode, src)
				if n.Kind() == "function_declaration" && isCapitalized(name) {
					fa.Exports = append(fa.Exports, types.ExportSymbol{
						Name: name, Kind: "function", ExportType: "named", Line: lineOf(n),
					})
				}
			}
			return true
		case "type_spec":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				if name := text(nameNode, src); isCapitalized(name) {
					fa.Exports = append(fa.Exports, types.ExportSymbol{
						Name: name, Kind: "type", ExportType: "named", Line: lineOf(n),
					})
				}
			}
			return true
		case "const_spec", "var_spec":
			eachChild(n, func(c *tree_sitter.Node) {
				if c.Kind() == "identifier" {
					if name := text(c, src); isCapitalized(name) {
						kind := "const"
						if n.Kind() == "var_spec" {
							kind = "var"
						}
						fa.Exports = append(fa.Exports, types.ExportSymbol{
							Name: name, Kind: kind, ExportType: "named", Line: lineOf(c),
						})
					}
				}
			})
			return true
		case "call_expression":
			if fn := n.ChildByFieldName("function"); fn != nil {
				switch fn.Kind() {
				case "identifier":
					fa.AddLocalUse(text(fn, src))
				case "selector_expression":
					if field := fn.ChildByFieldName("field"); field != nil {
						fa.AddLocalUse(text(field, src))
					}
				}
			}
			return true
		case "type_identifier":
			fa.AddLocalUse(text(n, src))
			return true
		}
		return true
	})
}

// goComplexity computes the highest per-function cyclomatic complexity in
// the file with gocyclo. Unparsable files score zero; gocyclo needs a
// go/ast, which is the one place the Go toolchain's own parser is used.
func goComplexity(path string, content []byte) int {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, path, content, 0)
	if err != nil {
		return 0
	}
	var stats gocyclo.Stats
	stats = gocyclo.AnalyzeASTFile(f, fset, stats)
	max := 0
	for _, s := range stats {
		if s.Complexity > max {
			max = s.Complexity
		}
	}
	return max
}

// isCapitalized is Go's exported-identifier rule.
func isCapitalized(name string) bool {
	return goast.IsExported(name)
}

// contentHead returns the first kilobyte for header sniffing.
func contentHead(content []byte) []byte {
	if len(content) > 1024 {
		return content[:1024]
	}
	return content
}
