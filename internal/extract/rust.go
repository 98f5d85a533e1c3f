package extract

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/pkg/types"
)

var (
	rustRenameRe = regexp.MustCompile(`rename\s*=\s*"([^"]+)"`)
	rustIdentRe  = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	rustDeriveRe = regexp.MustCompile(`derive\s*\(([^)]*)\)`)
)

// extractRust runs the tree-sitter Rust extractor.
func (e *Extractor) extractRust(fa *types.FileAnalysis, content []byte) {
	tree := e.parse(parser.GrammarRust, content, fa.Path)
	if tree == nil {
		return
	}
	defer tree.Close()

	v := &rustVisitor{ex: e, fa: fa, src: content}
	v.walk(tree.RootNode())
}

type rustVisitor struct {
	ex  *Extractor
	fa  *types.FileAnalysis
	src []byte
}

func (v *rustVisitor) walk(root *tree_sitter.Node) {
	walkTree(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "use_declaration":
			v.useDeclaration(n)
			return false
		case "function_item":
			v.item(n, "function")
			return true
		case "struct_item":
			v.item(n, "struct")
			return true
		case "enum_item":
			v.item(n, "enum")
			return true
		case "const_item", "static_item":
			v.item(n, "const")
			return true
		case "type_item":
			v.item(n, "type")
			return true
		case "trait_item":
			v.item(n, "trait")
			return true
		case "mod_item":
			v.item(n, "mod")
			return true
		case "macro_invocation":
			v.macroInvocation(n)
			return true
		case "call_expression":
			v.callExpression(n)
			return true
		}
		return true
	})
}

// useDeclaration records the use path verbatim, sets the prefix flags, and
// expands brace groups into individual symbols.
func (v *rustVisitor) useDeclaration(n *tree_sitter.Node) {
	arg := n.ChildByFieldName("argument")
	if arg == nil {
		return
	}
	raw := strings.TrimSuffix(strings.TrimSpace(text(arg, v.src)), ";")

	entry := types.ImportEntry{
		Source:          raw,
		RawPath:         raw,
		Kind:            types.ImportStatic,
		Line:            lineOf(n),
		Resolution:      types.ResolutionUnknown,
		IsCrateRelative: strings.HasPrefix(raw, "crate::"),
		IsSuperRelative: strings.HasPrefix(raw, "super::"),
		IsSelfRelative:  strings.HasPrefix(raw, "self::"),
	}

	for _, leaf := range expandUseTree(raw) {
		if leaf == "*" || leaf == "self" {
			continue
		}
		entry.Symbols = append(entry.Symbols, types.ImportSymbol{Name: leaf})
	}

	v.fa.Imports = append(v.fa.Imports, entry)
}

// expandUseTree flattens a use path with brace groups into its leaf
// segments: "crate::a::{b::C, d}" → [C, d].
func expandUseTree(path string) []string {
	path = strings.TrimSpace(path)

	// use x as y — the bound name is y.
	if idx := strings.LastIndex(path, " as "); idx >= 0 && !strings.Contains(path[idx:], "{") {
		return []string{strings.TrimSpace(path[idx+4:])}
	}

	brace := strings.Index(path, "{")
	if brace < 0 {
		segs := strings.Split(path, "::")
		return []string{strings.TrimSpace(segs[len(segs)-1])}
	}

	closing := matchingBrace(path, brace)
	if closing < 0 {
		return nil
	}

	var leaves []string
	inner := path[brace+1 : closing]
	for _, part := range splitTopLevel(inner) {
		leaves = append(leaves, expandUseTree(part)...)
	}
	return leaves
}

// matchingBrace finds the index of the brace closing path[open].
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside nested braces.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// item records a pub item as an export and checks its attributes for
// command macros and derives.
func (v *rustVisitor) item(n *tree_sitter.Node, kind string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(nameNode, v.src)

	attrs := precedingAttributes(n, v.src)

	if kind == "function" {
		v.recordSignatureUses(n, name)
		if cmdAttr, ok := v.commandAttribute(attrs); ok {
			ref := types.CommandRef{Name: name, Line: lineOf(n)}
			if m := rustRenameRe.FindStringSubmatch(cmdAttr); m != nil {
				ref.ExposedName = m[1]
			}
			v.fa.CommandHandlers = append(v.fa.CommandHandlers, ref)
		}
	}

	if !isPub(n, v.src) {
		return
	}

	sym := types.ExportSymbol{
		Name:       name,
		Kind:       kind,
		ExportType: "named",
		Line:       lineOf(n),
	}
	for _, attr := range attrs {
		if m := rustDeriveRe.FindStringSubmatch(attr); m != nil {
			for _, tok := range strings.Split(m[1], ",") {
				if t := strings.ToLower(strings.TrimSpace(tok)); t != "" {
					sym.Derives = append(sym.Derives, t)
				}
			}
		}
	}
	v.fa.Exports = append(v.fa.Exports, sym)
}

// commandAttribute finds a tauri::command (or custom macro) attribute.
func (v *rustVisitor) commandAttribute(attrs []string) (string, bool) {
	macros := append([]string{"tauri::command"}, v.ex.opts.Detection.CustomCommandMacros...)
	for _, attr := range attrs {
		for _, macro := range macros {
			if strings.Contains(attr, macro) {
				return attr, true
			}
		}
	}
	return "", false
}

// precedingAttributes collects the attribute_item texts directly above an
// item.
func precedingAttributes(n *tree_sitter.Node, src []byte) []string {
	var attrs []string
	for sib := n.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		if sib.Kind() != "attribute_item" {
			break
		}
		attrs = append(attrs, text(sib, src))
	}
	return attrs
}

// isPub checks for a pub visibility modifier on an item.
func isPub(n *tree_sitter.Node, src []byte) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "visibility_modifier" {
			return strings.HasPrefix(text(c, src), "pub")
		}
	}
	return false
}

// recordSignatureUses adds parameter and return type identifiers of a
// function to local_uses and signature_uses.
func (v *rustVisitor) recordSignatureUses(fn *tree_sitter.Node, fnName string) {
	record := func(node *tree_sitter.Node, position string) {
		walkTree(node, func(t *tree_sitter.Node) bool {
			if t.Kind() == "type_identifier" {
				name := text(t, v.src)
				v.fa.AddLocalUse(name)
				v.fa.SignatureUses = append(v.fa.SignatureUses, types.SignatureUse{
					Function: fnName,
					Position: position,
					TypeName: name,
					Line:     lineOf(t),
				})
			}
			return true
		})
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		record(params, "parameter")
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		record(ret, "return")
	}
}

// macroInvocation handles generate_handler! registration lists.
func (v *rustVisitor) macroInvocation(n *tree_sitter.Node) {
	macroNode := n.ChildByFieldName("macro")
	if macroNode == nil {
		return
	}
	if !strings.HasSuffix(text(macroNode, v.src), "generate_handler") {
		return
	}
	// The token tree is a flat ident list; commas and paths tokenize out.
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() != "token_tree" {
			continue
		}
		for _, ident := range rustIdentRe.FindAllString(text(c, v.src), -1) {
			v.fa.TauriRegisteredHandlers = append(v.fa.TauriRegisteredHandlers, ident)
		}
	}
}

// callExpression tracks bare calls and path-qualified calls.
func (v *rustVisitor) callExpression(n *tree_sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	switch fn.Kind() {
	case "identifier":
		v.fa.AddLocalUse(text(fn, v.src))
	case "scoped_identifier":
		full := text(fn, v.src)
		segs := strings.Split(full, "::")
		last := segs[len(segs)-1]
		v.fa.AddLocalUse(last)
		if len(segs) > 1 {
			v.fa.RustQualifiedCalls = append(v.fa.RustQualifiedCalls, last)
		}
	case "field_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			v.fa.AddLocalUse(text(field, v.src))
		}
	}
}
