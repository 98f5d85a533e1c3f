package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/pkg/types"
)

// extractTS runs the TS/JS AST extractor. JSX parsing is enabled only for
// the tsx/jsx tags so <T> generics in .ts files parse as generics.
func (e *Extractor) extractTS(fa *types.FileAnalysis, content []byte, lang types.Language) {
	if isFlowSource(content) {
		fa.IsFlowFile = true
	}

	grammar, ok := parser.GrammarFor(lang)
	if !ok {
		return
	}
	tree := e.parse(grammar, content, fa.Path)
	if tree == nil {
		return
	}
	defer tree.Close()

	root := tree.RootNode()
	v := &tsVisitor{ex: e, fa: fa, src: content, consts: map[string]string{}}
	v.collectConsts(root)
	v.walk(root)
}

// isFlowSource checks for a @flow pragma near the top of a JS file.
func isFlowSource(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(string(head), "@flow")
}

type tsVisitor struct {
	ex     *Extractor
	fa     *types.FileAnalysis
	src    []byte
	consts map[string]string // module-level const NAME = "literal"
}

// collectConsts gathers module-level string constants so event names
// written as identifiers resolve to their literal value.
func (v *tsVisitor) collectConsts(root *tree_sitter.Node) {
	eachChild(root, func(n *tree_sitter.Node) {
		decl := n
		if n.Kind() == "export_statement" {
			if d := n.ChildByFieldName("declaration"); d != nil {
				decl = d
			}
		}
		if decl.Kind() != "lexical_declaration" {
			return
		}
		eachChild(decl, func(d *tree_sitter.Node) {
			if d.Kind() != "variable_declarator" {
				return
			}
			name := d.ChildByFieldName("name")
			value := d.ChildByFieldName("value")
			if name == nil || value == nil || name.Kind() != "identifier" {
				return
			}
			if lit, ok := stringValue(value, v.src); ok {
				v.consts[text(name, v.src)] = lit
			}
		})
	})
}

func (v *tsVisitor) walk(root *tree_sitter.Node) {
	walkTree(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			v.importStatement(n)
			return false
		case "export_statement":
			v.exportStatement(n)
			return true // descend: exported declarations carry calls too
		case "call_expression":
			v.callExpression(n)
			return true
		case "new_expression":
			v.newExpression(n)
			return true
		case "class_heritage":
			v.classHeritage(n)
			return true
		case "decorator":
			if id := firstDescendant(n, "identifier"); id != nil {
				v.fa.AddLocalUse(text(id, v.src))
			}
			return true
		case "jsx_opening_element", "jsx_self_closing_element":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := text(nameNode, v.src)
				if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
					v.fa.AddLocalUse(name)
				}
			}
			return true
		}
		return true
	})
}

// importStatement records a static, type, or side-effect import.
func (v *tsVisitor) importStatement(n *tree_sitter.Node) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	source := unquote(text(sourceNode, v.src))

	entry := types.ImportEntry{
		Source: source,
		Kind:   types.ImportStatic,
		Line:   lineOf(n),
	}

	var clause *tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "type":
			entry.Kind = types.ImportType
		case "import_clause":
			clause = c
		}
	}
	if clause == nil {
		entry.Kind = types.ImportSideEffect
	} else {
		entry.Symbols = v.importClauseSymbols(clause)
	}

	v.resolveTSEntry(&entry)
	v.fa.Imports = append(v.fa.Imports, entry)
}

// importClauseSymbols collects default, namespace, and named bindings. A
// default import is normalized to the name "default" with the local name as
// alias; a namespace import is the name "*".
func (v *tsVisitor) importClauseSymbols(clause *tree_sitter.Node) []types.ImportSymbol {
	var symbols []types.ImportSymbol
	eachChild(clause, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "identifier":
			symbols = append(symbols, types.ImportSymbol{
				Name:      "default",
				Alias:     text(c, v.src),
				IsDefault: true,
			})
		case "namespace_import":
			if id := firstDescendant(c, "identifier"); id != nil {
				symbols = append(symbols, types.ImportSymbol{Name: "*", Alias: text(id, v.src)})
			}
		case "named_imports":
			eachChild(c, func(spec *tree_sitter.Node) {
				if spec.Kind() != "import_specifier" {
					return
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					return
				}
				sym := types.ImportSymbol{Name: text(nameNode, v.src)}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					sym.Alias = text(alias, v.src)
				}
				symbols = append(symbols, sym)
			})
		}
	})
	return symbols
}

func (v *tsVisitor) resolveTSEntry(entry *types.ImportEntry) {
	if v.ex.resolver == nil {
		entry.Resolution = types.ResolutionUnknown
		return
	}
	res := v.ex.resolver.ResolveTS(entry.Source, v.fa.Path)
	entry.ResolvedPath = res.Path
	entry.Resolution = res.Resolution
	entry.IsBare = !strings.HasPrefix(entry.Source, ".") && !strings.HasPrefix(entry.Source, "/")
}

// exportStatement records re-exports, declarations, and default exports.
func (v *tsVisitor) exportStatement(n *tree_sitter.Node) {
	sourceNode := n.ChildByFieldName("source")

	if sourceNode != nil {
		v.reexport(n, unquote(text(sourceNode, v.src)))
		return
	}

	hasDefault := false
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == "default" {
			hasDefault = true
		}
	}
	if hasDefault {
		v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
			Name:       "default",
			Kind:       "default",
			ExportType: "default",
			Line:       lineOf(n),
		})
		return
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		v.exportDeclaration(decl)
		return
	}

	// export { a, b as c } — local names made public.
	eachChild(n, func(c *tree_sitter.Node) {
		if c.Kind() != "export_clause" {
			return
		}
		eachChild(c, func(spec *tree_sitter.Node) {
			if spec.Kind() != "export_specifier" {
				return
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			exported := text(nameNode, v.src)
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = text(alias, v.src)
			}
			v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
				Name:       exported,
				Kind:       "var",
				ExportType: "named",
				Line:       lineOf(spec),
			})
		})
	})
}

// reexport records `export … from "…"` as star or named pairs.
func (v *tsVisitor) reexport(n *tree_sitter.Node, source string) {
	entry := types.ReexportEntry{Source: source, Line: lineOf(n)}

	star := false
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == "*" {
			star = true
		}
	}

	if star {
		entry.Kind = types.ReexportStar
	} else {
		entry.Kind = types.ReexportNamed
		eachChild(n, func(c *tree_sitter.Node) {
			if c.Kind() != "export_clause" {
				return
			}
			eachChild(c, func(spec *tree_sitter.Node) {
				if spec.Kind() != "export_specifier" {
					return
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					return
				}
				pair := types.ReexportName{Original: text(nameNode, v.src)}
				pair.Exported = pair.Original
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					pair.Exported = text(alias, v.src)
				}
				entry.Names = append(entry.Names, pair)
			})
		})
	}

	if v.ex.resolver != nil {
		if res := v.ex.resolver.ResolveTS(source, v.fa.Path); res.Resolution == types.ResolutionLocal {
			entry.Resolved = res.Path
		}
	}

	v.fa.Reexports = append(v.fa.Reexports, entry)

	// Every re-exported name is also an export of this file, kind reexport,
	// so barrels list their surface without counting as definitions.
	if entry.Kind == types.ReexportNamed {
		for _, pair := range entry.Names {
			v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
				Name:       pair.Exported,
				Kind:       "reexport",
				ExportType: "named",
				Line:       lineOf(n),
			})
		}
	}
}

// exportDeclaration records an exported declaration node.
func (v *tsVisitor) exportDeclaration(decl *tree_sitter.Node) {
	kind := ""
	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration":
		kind = "function"
	case "class_declaration", "abstract_class_declaration":
		kind = "class"
	case "interface_declaration":
		kind = "interface"
	case "type_alias_declaration":
		kind = "type"
	case "enum_declaration":
		kind = "enum"
	case "lexical_declaration", "variable_declaration":
		v.exportLexical(decl)
		return
	default:
		return
	}

	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sym := types.ExportSymbol{
		Name:       text(nameNode, v.src),
		Kind:       kind,
		ExportType: "named",
		Line:       lineOf(decl),
	}
	if kind == "function" {
		sym.Params = v.functionParams(decl)
		v.signatureUses(decl, sym.Name)
	}
	v.fa.Exports = append(v.fa.Exports, sym)
}

// exportLexical records each declarator of an exported const/let/var.
func (v *tsVisitor) exportLexical(decl *tree_sitter.Node) {
	kind := "var"
	if strings.HasPrefix(text(decl, v.src), "const") {
		kind = "const"
	}
	eachChild(decl, func(d *tree_sitter.Node) {
		if d.Kind() != "variable_declarator" {
			return
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			return
		}
		sym := types.ExportSymbol{
			Name:       text(nameNode, v.src),
			Kind:       kind,
			ExportType: "named",
			Line:       lineOf(d),
		}
		if value := d.ChildByFieldName("value"); value != nil && value.Kind() == "arrow_function" {
			sym.Kind = "function"
			sym.Params = v.functionParams(value)
			v.signatureUses(value, sym.Name)
		}
		v.fa.Exports = append(v.fa.Exports, sym)
	})
}

// functionParams reads a function's formal parameters.
func (v *tsVisitor) functionParams(fn *tree_sitter.Node) []types.ParamInfo {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []types.ParamInfo
	eachChild(params, func(p *tree_sitter.Node) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			info := types.ParamInfo{}
			if pattern := p.ChildByFieldName("pattern"); pattern != nil {
				info.Name = text(pattern, v.src)
			}
			if ann := p.ChildByFieldName("type"); ann != nil {
				info.TypeAnnotation = strings.TrimPrefix(text(ann, v.src), ": ")
			}
			if p.ChildByFieldName("value") != nil {
				info.HasDefault = true
			}
			out = append(out, info)
		case "identifier":
			out = append(out, types.ParamInfo{Name: text(p, v.src)})
		}
	})
	return out
}

// signatureUses records every type identifier in an exported function's
// parameter and return annotations.
func (v *tsVisitor) signatureUses(fn *tree_sitter.Node, fnName string) {
	record := func(ann *tree_sitter.Node, position string) {
		walkTree(ann, func(t *tree_sitter.Node) bool {
			if t.Kind() == "type_identifier" {
				v.fa.SignatureUses = append(v.fa.SignatureUses, types.SignatureUse{
					Function: fnName,
					Position: position,
					TypeName: text(t, v.src),
					Line:     lineOf(t),
				})
			}
			return true
		})
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		eachChild(params, func(p *tree_sitter.Node) {
			if ann := p.ChildByFieldName("type"); ann != nil {
				record(ann, "parameter")
			}
		})
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		record(ret, "return")
	}
}

// callExpression handles dynamic imports, command invokes, event bridges,
// weak-collection detection, and local-use accounting.
func (v *tsVisitor) callExpression(n *tree_sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}

	if fn.Kind() == "import" {
		v.dynamicImport(n)
		return
	}

	// invoke<T>(…) can parse with the type arguments on an
	// instantiation_expression wrapping the callee.
	if fn.Kind() == "instantiation_expression" && fn.NamedChildCount() > 0 {
		fn = fn.NamedChild(0)
	}

	callee := calleeName(fn, v.src)
	if callee == "" {
		return
	}
	if fn.Kind() == "identifier" {
		v.fa.AddLocalUse(callee)
	}

	v.detectCommand(n, callee)
	v.detectEvent(n, callee)
}

func (v *tsVisitor) newExpression(n *tree_sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil {
		return
	}
	name := text(ctor, v.src)
	if name == "WeakMap" || name == "WeakSet" {
		v.fa.HasWeakCollections = true
	}
	if ctor.Kind() == "identifier" {
		v.fa.AddLocalUse(name)
	}
}

func (v *tsVisitor) classHeritage(n *tree_sitter.Node) {
	walkTree(n, func(t *tree_sitter.Node) bool {
		if t.Kind() == "identifier" {
			v.fa.AddLocalUse(text(t, v.src))
		}
		return true
	})
}

// dynamicImport records import("…") into dynamic_imports. Non-literal
// arguments are dynamic constructs; they are recorded as facts with their
// raw text and resolve to nothing.
func (v *tsVisitor) dynamicImport(n *tree_sitter.Node) {
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	spec, ok := stringValue(arg, v.src)
	if !ok {
		spec = text(arg, v.src)
	}

	entry := types.ImportEntry{
		Source: spec,
		Kind:   types.ImportDynamic,
		Line:   lineOf(n),
	}
	if ok && v.ex.resolver != nil {
		res := v.ex.resolver.ResolveTS(spec, v.fa.Path)
		entry.ResolvedPath = res.Path
		if res.Resolution == types.ResolutionLocal {
			entry.Resolution = types.ResolutionLocal
		} else {
			entry.Resolution = types.ResolutionDynamic
		}
	} else {
		entry.Resolution = types.ResolutionDynamic
	}

	v.fa.Imports = append(v.fa.Imports, entry)
	v.fa.DynamicImports = append(v.fa.DynamicImports, spec)
}

// detectCommand applies the invoke/Command candidate rules and exclusion
// sets, then records the call and any payload casing drift.
func (v *tsVisitor) detectCommand(n *tree_sitter.Node, callee string) {
	det := v.ex.opts.Detection
	base := lastSegment(callee)

	if !strings.Contains(strings.ToLower(base), "invoke") && !strings.Contains(base, "Command") {
		return
	}
	if det.DOMExclusions[base] || det.NonInvokeExclusions[base] {
		return
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	name, ok := stringValue(args.NamedChild(0), v.src)
	if !ok || name == "" {
		return
	}
	if det.InvalidCommandNames[name] {
		return
	}

	ref := types.CommandRef{Name: name, Line: lineOf(n)}
	typeArgs := n.ChildByFieldName("type_arguments")
	if fn := n.ChildByFieldName("function"); typeArgs == nil && fn != nil && fn.Kind() == "instantiation_expression" {
		typeArgs = firstDescendant(fn, "type_arguments")
	}
	if typeArgs != nil {
		ref.GenericType = strings.Trim(text(typeArgs, v.src), "<>")
	}
	if args.NamedChildCount() > 1 {
		payload := args.NamedChild(1)
		if payload.Kind() == "object" {
			ref.Payload = text(payload, v.src)
			v.checkCasingDrift(name, payload, lineOf(payload))
		}
	}
	v.fa.CommandCalls = append(v.fa.CommandCalls, ref)
}

// checkCasingDrift flags camelCase payload keys sent to a snake_case
// command.
func (v *tsVisitor) checkCasingDrift(command string, payload *tree_sitter.Node, line int) {
	if !isSnakeCase(command) {
		return
	}
	eachChild(payload, func(pair *tree_sitter.Node) {
		if pair.Kind() != "pair" && pair.Kind() != "shorthand_property_identifier" {
			return
		}
		keyNode := pair
		if pair.Kind() == "pair" {
			keyNode = pair.ChildByFieldName("key")
			if keyNode == nil {
				return
			}
		}
		key := unquote(text(keyNode, v.src))
		if hasUppercase(key) {
			v.fa.CasingDrifts = append(v.fa.CasingDrifts, types.CasingDrift{
				Command: command,
				Key:     key,
				Line:    line,
			})
		}
	})
}

// detectEvent records emit/listen sites, resolving const event names.
func (v *tsVisitor) detectEvent(n *tree_sitter.Node, callee string) {
	base := lastSegment(callee)

	var kind types.EventKind
	switch base {
	case "emit", "emitTo":
		kind = types.EventEmit
	case "listen", "once":
		kind = types.EventListen
	default:
		return
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)

	raw := text(arg, v.src)
	resolved, ok := stringValue(arg, v.src)
	if !ok {
		if arg.Kind() == "identifier" {
			if lit, found := v.consts[raw]; found {
				resolved = lit
			} else {
				return // unresolvable ident, a fact we cannot pair
			}
		} else {
			return
		}
	}

	ref := types.EventRef{
		Name:    resolved,
		RawName: unquote(raw),
		Line:    lineOf(n),
		Kind:    kind,
		Awaited: n.Parent() != nil && n.Parent().Kind() == "await_expression",
	}
	if kind == types.EventEmit && args.NamedChildCount() > 1 {
		ref.Payload = text(args.NamedChild(1), v.src)
	}

	if kind == types.EventEmit {
		v.fa.EventEmits = append(v.fa.EventEmits, ref)
	} else {
		v.fa.EventListens = append(v.fa.EventListens, ref)
	}
}

// calleeName renders a callee: identifiers as-is, member expressions as the
// dotted text.
func calleeName(fn *tree_sitter.Node, src []byte) string {
	switch fn.Kind() {
	case "identifier":
		return text(fn, src)
	case "member_expression":
		return text(fn, src)
	}
	return ""
}

// lastSegment returns the property after the final dot of a member chain.
func lastSegment(callee string) string {
	if idx := strings.LastIndex(callee, "."); idx >= 0 {
		return callee[idx+1:]
	}
	return callee
}

// stringValue returns the literal value of a string or single-chunk
// template node.
func stringValue(n *tree_sitter.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "string":
		return unquote(text(n, src)), true
	case "template_string":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if c := n.NamedChild(i); c != nil && c.Kind() == "template_substitution" {
				return "", false
			}
		}
		return unquote(text(n, src)), true
	}
	return "", false
}

// firstDescendant finds the first node of a kind in a subtree.
func firstDescendant(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	var found *tree_sitter.Node
	walkTree(n, func(t *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if t.Kind() == kind {
			found = t
			return false
		}
		return true
	})
	return found
}
