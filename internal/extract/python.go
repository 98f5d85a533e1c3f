package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/pkg/types"
)

// routeDecorators maps decorator attribute names to HTTP methods. The
// "route" form reads its methods keyword argument.
var routeDecorators = map[string]string{
	"get": "GET", "post": "POST", "put": "PUT", "delete": "DELETE",
	"patch": "PATCH", "head": "HEAD", "options": "OPTIONS",
	"websocket": "WEBSOCKET",
}

// callbackDecorators register the decorated function with a framework, so
// the function is used even when nothing imports it (rumps, click, celery).
var callbackDecorators = map[string]bool{
	"clicked": true, "timer": true, "notifications": true,
	"command": true, "group": true, "task": true,
	"receiver": true, "register": true, "hookimpl": true,
	"validator": true, "field_validator": true, "model_validator": true,
	"on_event": true, "middleware": true, "exception_handler": true,
}

// extractPython runs the tree-sitter Python extractor.
func (e *Extractor) extractPython(fa *types.FileAnalysis, content []byte) {
	tree := e.parse(parser.GrammarPython, content, fa.Path)
	if tree == nil {
		return
	}
	defer tree.Close()

	v := &pyVisitor{
		ex:     e,
		fa:     fa,
		src:    content,
		isInit: strings.HasSuffix(fa.Path, "/__init__.py") || fa.Path == "__init__.py",
	}
	v.walk(tree.RootNode())
	v.detectRaceIndicators(tree.RootNode())
}

type pyVisitor struct {
	ex     *Extractor
	fa     *types.FileAnalysis
	src    []byte
	isInit bool
}

func (v *pyVisitor) walk(root *tree_sitter.Node) {
	walkTree(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			v.importStatement(n)
			return false
		case "import_from_statement":
			v.importFrom(n)
			return false
		case "function_definition":
			v.functionDef(n, nil)
			return true
		case "class_definition":
			v.classDef(n, nil)
			return true
		case "decorated_definition":
			v.decoratedDef(n)
			return false
		case "assignment":
			v.assignment(n)
			return true
		case "call":
			v.call(n)
			return true
		}
		return true
	})
}

// inFunctionScope reports whether an import is function-scoped (lazy).
func inFunctionScope(n *tree_sitter.Node) bool {
	return hasAncestorOfKind(n, "function_definition")
}

// inTypeCheckingBlock walks ancestors for `if TYPE_CHECKING:` guards.
func inTypeCheckingBlock(n *tree_sitter.Node, src []byte) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() != "if_statement" {
			continue
		}
		if cond := p.ChildByFieldName("condition"); cond != nil {
			if strings.Contains(text(cond, src), "TYPE_CHECKING") {
				return true
			}
		}
	}
	return false
}

// importStatement records `import a.b` / `import a.b as c`.
func (v *pyVisitor) importStatement(n *tree_sitter.Node) {
	eachChild(n, func(c *tree_sitter.Node) {
		var module, alias string
		switch c.Kind() {
		case "dotted_name":
			module = text(c, v.src)
		case "aliased_import":
			if nameNode := c.ChildByFieldName("name"); nameNode != nil {
				module = text(nameNode, v.src)
			}
			if aliasNode := c.ChildByFieldName("alias"); aliasNode != nil {
				alias = text(aliasNode, v.src)
			}
		default:
			return
		}
		if module == "" {
			return
		}

		entry := types.ImportEntry{
			Source:         module,
			Kind:           types.ImportStatic,
			Line:           lineOf(n),
			IsLazy:         inFunctionScope(n),
			IsTypeChecking: inTypeCheckingBlock(n, v.src),
			IsBare:         true,
		}
		if alias != "" {
			entry.Symbols = []types.ImportSymbol{{Name: module, Alias: alias}}
		}
		v.resolvePyEntry(&entry)
		v.fa.Imports = append(v.fa.Imports, entry)
	})
}

// importFrom records `from X import …`, including parenthesized blocks,
// star imports, and __init__.py re-export semantics.
func (v *pyVisitor) importFrom(n *tree_sitter.Node) {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	module := text(moduleNode, v.src)

	entry := types.ImportEntry{
		Source:         module,
		Kind:           types.ImportStatic,
		Line:           lineOf(n),
		IsLazy:         inFunctionScope(n),
		IsTypeChecking: inTypeCheckingBlock(n, v.src),
		IsBare:         !strings.HasPrefix(module, "."),
	}

	star := false
	eachChild(n, func(c *tree_sitter.Node) {
		if c.StartByte() == moduleNode.StartByte() {
			return
		}
		switch c.Kind() {
		case "wildcard_import":
			star = true
		case "dotted_name", "identifier":
			entry.Symbols = append(entry.Symbols, types.ImportSymbol{Name: text(c, v.src)})
		case "aliased_import":
			sym := types.ImportSymbol{}
			if nameNode := c.ChildByFieldName("name"); nameNode != nil {
				sym.Name = text(nameNode, v.src)
			}
			if aliasNode := c.ChildByFieldName("alias"); aliasNode != nil {
				sym.Alias = text(aliasNode, v.src)
			}
			if sym.Name != "" {
				entry.Symbols = append(entry.Symbols, sym)
			}
		}
	})
	if star {
		entry.Symbols = append(entry.Symbols, types.ImportSymbol{Name: "*"})
	}

	v.resolvePyEntry(&entry)
	v.fa.Imports = append(v.fa.Imports, entry)

	// A from-import at the top of __init__.py republishes names.
	if v.isInit && !entry.IsLazy && !entry.IsTypeChecking {
		re := types.ReexportEntry{
			Source:   module,
			Line:     lineOf(n),
			Resolved: entry.ResolvedPath,
		}
		if star {
			re.Kind = types.ReexportStar
		} else {
			re.Kind = types.ReexportNamed
			for _, sym := range entry.Symbols {
				exported := sym.Name
				if sym.Alias != "" {
					exported = sym.Alias
				}
				re.Names = append(re.Names, types.ReexportName{Original: sym.Name, Exported: exported})
			}
		}
		v.fa.Reexports = append(v.fa.Reexports, re)
		for _, pair := range re.Names {
			v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
				Name:       pair.Exported,
				Kind:       "reexport",
				ExportType: "named",
				Line:       lineOf(n),
			})
		}
	}
}

func (v *pyVisitor) resolvePyEntry(entry *types.ImportEntry) {
	if v.ex.resolver == nil {
		entry.Resolution = types.ResolutionUnknown
		return
	}
	res := v.ex.resolver.ResolvePython(entry.Source, v.fa.Path)
	entry.ResolvedPath = res.Path
	entry.Resolution = res.Resolution
}

// functionDef records a top-level def as an export. decorators come from
// the wrapping decorated_definition, when any.
func (v *pyVisitor) functionDef(n *tree_sitter.Node, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(nameNode, v.src)

	v.recordAnnotationUses(n)

	if !v.isTopLevel(n) {
		return
	}

	sym := types.ExportSymbol{
		Name:       name,
		Kind:       "function",
		ExportType: "named",
		Line:       lineOf(n),
		Params:     v.paramInfos(n),
	}
	v.fa.Exports = append(v.fa.Exports, sym)

	for _, dec := range decorators {
		v.applyDecorator(dec, name, lineOf(n))
	}
}

func (v *pyVisitor) classDef(n *tree_sitter.Node, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(nameNode, v.src)

	// Base classes are local uses (mixin/registration patterns).
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		eachChild(supers, func(s *tree_sitter.Node) {
			if s.Kind() == "identifier" {
				v.fa.AddLocalUse(text(s, v.src))
			}
		})
	}

	if !v.isTopLevel(n) {
		return
	}

	v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
		Name:       name,
		Kind:       "class",
		ExportType: "named",
		Line:       lineOf(n),
	})

	for _, dec := range decorators {
		v.applyDecorator(dec, name, lineOf(n))
	}
}

// decoratedDef dispatches a decorated def/class with its decorator texts.
func (v *pyVisitor) decoratedDef(n *tree_sitter.Node) {
	var decorators []string
	var def *tree_sitter.Node
	eachChild(n, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "decorator":
			decorators = append(decorators, text(c, v.src))
		case "function_definition", "class_definition":
			def = c
		}
	})
	if def == nil {
		return
	}

	// Decorated bodies still carry imports and calls.
	walkTree(def, func(inner *tree_sitter.Node) bool {
		switch inner.Kind() {
		case "import_statement":
			v.importStatement(inner)
			return false
		case "import_from_statement":
			v.importFrom(inner)
			return false
		case "call":
			v.call(inner)
		case "assignment":
			v.assignment(inner)
		}
		return true
	})

	if def.Kind() == "function_definition" {
		v.functionDef(def, decorators)
	} else {
		v.classDef(def, decorators)
	}
}

// applyDecorator interprets one decorator for routes, fixtures, and
// framework callbacks.
func (v *pyVisitor) applyDecorator(dec, defName string, line int) {
	trimmed := strings.TrimPrefix(dec, "@")
	head := trimmed
	var argText string
	if idx := strings.Index(trimmed, "("); idx >= 0 {
		head = trimmed[:idx]
		argText = trimmed[idx:]
	}
	last := head
	if idx := strings.LastIndex(head, "."); idx >= 0 {
		last = head[idx+1:]
	}

	switch {
	case last == "fixture":
		v.fa.PytestFixtures = append(v.fa.PytestFixtures, defName)
		v.fa.AddLocalUse(defName)
	case routeDecorators[last] != "":
		if p, ok := firstStringArg(argText); ok {
			v.fa.Routes = append(v.fa.Routes, types.RouteInfo{
				Method: routeDecorators[last],
				Path:   p,
				Line:   line,
			})
		}
		v.fa.AddLocalUse(defName)
	case last == "route":
		if p, ok := firstStringArg(argText); ok {
			method := "GET"
			if m := routeMethodsArg(argText); m != "" {
				method = m
			}
			v.fa.Routes = append(v.fa.Routes, types.RouteInfo{Method: method, Path: p, Line: line})
		}
		v.fa.AddLocalUse(defName)
	case callbackDecorators[last]:
		v.fa.AddLocalUse(defName)
	}
}

// firstStringArg pulls the first quoted argument out of a decorator's
// argument text.
func firstStringArg(argText string) (string, bool) {
	for _, q := range []byte{'"', '\''} {
		start := strings.IndexByte(argText, q)
		if start < 0 {
			continue
		}
		end := strings.IndexByte(argText[start+1:], q)
		if end < 0 {
			continue
		}
		return argText[start+1 : start+1+end], true
	}
	return "", false
}

// routeMethodsArg reads the first method of a methods=[…] keyword.
func routeMethodsArg(argText string) string {
	idx := strings.Index(argText, "methods")
	if idx < 0 {
		return ""
	}
	m, ok := firstStringArg(argText[idx:])
	if !ok {
		return ""
	}
	return strings.ToUpper(m)
}

// isTopLevel reports whether a definition sits directly in the module.
func (v *pyVisitor) isTopLevel(n *tree_sitter.Node) bool {
	p := n.Parent()
	if p != nil && p.Kind() == "decorated_definition" {
		p = p.Parent()
	}
	return p != nil && p.Kind() == "module"
}

// paramInfos reads a function's parameters with annotations and defaults.
func (v *pyVisitor) paramInfos(fn *tree_sitter.Node) []types.ParamInfo {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []types.ParamInfo
	eachChild(params, func(p *tree_sitter.Node) {
		switch p.Kind() {
		case "identifier":
			out = append(out, types.ParamInfo{Name: text(p, v.src)})
		case "typed_parameter":
			info := types.ParamInfo{}
			if c := p.NamedChild(0); c != nil {
				info.Name = text(c, v.src)
			}
			if tn := p.ChildByFieldName("type"); tn != nil {
				info.TypeAnnotation = text(tn, v.src)
			}
			out = append(out, info)
		case "default_parameter", "typed_default_parameter":
			info := types.ParamInfo{HasDefault: true}
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				info.Name = text(nameNode, v.src)
			}
			if tn := p.ChildByFieldName("type"); tn != nil {
				info.TypeAnnotation = text(tn, v.src)
			}
			out = append(out, info)
		}
	})
	return out
}

// recordAnnotationUses adds type-hint identifiers to local_uses so types
// referenced only in hints stay alive.
func (v *pyVisitor) recordAnnotationUses(fn *tree_sitter.Node) {
	record := func(n *tree_sitter.Node) {
		walkTree(n, func(t *tree_sitter.Node) bool {
			if t.Kind() == "identifier" {
				v.fa.AddLocalUse(text(t, v.src))
			}
			return true
		})
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		eachChild(params, func(p *tree_sitter.Node) {
			if tn := p.ChildByFieldName("type"); tn != nil {
				record(tn)
			}
		})
	}
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		record(ret)
	}
}

// assignment handles __all__, sys.modules injections, and module constant
// tracking.
func (v *pyVisitor) assignment(n *tree_sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil {
		return
	}

	switch left.Kind() {
	case "identifier":
		if text(left, v.src) == "__all__" && right != nil {
			v.recordAll(right)
		}
	case "subscript":
		// sys.modules["name"] = … fabricates an importable module.
		if val := left.ChildByFieldName("value"); val != nil && text(val, v.src) == "sys.modules" {
			if sub := left.ChildByFieldName("subscript"); sub != nil {
				v.fa.SysModulesInjections = append(v.fa.SysModulesInjections, unquote(text(sub, v.src)))
			}
		}
	}
}

// recordAll records `__all__ = […]` entries as the definitive public API.
func (v *pyVisitor) recordAll(right *tree_sitter.Node) {
	walkTree(right, func(t *tree_sitter.Node) bool {
		if t.Kind() == "string" {
			v.fa.Exports = append(v.fa.Exports, types.ExportSymbol{
				Name:       unquote(text(t, v.src)),
				Kind:       "__all__",
				ExportType: "named",
				Line:       lineOf(t),
			})
		}
		return true
	})
}

// call tracks dynamic imports, exec/eval templates, and bare-call uses.
func (v *pyVisitor) call(n *tree_sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	callee := text(fn, v.src)
	args := n.ChildByFieldName("arguments")

	switch callee {
	case "importlib.import_module", "__import__":
		// Recorded as dynamic_imports, never as an ImportEntry.
		if args != nil && args.NamedChildCount() > 0 {
			if arg := args.NamedChild(0); arg.Kind() == "string" {
				v.fa.DynamicImports = append(v.fa.DynamicImports, unquote(text(arg, v.src)))
			}
		}
		return
	case "exec", "eval", "compile":
		if args != nil && args.NamedChildCount() > 0 {
			if arg := args.NamedChild(0); arg != nil &&
				strings.HasPrefix(text(arg, v.src), "f") {
				v.fa.DynamicExecTemplates = append(v.fa.DynamicExecTemplates, text(arg, v.src))
			}
		}
		return
	}

	if fn.Kind() == "identifier" {
		v.fa.AddLocalUse(callee)
	} else if fn.Kind() == "attribute" {
		if obj := fn.ChildByFieldName("object"); obj != nil && obj.Kind() == "identifier" {
			v.fa.AddLocalUse(text(obj, v.src))
		}
	}
}

// detectRaceIndicators flags module-level mutables mutated inside async
// functions. Presence-only heuristic; commonly-racy patterns.
func (v *pyVisitor) detectRaceIndicators(root *tree_sitter.Node) {
	mutables := map[string]bool{}
	eachChild(root, func(n *tree_sitter.Node) {
		stmt := n
		if stmt.Kind() == "expression_statement" && stmt.NamedChildCount() > 0 {
			stmt = stmt.NamedChild(0)
		}
		if stmt.Kind() != "assignment" {
			return
		}
		left := stmt.ChildByFieldName("left")
		right := stmt.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "identifier" {
			return
		}
		switch right.Kind() {
		case "list", "dictionary", "set":
			mutables[text(left, v.src)] = true
		}
	})
	if len(mutables) == 0 {
		return
	}

	walkTree(root, func(n *tree_sitter.Node) bool {
		if n.Kind() != "function_definition" {
			return true
		}
		if !strings.HasPrefix(text(n, v.src), "async ") &&
			(n.Parent() == nil || !strings.HasPrefix(text(n.Parent(), v.src), "async ")) {
			return true
		}
		walkTree(n, func(inner *tree_sitter.Node) bool {
			if inner.Kind() != "call" {
				return true
			}
			fn := inner.ChildByFieldName("function")
			if fn == nil || fn.Kind() != "attribute" {
				return true
			}
			obj := fn.ChildByFieldName("object")
			attr := fn.ChildByFieldName("attribute")
			if obj == nil || attr == nil || obj.Kind() != "identifier" {
				return true
			}
			name := text(obj, v.src)
			method := text(attr, v.src)
			if mutables[name] {
				switch method {
				case "append", "add", "update", "extend", "pop", "remove", "clear":
					v.fa.PyRaceIndicators = append(v.fa.PyRaceIndicators,
						name+"."+method)
				}
			}
			return true
		})
		return false
	})
}
