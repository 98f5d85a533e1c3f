package analyzer

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/loctree/loctree/pkg/types"
)

// helperDirMarkers are directories whose exports are tooling, not API.
var helperDirMarkers = []string{
	"scripts/", "tools/", "helpers/", "docs/", "bin/",
}

// exampleDirMarkers are always exempt from dead detection.
var exampleDirMarkers = []string{
	"examples/", "example/", "demo/", "demos/", "samples/",
}

// svelteAPIMethods are component methods conventionally called through
// bind:this, invisible to import tracking.
var svelteAPIMethods = map[string]bool{
	"show": true, "hide": true, "open": true, "close": true, "toggle": true,
	"dismiss": true, "focus": true, "blur": true, "select": true,
	"selectAll": true, "clear": true, "reset": true, "validate": true,
	"submit": true, "getText": true, "setText": true, "getValue": true,
	"setValue": true, "getContent": true, "setContent": true,
	"insertText": true, "replaceText": true, "scrollTo": true,
	"scrollToTop": true, "scrollToBottom": true, "scrollIntoView": true,
	"play": true, "pause": true, "stop": true, "restart": true,
	"animate": true, "enable": true, "disable": true, "activate": true,
	"deactivate": true, "expand": true, "collapse": true, "init": true,
	"destroy": true, "refresh": true, "update": true, "reload": true,
	"imports": true, "exports": true, "getters": true, "state": true,
	"values": true,
}

// svelteAPIPrefixes is the prefix grammar for the same convention: prefix
// followed by an uppercase letter (scrollToElement, setTheme, isActive…).
var svelteAPIPrefixes = []string{
	"scroll", "get", "set", "on", "handle", "apply", "is", "has", "can",
	"should", "do", "trigger", "emit", "fire", "dispatch", "notify",
	"load", "fetch", "save", "delete", "add", "remove", "insert", "append",
	"prepend", "move", "swap", "sort", "filter", "find", "search", "check",
	"verify", "compute", "calculate", "render", "draw", "create", "update",
	"edit", "reset", "clear", "refresh", "submit", "show", "hide", "open",
	"close", "toggle", "select", "click", "press", "validate", "sanitize",
	"normalize", "format", "parse", "serialize", "deserialize",
}

// jsxRuntimeExports are consumed by compilers configured via tsconfig, not
// by imports.
var jsxRuntimeExports = map[string]bool{
	"jsx": true, "jsxs": true, "jsxDEV": true, "jsxsDEV": true,
	"Fragment": true, "VoidComponent": true, "Component": true,
}

// sveltekitMagicExports are framework entry points invoked by the router.
var sveltekitMagicExports = map[string]bool{
	"load": true, "actions": true, "prerender": true, "ssr": true,
	"csr": true, "trailingSlash": true, "entries": true, "config": true,
	"handle": true, "handleError": true, "handleFetch": true, "reroute": true,
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
	"OPTIONS": true, "HEAD": true, "fallback": true, "match": true,
}

// rustSkipDeriveTokens suppress exports whose derive list wires them into
// serde or clap at a distance.
var rustSkipDeriveTokens = map[string]bool{
	"serialize": true, "deserialize": true, "parser": true, "args": true,
	"valueenum": true, "subcommand": true, "fromargmatches": true,
}

// rustSkipNameSuffixes are request/response/CLI shapes instantiated by
// frameworks.
var rustSkipNameSuffixes = []string{"Args", "Command", "Response", "Request"}

// IsSvelteComponentAPI reports whether an export of a Svelte module looks
// like a bind:this component method.
func IsSvelteComponentAPI(filePath, exportName string) bool {
	if !strings.HasSuffix(filePath, ".svelte") && !strings.HasSuffix(filePath, ".svelte.ts") {
		return false
	}
	if svelteAPIMethods[exportName] {
		return true
	}
	for _, prefix := range svelteAPIPrefixes {
		if strings.HasPrefix(exportName, prefix) && len(exportName) > len(prefix) {
			c := exportName[len(prefix)]
			if c >= 'A' && c <= 'Z' {
				return true
			}
		}
	}
	return false
}

// skipFile applies the per-file rules: a true result exempts every export
// in the file.
func skipFile(fa *types.FileAnalysis, opts DeadExportOptions) (string, bool) {
	p := fa.Path

	// Go package-level use tracking is not yet reliable across packages;
	// the Go path is off unless the caller opts into the experimental
	// directory-pooled mode.
	if fa.Language == types.LangGo && !opts.IncludeGo {
		return "go files excluded", true
	}

	if strings.Contains(p, "jsx-runtime") || strings.Contains(p, "jsx_runtime") ||
		strings.Contains(p, "jsx-dev-runtime") {
		return "jsx runtime module", true
	}

	if fa.IsTest && !opts.IncludeTests {
		return "test file", true
	}

	if fa.IsGenerated || strings.HasSuffix(p, ".d.ts") ||
		strings.Contains(p, ".svelte-kit/") || isConfigFile(p) {
		return "generated or declaration artifact", true
	}

	if isFrameworkEntry(p) {
		return "framework entry convention", true
	}

	if isLibraryBarrel(p) {
		return "library barrel entry", true
	}

	for _, marker := range exampleDirMarkers {
		if strings.Contains(p, "/"+marker) || strings.HasPrefix(p, marker) {
			return "example directory", true
		}
	}
	if opts.LibraryMode {
		for _, g := range opts.ExampleGlobs {
			if ok, _ := doublestar.Match(g, p); ok {
				return "example glob (library mode)", true
			}
		}
	}

	if !opts.IncludeHelpers {
		for _, marker := range helperDirMarkers {
			if strings.Contains(p, "/"+marker) || strings.HasPrefix(p, marker) {
				return "helper directory", true
			}
		}
	}

	if fa.Language == types.LangRust {
		base := path.Base(p)
		if base == "lib.rs" || base == "main.rs" {
			return "rust crate entry", true
		}
		if isRustConstTable(fa) {
			return "rust const table", true
		}
	}

	if fa.Language == types.LangPython && path.Base(p) == "conftest.py" {
		return "pytest conftest", true
	}

	return "", false
}

func isConfigFile(p string) bool {
	base := path.Base(p)
	return strings.HasSuffix(base, ".config.ts") || strings.HasSuffix(base, ".config.js")
}

// isFrameworkEntry covers SvelteKit and Next.js routing conventions.
func isFrameworkEntry(p string) bool {
	base := path.Base(p)
	if strings.HasPrefix(base, "+page.") || strings.HasPrefix(base, "+layout.") ||
		strings.HasPrefix(base, "+server.") || strings.HasPrefix(base, "+error.") ||
		strings.HasPrefix(base, "hooks.server.") || strings.HasPrefix(base, "hooks.client.") {
		return true
	}
	switch base {
	case "page.tsx", "layout.tsx", "route.ts", "middleware.ts", "loading.tsx",
		"error.tsx", "not-found.tsx":
		return true
	}
	return false
}

// isLibraryBarrel exempts index/mod entries under package directories.
func isLibraryBarrel(p string) bool {
	if !strings.Contains(p, "/packages/") && !strings.Contains(p, "/libs/") &&
		!strings.Contains(p, "/library/") &&
		!strings.HasPrefix(p, "packages/") && !strings.HasPrefix(p, "libs/") &&
		!strings.HasPrefix(p, "library/") {
		return false
	}
	base := path.Base(p)
	return strings.HasPrefix(base, "index.") || base == "mod.rs" || base == "lib.rs"
}

// isRustConstTable detects lookup-table modules: many pub consts, mostly
// SHOUTING_CASE.
func isRustConstTable(fa *types.FileAnalysis) bool {
	consts, shouting := 0, 0
	for _, e := range fa.Exports {
		if e.Kind != "const" {
			continue
		}
		consts++
		if e.Name == strings.ToUpper(e.Name) {
			shouting++
		}
	}
	return consts >= 8 && shouting*4 >= consts*3
}

// skipExport applies the per-export rules.
func skipExport(fa *types.FileAnalysis, e types.ExportSymbol, opts DeadExportOptions) (string, bool) {
	if opts.HighConfidence && e.ExportType == "default" {
		return "default export (high-confidence mode)", true
	}

	switch fa.Language {
	case types.LangRust:
		for _, d := range e.Derives {
			if rustSkipDeriveTokens[d] {
				return "derive wires it externally (" + d + ")", true
			}
		}
		for _, suffix := range rustSkipNameSuffixes {
			if strings.HasSuffix(e.Name, suffix) {
				return "framework-shaped name suffix " + suffix, true
			}
		}

	case types.LangPython:
		if e.Name == "WorkerSettings" || e.Name == "__version__" {
			return "python framework convention", true
		}
		if strings.HasPrefix(e.Name, "__") && strings.HasSuffix(e.Name, "__") {
			return "dunder", true
		}
		if e.Kind == "class" && strings.HasSuffix(e.Name, "Mixin") {
			return "mixin class", true
		}
		if inAll(fa, e.Name) && (opts.PythonLibraryMode || isStdlibLayout(fa.Path)) {
			return "__all__ public API (library mode)", true
		}
		if e.Name == strings.ToUpper(e.Name) && isStdlibLayout(fa.Path) {
			return "stdlib constant", true
		}

	case types.LangTS, types.LangTSX, types.LangJS, types.LangJSX,
		types.LangSvelte, types.LangVue:
		if jsxRuntimeExports[e.Name] {
			return "jsx runtime export", true
		}
		if sveltekitMagicExports[e.Name] && isRouteLike(fa.Path) {
			return "framework magic export", true
		}
		if e.ExportType == "default" && isNextEntry(fa.Path) {
			return "next.js entry default", true
		}
	}

	return "", false
}

func inAll(fa *types.FileAnalysis, name string) bool {
	for _, e := range fa.Exports {
		if e.Kind == "__all__" && e.Name == name {
			return true
		}
	}
	return false
}

// isStdlibLayout recognizes a CPython-style Lib/ tree.
func isStdlibLayout(p string) bool {
	return strings.HasPrefix(p, "Lib/") || strings.Contains(p, "/Lib/")
}

func isRouteLike(p string) bool {
	base := path.Base(p)
	return strings.HasPrefix(base, "+") || strings.Contains(p, "/routes/") ||
		strings.Contains(p, "/app/")
}

func isNextEntry(p string) bool {
	base := path.Base(p)
	return base == "page.tsx" || base == "layout.tsx"
}
