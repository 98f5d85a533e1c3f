package extract

import (
	"testing"

	"github.com/loctree/loctree/internal/parser"
	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

func newTestExtractor(t *testing.T, files []string) *Extractor {
	t.Helper()
	p, err := parser.NewTreeSitterParser()
	if err != nil {
		t.Fatalf("create tree-sitter parser: %v", err)
	}
	t.Cleanup(p.Close)
	res := resolver.FromConfig(types.ResolverConfig{PythonRoots: []string{""}}, files)
	return New(p, res, Options{})
}

func TestTSImportsAndExports(t *testing.T) {
	ex := newTestExtractor(t, []string{"src/ComboBox.tsx", "src/app.ts"})

	src := `import { ComboBox as CB } from "./ComboBox";
import Default from "./ComboBox";
import type { Props } from "./ComboBox";
import "./side-effect.css";
import fs from "node:fs";

export const limit = 10;
export function render(box: Widget): Frame { return frame(box); }
export class Registry {}
export interface User {}
export type ID = string;
export enum Mode { A, B }
export default render;
`
	fa := ex.Extract([]byte(src), "src/app.ts", types.LangTS)

	if len(fa.Imports) != 5 {
		t.Fatalf("imports = %d, want 5", len(fa.Imports))
	}

	first := fa.Imports[0]
	if first.ResolvedPath != "src/ComboBox.tsx" || first.Resolution != types.ResolutionLocal {
		t.Errorf("cross-extension resolution failed: %+v", first)
	}
	if len(first.Symbols) != 1 || first.Symbols[0].Name != "ComboBox" || first.Symbols[0].Alias != "CB" {
		t.Errorf("aliased symbol = %+v", first.Symbols)
	}

	def := fa.Imports[1]
	if len(def.Symbols) != 1 || !def.Symbols[0].IsDefault || def.Symbols[0].Name != "default" {
		t.Errorf("default import should normalize to name \"default\": %+v", def.Symbols)
	}

	if fa.Imports[2].Kind != types.ImportType {
		t.Errorf("type import kind = %s", fa.Imports[2].Kind)
	}
	if fa.Imports[3].Kind != types.ImportSideEffect {
		t.Errorf("side-effect import kind = %s", fa.Imports[3].Kind)
	}
	if fa.Imports[4].Resolution != types.ResolutionStdlib {
		t.Errorf("node:fs resolution = %s", fa.Imports[4].Resolution)
	}

	wantKinds := map[string]string{
		"limit": "const", "render": "function", "Registry": "class",
		"User": "interface", "ID": "type", "Mode": "enum", "default": "default",
	}
	got := map[string]string{}
	for _, e := range fa.Exports {
		got[e.Name] = e.Kind
	}
	for name, kind := range wantKinds {
		if got[name] != kind {
			t.Errorf("export %s kind = %q, want %q", name, got[name], kind)
		}
	}

	// render's signature should record Widget and Frame.
	seen := map[string]bool{}
	for _, su := range fa.SignatureUses {
		seen[su.Position+":"+su.TypeName] = true
	}
	if !seen["parameter:Widget"] || !seen["return:Frame"] {
		t.Errorf("signature uses = %+v", fa.SignatureUses)
	}
}

func TestTSGenericArrowNotJSX(t *testing.T) {
	ex := newTestExtractor(t, nil)
	// In a .ts file <T> must parse as a type parameter, not JSX.
	src := "export const fn = <T>(x: T): T => x;\n"
	fa := ex.Extract([]byte(src), "src/generic.ts", types.LangTS)
	if len(fa.Exports) != 1 || fa.Exports[0].Name != "fn" {
		t.Fatalf("generic arrow export lost: %+v", fa.Exports)
	}
}

func TestTSReexports(t *testing.T) {
	ex := newTestExtractor(t, []string{"easing/index.js", "easing/index.d.ts"})

	src := `export { linear, backIn as easeBackIn } from "./index.js";
export * from "./extras";
`
	fa := ex.Extract([]byte(src), "easing/index.d.ts", types.LangTS)

	if len(fa.Reexports) != 2 {
		t.Fatalf("reexports = %d, want 2", len(fa.Reexports))
	}
	named := fa.Reexports[0]
	if named.Kind != types.ReexportNamed || named.Resolved != "easing/index.js" {
		t.Errorf("named reexport = %+v", named)
	}
	if len(named.Names) != 2 || named.Names[1].Original != "backIn" || named.Names[1].Exported != "easeBackIn" {
		t.Errorf("reexport pairs = %+v", named.Names)
	}
	if fa.Reexports[1].Kind != types.ReexportStar {
		t.Errorf("star reexport = %+v", fa.Reexports[1])
	}

	// Re-exported names appear as exports of kind reexport, never as
	// original definitions.
	for _, e := range fa.Exports {
		if e.Kind != "reexport" {
			t.Errorf("reexport binding has kind %q", e.Kind)
		}
	}
}

func TestTSDynamicImport(t *testing.T) {
	ex := newTestExtractor(t, []string{"src/feature.ts"})
	src := `async function load() {
	const mod = await import("./feature");
	const missing = await import("./nope");
}
`
	fa := ex.Extract([]byte(src), "src/app.ts", types.LangTS)

	if len(fa.DynamicImports) != 2 {
		t.Fatalf("dynamic imports = %v", fa.DynamicImports)
	}
	if fa.Imports[0].Kind != types.ImportDynamic || fa.Imports[0].ResolvedPath != "src/feature.ts" {
		t.Errorf("resolved dynamic = %+v", fa.Imports[0])
	}
	// Unresolvable dynamic import is a fact, not a failure.
	if fa.Imports[1].ResolvedPath != "" || fa.Imports[1].Resolution != types.ResolutionDynamic {
		t.Errorf("unresolved dynamic = %+v", fa.Imports[1])
	}
}

func TestTSCommandDetection(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `import { invoke } from "@tauri-apps/api/core";

async function run() {
	await invoke("save_user", { userId: 1 });
	await invoke<string>("load_state");
	document.execCommand("copy");
	executeCommand("build");
	await invoke("npm");
	await invoke(dynamicName);
}
`
	fa := ex.Extract([]byte(src), "src/app.ts", types.LangTS)

	if len(fa.CommandCalls) != 2 {
		t.Fatalf("command calls = %+v", fa.CommandCalls)
	}
	if fa.CommandCalls[0].Name != "save_user" {
		t.Errorf("first command = %+v", fa.CommandCalls[0])
	}
	if fa.CommandCalls[1].GenericType != "string" {
		t.Errorf("generic type = %+v", fa.CommandCalls[1])
	}

	// snake_case command with camelCase payload key drifts.
	if len(fa.CasingDrifts) != 1 || fa.CasingDrifts[0].Key != "userId" {
		t.Errorf("casing drifts = %+v", fa.CasingDrifts)
	}
}

func TestTSEventConstResolution(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `const SAVED = "doc-saved";
import { emit, listen } from "@tauri-apps/api/event";

async function wire() {
	await emit(SAVED, { ok: true });
	await listen("doc-saved", () => {});
}
`
	fa := ex.Extract([]byte(src), "src/events.ts", types.LangTS)

	if len(fa.EventEmits) != 1 || fa.EventEmits[0].Name != "doc-saved" {
		t.Fatalf("emits = %+v", fa.EventEmits)
	}
	if fa.EventEmits[0].RawName != "SAVED" || !fa.EventEmits[0].Awaited {
		t.Errorf("emit detail = %+v", fa.EventEmits[0])
	}
	if len(fa.EventListens) != 1 || fa.EventListens[0].Name != "doc-saved" {
		t.Errorf("listens = %+v", fa.EventListens)
	}
}

func TestTSLocalUsesAndWeakCollections(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `const registry = new WeakMap();
class Child extends Base {}
function helper() {}
helper();
`
	fa := ex.Extract([]byte(src), "src/misc.ts", types.LangTS)
	if !fa.HasWeakCollections {
		t.Error("WeakMap not detected")
	}
	if fa.LocalUses["helper"] == 0 || fa.LocalUses["Base"] == 0 {
		t.Errorf("local uses = %+v", fa.LocalUses)
	}
}

func TestEmptyFileBoundary(t *testing.T) {
	ex := newTestExtractor(t, nil)
	fa := ex.Extract(nil, "src/empty.ts", types.LangTS)
	if fa.LOC != 0 || len(fa.Imports) != 0 || len(fa.Exports) != 0 {
		t.Errorf("empty file analysis = %+v", fa)
	}
	if fa.Path != "src/empty.ts" || fa.Language != types.LangTS {
		t.Errorf("metadata not set: %+v", fa)
	}
}
