package extract

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestRustUseDeclarations(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `use crate::ui::constants::MENU_GAP;
use super::store::{Store, save};
use self::helpers::*;
use std::collections::{HashMap, HashSet};
use serde::{Serialize, Deserialize};
`
	fa := ex.Extract([]byte(src), "src/main.rs", types.LangRust)

	if len(fa.Imports) != 5 {
		t.Fatalf("imports = %d, want 5", len(fa.Imports))
	}

	crate := fa.Imports[0]
	if !crate.IsCrateRelative || crate.RawPath != "crate::ui::constants::MENU_GAP" {
		t.Errorf("crate import = %+v", crate)
	}
	if len(crate.Symbols) != 1 || crate.Symbols[0].Name != "MENU_GAP" {
		t.Errorf("crate symbols = %+v", crate.Symbols)
	}

	sup := fa.Imports[1]
	if !sup.IsSuperRelative || len(sup.Symbols) != 2 {
		t.Errorf("super import = %+v", sup)
	}

	selfImp := fa.Imports[2]
	if !selfImp.IsSelfRelative {
		t.Errorf("self import = %+v", selfImp)
	}
	// Wildcards produce no symbols.
	if len(selfImp.Symbols) != 0 {
		t.Errorf("wildcard symbols = %+v", selfImp.Symbols)
	}

	std := fa.Imports[3]
	if std.IsCrateRelative || std.IsSuperRelative || std.IsSelfRelative {
		t.Errorf("std flagged relative: %+v", std)
	}
}

func TestExpandUseTree(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"crate::a::b::Name", []string{"Name"}},
		{"crate::a::{b::C, d}", []string{"C", "d"}},
		{"crate::{m::{x, y}, n}", []string{"x", "y", "n"}},
		{"std::io::Write as W", []string{"W"}},
	}
	for _, tt := range tests {
		got := expandUseTree(tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("expandUseTree(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("expandUseTree(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRustExportsAndCommands(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `pub const MENU_GAP: f32 = 4.0;

pub struct Window {
    pub width: u32,
}

#[derive(Serialize, Deserialize)]
pub struct Payload {
    id: u64,
}

#[tauri::command]
pub fn save_user(payload: Payload) -> Result<(), String> {
    persist(payload)
}

#[tauri::command(rename = "loadState")]
fn load_state() {}

fn private_helper() {}

fn main() {
    tauri::Builder::default()
        .invoke_handler(tauri::generate_handler![save_user, load_state])
        .run(tauri::generate_context!())
        .unwrap();
}
`
	fa := ex.Extract([]byte(src), "src/main.rs", types.LangRust)

	exports := map[string]types.ExportSymbol{}
	for _, e := range fa.Exports {
		exports[e.Name] = e
	}
	if exports["MENU_GAP"].Kind != "const" {
		t.Errorf("MENU_GAP = %+v", exports["MENU_GAP"])
	}
	if exports["Window"].Kind != "struct" {
		t.Errorf("Window = %+v", exports["Window"])
	}
	if _, ok := exports["private_helper"]; ok {
		t.Error("private fn exported")
	}
	if d := exports["Payload"].Derives; len(d) != 2 || d[0] != "serialize" {
		t.Errorf("derives = %+v", d)
	}

	if len(fa.CommandHandlers) != 2 {
		t.Fatalf("handlers = %+v", fa.CommandHandlers)
	}
	if fa.CommandHandlers[0].Name != "save_user" {
		t.Errorf("handler 0 = %+v", fa.CommandHandlers[0])
	}
	if fa.CommandHandlers[1].ExposedName != "loadState" {
		t.Errorf("rename = %+v", fa.CommandHandlers[1])
	}

	regs := map[string]bool{}
	for _, r := range fa.TauriRegisteredHandlers {
		regs[r] = true
	}
	if !regs["save_user"] || !regs["load_state"] {
		t.Errorf("registered handlers = %+v", fa.TauriRegisteredHandlers)
	}

	// Signature types flow into local uses.
	if fa.LocalUses["Payload"] == 0 {
		t.Errorf("signature type not in local uses: %+v", fa.LocalUses)
	}
}

func TestRustCustomCommandMacro(t *testing.T) {
	p := newTestExtractor(t, nil).parsers
	det := NewCommandDetectionConfig(nil, nil, nil, []string{"specta::specta"})
	ex := New(p, nil, Options{Detection: det})

	src := `#[specta::specta]
pub fn typed_cmd() {}
`
	fa := ex.Extract([]byte(src), "src/cmd.rs", types.LangRust)
	if len(fa.CommandHandlers) != 1 || fa.CommandHandlers[0].Name != "typed_cmd" {
		t.Errorf("custom macro handlers = %+v", fa.CommandHandlers)
	}
}

func TestRustQualifiedCalls(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `fn run() {
    helpers::render::draw_frame();
    plain_call();
}
`
	fa := ex.Extract([]byte(src), "src/app.rs", types.LangRust)

	if len(fa.RustQualifiedCalls) != 1 || fa.RustQualifiedCalls[0] != "draw_frame" {
		t.Errorf("qualified calls = %+v", fa.RustQualifiedCalls)
	}
	if fa.LocalUses["plain_call"] == 0 {
		t.Errorf("bare call missing from local uses: %+v", fa.LocalUses)
	}
}
