package analyzer

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestExactTwinsSameAndCrossLanguage(t *testing.T) {
	a := fileWithExports("src/models/user.ts", types.LangTS, "User")
	b := fileWithExports("src/legacy/user.ts", types.LangTS, "User")
	r := &types.FileAnalysis{Path: "src-tauri/src/models.rs", Language: types.LangRust, LOC: 8,
		Exports: []types.ExportSymbol{{Name: "User", Kind: "struct", ExportType: "named", Line: 3}},
	}
	only := fileWithExports("src/single.ts", types.LangTS, "Lonely")
	snap := &types.Snapshot{Files: []*types.FileAnalysis{a, b, r, only}}

	report := FindTwins(snap, false)

	if len(report.Twins) != 1 {
		t.Fatalf("twins = %+v", report.Twins)
	}
	twin := report.Twins[0]
	if twin.Name != "User" || len(twin.Locations) != 3 {
		t.Errorf("twin = %+v", twin)
	}
	// A TS/Rust mix is cross-language (schema mirroring, usually
	// intentional).
	if twin.Kind != TwinCrossLanguage {
		t.Errorf("kind = %s, want CrossLanguage", twin.Kind)
	}
}

func TestShadowExports(t *testing.T) {
	used := fileWithExports("src/store/index.ts", types.LangTS, "createStore")
	dead := fileWithExports("src/old/store.ts", types.LangTS, "createStore")
	dead.LOC = 120
	consumer := &types.FileAnalysis{Path: "src/app.ts", Language: types.LangTS, LOC: 4,
		Imports: []types.ImportEntry{{
			Source:       "./store",
			Kind:         types.ImportStatic,
			ResolvedPath: "src/store/index.ts",
			Resolution:   types.ResolutionLocal,
			Symbols:      []types.ImportSymbol{{Name: "createStore"}},
		}},
	}
	snap := &types.Snapshot{Files: []*types.FileAnalysis{used, dead, consumer}}

	report := FindTwins(snap, false)
	if len(report.Shadows) != 1 {
		t.Fatalf("shadows = %+v", report.Shadows)
	}
	s := report.Shadows[0]
	if s.Name != "createStore" || s.CanonicalFile != "src/store/index.ts" {
		t.Errorf("shadow = %+v", s)
	}
	if len(s.DeadFiles) != 1 || s.DeadFiles[0] != "src/old/store.ts" || s.DeadLOC != 120 {
		t.Errorf("dead side = %+v", s)
	}
}

func TestDeadParrots(t *testing.T) {
	orphan := fileWithExports("src/orphan.ts", types.LangTS, "unused")
	used := fileWithExports("src/used.ts", types.LangTS, "helper")
	consumer := &types.FileAnalysis{Path: "src/app.ts", Language: types.LangTS, LOC: 2,
		Imports: []types.ImportEntry{{
			Source:       "./used",
			Kind:         types.ImportStatic,
			ResolvedPath: "src/used.ts",
			Resolution:   types.ResolutionLocal,
			Symbols:      []types.ImportSymbol{{Name: "helper"}},
		}},
	}
	snap := &types.Snapshot{Files: []*types.FileAnalysis{orphan, used, consumer}}

	report := FindTwins(snap, false)
	if len(report.Parrots) != 1 || report.Parrots[0].Symbol != "unused" {
		t.Errorf("parrots = %+v", report.Parrots)
	}
}
