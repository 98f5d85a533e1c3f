package analyzer

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestOpaquePassthrough(t *testing.T) {
	api := &types.FileAnalysis{Path: "src/api.ts", Language: types.LangTS, LOC: 20,
		Exports: []types.ExportSymbol{
			{Name: "Session", Kind: "interface", ExportType: "named", Line: 1},
			{Name: "Visible", Kind: "interface", ExportType: "named", Line: 2},
			{Name: "openSession", Kind: "function", ExportType: "named", Line: 5},
		},
		SignatureUses: []types.SignatureUse{
			{Function: "openSession", Position: "return", TypeName: "Session", Line: 5},
		},
	}
	consumer := &types.FileAnalysis{Path: "src/app.ts", Language: types.LangTS, LOC: 5,
		Imports: []types.ImportEntry{{
			Source:       "./api",
			Kind:         types.ImportStatic,
			ResolvedPath: "src/api.ts",
			Resolution:   types.ResolutionLocal,
			Symbols: []types.ImportSymbol{
				{Name: "openSession"},
				{Name: "Visible"},
			},
		}},
	}
	snap := &types.Snapshot{Files: []*types.FileAnalysis{api, consumer}}

	opaque := FindOpaquePassthroughs(snap)
	if len(opaque) != 1 {
		t.Fatalf("opaque = %+v", opaque)
	}
	o := opaque[0]
	if o.TypeName != "Session" || o.File != "src/api.ts" {
		t.Errorf("opaque = %+v", o)
	}
	if len(o.Carriers) != 1 || o.Carriers[0] != "openSession" {
		t.Errorf("carriers = %+v", o.Carriers)
	}
}

func TestOpaqueSkipsNamedImports(t *testing.T) {
	// A type imported by name anywhere is not opaque, even when it also
	// rides signatures.
	api := &types.FileAnalysis{Path: "src/api.ts", Language: types.LangTS, LOC: 10,
		Exports: []types.ExportSymbol{
			{Name: "Session", Kind: "interface", ExportType: "named", Line: 1},
			{Name: "openSession", Kind: "function", ExportType: "named", Line: 3},
		},
		SignatureUses: []types.SignatureUse{
			{Function: "openSession", Position: "return", TypeName: "Session", Line: 3},
		},
	}
	consumer := &types.FileAnalysis{Path: "src/app.ts", Language: types.LangTS, LOC: 4,
		Imports: []types.ImportEntry{{
			Source:       "./api",
			Kind:         types.ImportStatic,
			ResolvedPath: "src/api.ts",
			Resolution:   types.ResolutionLocal,
			Symbols: []types.ImportSymbol{
				{Name: "openSession"},
				{Name: "Session"},
			},
		}},
	}
	snap := &types.Snapshot{Files: []*types.FileAnalysis{api, consumer}}

	if opaque := FindOpaquePassthroughs(snap); len(opaque) != 0 {
		t.Errorf("named-imported type flagged opaque: %+v", opaque)
	}
}
