package analyzer

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func snapWithEdges(files []string, edges []types.GraphEdge) *types.Snapshot {
	snap := &types.Snapshot{Edges: edges}
	for _, f := range files {
		snap.Files = append(snap.Files, &types.FileAnalysis{Path: f})
	}
	return snap
}

func TestLazyCycleClassification(t *testing.T) {
	snap := snapWithEdges(
		[]string{"a.ts", "b.ts"},
		[]types.GraphEdge{
			{From: "a.ts", To: "b.ts", Label: types.EdgeImport},
			{From: "b.ts", To: "a.ts", Label: types.EdgeDynamicImport},
		},
	)

	report := FindCycles(snap)

	if len(report.StrictCycles) != 0 {
		t.Errorf("strict cycles = %+v, want none", report.StrictCycles)
	}
	if len(report.LazyCycles) != 1 {
		t.Fatalf("lazy cycles = %+v, want 1", report.LazyCycles)
	}
	got := report.LazyCycles[0].Vertices
	want := []string{"a.ts", "b.ts", "a.ts"}
	if len(got) != len(want) {
		t.Fatalf("cycle = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", got, want)
		}
	}
	if report.HasBreaking() {
		t.Error("lazy-only report must contain no Breaking cycle")
	}
	if report.LazyCycles[0].Class == CycleBreaking {
		t.Errorf("lazy cycle classified Breaking")
	}
}

func TestStrictCycleBreaking(t *testing.T) {
	snap := snapWithEdges(
		[]string{"a.ts", "b.ts", "c.ts"},
		[]types.GraphEdge{
			{From: "a.ts", To: "b.ts", Label: types.EdgeImport},
			{From: "b.ts", To: "c.ts", Label: types.EdgeImport},
			{From: "c.ts", To: "a.ts", Label: types.EdgeImport},
		},
	)

	report := FindCycles(snap)
	if len(report.StrictCycles) != 1 {
		t.Fatalf("strict cycles = %+v", report.StrictCycles)
	}
	if report.StrictCycles[0].Class != CycleBreaking {
		t.Errorf("class = %s, want Breaking", report.StrictCycles[0].Class)
	}
	if !report.HasBreaking() {
		t.Error("HasBreaking = false")
	}
	// Rotation starts at the lexicographically smallest vertex.
	if report.StrictCycles[0].Vertices[0] != "a.ts" {
		t.Errorf("rotation = %v", report.StrictCycles[0].Vertices)
	}
}

func TestReexportCycleStructural(t *testing.T) {
	snap := snapWithEdges(
		[]string{"index.ts", "impl.ts"},
		[]types.GraphEdge{
			{From: "index.ts", To: "impl.ts", Label: types.EdgeReexport},
			{From: "impl.ts", To: "index.ts", Label: types.EdgeImport},
		},
	)

	report := FindCycles(snap)
	if len(report.StrictCycles) != 1 {
		t.Fatalf("strict cycles = %+v", report.StrictCycles)
	}
	if report.StrictCycles[0].Class != CycleStructural {
		t.Errorf("class = %s, want Structural", report.StrictCycles[0].Class)
	}
}

func TestTypeImportEdgesCarryNoCycle(t *testing.T) {
	snap := snapWithEdges(
		[]string{"a.ts", "b.ts"},
		[]types.GraphEdge{
			{From: "a.ts", To: "b.ts", Label: types.EdgeImport},
			{From: "b.ts", To: "a.ts", Label: types.EdgeTypeImport},
		},
	)

	report := FindCycles(snap)
	if len(report.StrictCycles) != 0 || len(report.LazyCycles) != 0 {
		t.Errorf("type imports formed a cycle: %+v", report)
	}
}

func TestDiamondDependency(t *testing.T) {
	// Two distinct cycles sharing hub.ts; a reexport edge keeps them from
	// being Breaking.
	snap := snapWithEdges(
		[]string{"hub.ts", "a.ts", "b.ts"},
		[]types.GraphEdge{
			{From: "hub.ts", To: "a.ts", Label: types.EdgeImport},
			{From: "a.ts", To: "hub.ts", Label: types.EdgeReexport},
			{From: "hub.ts", To: "b.ts", Label: types.EdgeReexport},
			{From: "b.ts", To: "hub.ts", Label: types.EdgeImport},
		},
	)

	report := FindCycles(snap)
	if len(report.StrictCycles) < 2 {
		t.Fatalf("strict cycles = %+v", report.StrictCycles)
	}
	for _, c := range report.StrictCycles {
		if len(c.Vertices) == 3 && c.Class != CycleDiamondDependency {
			t.Errorf("shared-vertex cycle class = %s, want DiamondDependency", c.Class)
		}
	}
}

func TestCycleEnumerationBound(t *testing.T) {
	// A dense SCC with far more than 64 elementary cycles.
	var files []string
	var edges []types.GraphEdge
	names := []string{}
	for i := 0; i < 10; i++ {
		names = append(names, string(rune('a'+i))+".ts")
		files = append(files, names[i])
	}
	for i := range names {
		for j := range names {
			if i != j {
				edges = append(edges, types.GraphEdge{From: names[i], To: names[j], Label: types.EdgeImport})
			}
		}
	}

	report := FindCycles(snapWithEdges(files, edges))
	if len(report.StrictCycles) > maxCyclesPerSCC {
		t.Errorf("enumerated %d cycles, bound is %d", len(report.StrictCycles), maxCyclesPerSCC)
	}
	if report.TruncatedSCCs != 1 {
		t.Errorf("truncated SCCs = %d, want 1", report.TruncatedSCCs)
	}
}
