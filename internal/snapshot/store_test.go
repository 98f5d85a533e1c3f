package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/loctree/loctree/internal/scanner"
	"github.com/loctree/loctree/pkg/types"
)

func sampleSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Metadata: types.SnapshotMetadata{
			SchemaVersion: scanner.SchemaVersion,
			Roots:         []string{"/repo"},
			Languages:     []types.Language{types.LangTS},
			FileCount:     2,
			ResolverConfig: types.ResolverConfig{
				TSBaseURL:   ".",
				TSPaths:     map[string][]string{"@core/*": {"src/core/*"}},
				PythonRoots: []string{"", "src"},
			},
		},
		Files: []*types.FileAnalysis{
			{Path: "src/b.ts", Language: types.LangTS, LOC: 3},
			{Path: "src/a.ts", Language: types.LangTS, LOC: 5,
				Imports: []types.ImportEntry{{
					Source: "./b", Kind: types.ImportStatic,
					ResolvedPath: "src/b.ts", Resolution: types.ResolutionLocal,
				}},
			},
		},
		Edges: []types.GraphEdge{
			{From: "src/a.ts", To: "src/b.ts", Label: types.EdgeImport},
		},
		ExportIndex: map[string][]string{"thing": {"src/b.ts"}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	original := sampleSnapshot()
	if err := Save(path, original); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("round-trip lost the snapshot")
	}

	j1, _ := json.Marshal(original)
	j2, _ := json.Marshal(loaded)
	if string(j1) != string(j2) {
		t.Errorf("round-trip drift:\n%s\nvs\n%s", j1, j2)
	}

	// Canonical ordering applied on save: files sorted by path.
	if loaded.Files[0].Path != "src/a.ts" {
		t.Errorf("files not canonically sorted: %s first", loaded.Files[0].Path)
	}
}

func TestLoadMissingIsAbsent(t *testing.T) {
	snap, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || snap != nil {
		t.Errorf("missing snapshot: snap=%v err=%v, want nil/nil", snap, err)
	}
}

func TestLoadCorruptIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap, err := Load(path)
	if err != nil || snap != nil {
		t.Errorf("corrupt snapshot: snap=%v err=%v, want nil/nil", snap, err)
	}
}

func TestLoadSchemaMismatchIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	stale := sampleSnapshot()
	stale.Metadata.SchemaVersion = "2"
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := Load(path)
	if err != nil || snap != nil {
		t.Errorf("schema mismatch: snap=%v err=%v, want nil/nil", snap, err)
	}
}

func TestContextRebuildsResolverWithoutFS(t *testing.T) {
	ctx := NewContext(sampleSnapshot())

	// The cached tsconfig paths answer alias queries with no tsconfig on
	// disk.
	res := ctx.Resolver.ResolveTS("@core/b", "src/a.ts")
	_ = res
	// @core/* maps to src/core/* which has no file; the relative form
	// resolves against the known file set.
	rel := ctx.Resolver.ResolveTS("./b", "src/a.ts")
	if rel.Path != "src/b.ts" {
		t.Errorf("snapshot-rebuilt resolver = %+v", rel)
	}
}

func TestMustLoadErrorsWhenAbsent(t *testing.T) {
	if _, err := MustLoad(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("MustLoad of missing snapshot must error")
	}
}
