package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loctree/loctree/internal/discovery"
	"github.com/loctree/loctree/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func fixtureRepo(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, root, "src/ComboBox.tsx", "export function ComboBox() {}\n")
	writeFile(t, root, "src/app.js", "import { ComboBox } from \"./ComboBox\";\nComboBox();\n")
	writeFile(t, root, "src/widgets/index.ts", "export { ComboBox } from \"../ComboBox\";\n")
	writeFile(t, root, "src/orphan.ts", "export const lonely = 1;\n")
	return root
}

func TestScanBuildsSnapshot(t *testing.T) {
	root := fixtureRepo(t)

	snap, err := Scan(Options{Root: root, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}

	if snap.Metadata.SchemaVersion != SchemaVersion {
		t.Errorf("schema = %q", snap.Metadata.SchemaVersion)
	}
	if snap.Metadata.FileCount != 4 {
		t.Errorf("file count = %d, want 4", snap.Metadata.FileCount)
	}

	// Edge invariant: static edges land on snapshot files.
	known := map[string]bool{}
	for _, f := range snap.Files {
		known[f.Path] = true
	}
	foundImport := false
	for _, e := range snap.Edges {
		if !known[e.From] {
			t.Errorf("edge from unknown file: %+v", e)
		}
		if e.Label != types.EdgeDynamicImport && !known[e.To] {
			t.Errorf("static edge to unknown file: %+v", e)
		}
		if e.From == "src/app.js" && e.To == "src/ComboBox.tsx" && e.Label == types.EdgeImport {
			foundImport = true
		}
	}
	if !foundImport {
		t.Errorf("cross-extension import edge missing: %+v", snap.Edges)
	}

	// Export index skips re-export bindings.
	if files := snap.ExportIndex["ComboBox"]; len(files) != 1 || files[0] != "src/ComboBox.tsx" {
		t.Errorf("export index = %+v", snap.ExportIndex["ComboBox"])
	}

	// The widgets barrel is derived.
	if len(snap.Barrels) != 1 || snap.Barrels[0].Path != "src/widgets/index.ts" {
		t.Errorf("barrels = %+v", snap.Barrels)
	}
	if snap.Barrels[0].Mixed {
		t.Errorf("pure barrel marked mixed: %+v", snap.Barrels[0])
	}
}

func TestScanDeterminism(t *testing.T) {
	root := fixtureRepo(t)

	s1, err := Scan(Options{Root: root, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Scan(Options{Root: root, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}
	s1.Metadata.ScanDurationMS = 0
	s2.Metadata.ScanDurationMS = 0

	j1, _ := json.Marshal(s1)
	j2, _ := json.Marshal(s2)
	if string(j1) != string(j2) {
		t.Error("two scans of an unchanged tree are not byte-identical")
	}
}

func TestIncrementalReuse(t *testing.T) {
	root := fixtureRepo(t)

	first, err := Scan(Options{Root: root, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}

	// Unchanged rescan reuses every FileAnalysis verbatim.
	second, err := Scan(Options{Root: root, Prior: first, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Files {
		if first.Files[i] != second.Files[i] {
			t.Errorf("file %s re-extracted despite matching (mtime, size)", first.Files[i].Path)
		}
	}

	// Touching a file's mtime invalidates only that file.
	target := filepath.Join(root, "src", "orphan.ts")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(target, future, future); err != nil {
		t.Fatal(err)
	}
	third, err := Scan(Options{Root: root, Prior: first, CollectEdges: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range third.Files {
		prior := first.FileByPath(f.Path)
		if f.Path == "src/orphan.ts" {
			if f == prior {
				t.Error("touched file not re-extracted")
			}
			// Warm-vs-cold equivalence: the fresh analysis matches except
			// for mtime.
			if f.LOC != prior.LOC || len(f.Exports) != len(prior.Exports) {
				t.Errorf("re-extraction drifted: %+v vs %+v", f, prior)
			}
		} else if f != prior {
			t.Errorf("unchanged file %s re-extracted", f.Path)
		}
	}
}

func TestMultiRootPrefixing(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, rootA, "lib.ts", "export const a = 1;\n")
	writeFile(t, rootB, "lib.ts", "export const b = 1;\n")

	snap, err := Scan(Options{Root: rootA, ExtraRoots: []string{rootB}})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metadata.FileCount != 2 {
		t.Fatalf("file count = %d", snap.Metadata.FileCount)
	}
	// Same-named files from different roots stay distinct.
	if snap.Files[0].Path == snap.Files[1].Path {
		t.Errorf("multi-root paths collide: %s", snap.Files[0].Path)
	}
}

func TestGlobOverlapIsConfigurationError(t *testing.T) {
	root := t.TempDir()
	_, err := Scan(Options{Root: root, Discovery: discovery.Options{
		FocusGlobs:   []string{"src/**"},
		ExcludeGlobs: []string{"src/**"},
	}})
	if err == nil {
		t.Fatal("overlapping globs accepted")
	}
}

func TestGitInfo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, ".git/refs/heads/main", "0123456789abcdef0123456789abcdef01234567\n")

	info := readGitInfo(root)
	if info.Branch != "main" || info.Commit != "0123456789ab" {
		t.Errorf("git info = %+v", info)
	}
}
