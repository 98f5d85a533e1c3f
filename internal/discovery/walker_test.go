package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkDiscoversSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "export {}\n")
	writeFile(t, root, "src/lib.rs", "pub fn f() {}\n")
	writeFile(t, root, "readme.md", "# nope\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, ".hidden/secret.ts", "x\n")

	files, err := Walk(root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, f := range files {
		got[f.RelPath] = true
	}
	if !got["src/app.ts"] || !got["src/lib.rs"] {
		t.Errorf("missing sources: %v", got)
	}
	if got["readme.md"] || got["node_modules/pkg/index.js"] || got[".hidden/secret.ts"] {
		t.Errorf("unexpected files: %v", got)
	}
}

func TestWalkHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.tmp.ts\n")
	writeFile(t, root, "generated/out.ts", "x\n")
	writeFile(t, root, "keep.ts", "x\n")
	writeFile(t, root, "scratch.tmp.ts", "x\n")

	files, err := Walk(root, Options{UseGitignore: true})
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, f := range files {
		got[f.RelPath] = true
	}
	if !got["keep.ts"] {
		t.Errorf("keep.ts missing: %v", got)
	}
	if got["generated/out.ts"] || got["scratch.tmp.ts"] {
		t.Errorf("ignored files leaked: %v", got)
	}
}

func TestWalkFocusAndExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "x\n")
	writeFile(t, root, "src/b.ts", "x\n")
	writeFile(t, root, "tools/c.ts", "x\n")

	files, err := Walk(root, Options{
		FocusGlobs:   []string{"src/**"},
		ExcludeGlobs: []string{"src/b.ts"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].RelPath != "src/a.ts" {
		t.Errorf("files = %+v", files)
	}
}

func TestValidateGlobsOverlap(t *testing.T) {
	err := ValidateGlobs(Options{
		FocusGlobs:   []string{"src/**"},
		ExcludeGlobs: []string{"src/**"},
	})
	if err == nil {
		t.Fatal("overlapping focus/exclude must be a configuration error")
	}

	if err := ValidateGlobs(Options{
		FocusGlobs:   []string{"src/**"},
		ExcludeGlobs: []string{"tools/**"},
	}); err != nil {
		t.Fatalf("disjoint globs rejected: %v", err)
	}
}

func TestIsTestPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/app.test.ts", true},
		{"src/app.spec.tsx", true},
		{"tests/util.py", true},
		{"src/__tests__/x.ts", true},
		{"pkg/walker_test.go", true},
		{"test_calendar.py", true},
		{"conftest.py", true},
		{"src/app.ts", false},
		{"src/latest.ts", false},
	}
	for _, tt := range tests {
		if got := IsTestPath(tt.path); got != tt.want {
			t.Errorf("IsTestPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
