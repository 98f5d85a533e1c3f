package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loctree/loctree/internal/snapshot"
	"github.com/loctree/loctree/pkg/types"
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

func TestRunEndToEndTauriRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", `import { invoke } from "@tauri-apps/api/core";

export async function save() {
	await invoke("save_user", { userId: 1 });
}
`)
	writeFile(t, root, "src-tauri/src/main.rs", `fn main() {
    tauri::Builder::default()
        .invoke_handler(tauri::generate_handler![load_user])
        .run(tauri::generate_context!())
        .unwrap();
}

#[tauri::command]
pub fn load_user() {}
`)

	snapPath := filepath.Join(root, ".loctree", "snapshot.json")
	snap, err := Run(ScanConfig{Root: root, SnapshotPath: snapPath}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var saveUser *types.CommandBridge
	for i := range snap.CommandBridges {
		if snap.CommandBridges[i].Name == "save_user" {
			saveUser = &snap.CommandBridges[i]
		}
	}
	if saveUser == nil {
		t.Fatalf("save_user bridge missing: %+v", snap.CommandBridges)
	}
	if saveUser.Status != types.BridgeMissingHandler {
		t.Errorf("save_user status = %s, want missing_handler", saveUser.Status)
	}

	// The camelCase payload key against a snake_case command drifts.
	app := snap.FileByPath("src/app.ts")
	if app == nil || len(app.CasingDrifts) != 1 || app.CasingDrifts[0].Key != "userId" {
		t.Errorf("casing drift missing: %+v", app)
	}

	// The snapshot persisted and reloads identically.
	loaded, err := snapshot.Load(snapPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || loaded.Metadata.FileCount != snap.Metadata.FileCount {
		t.Errorf("persisted snapshot mismatch")
	}
}

func TestRunIncrementalSecondPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "export const a = 1;\n")

	snapPath := filepath.Join(root, ".loctree", "snapshot.json")
	if _, err := Run(ScanConfig{Root: root, SnapshotPath: snapPath}, nil); err != nil {
		t.Fatal(err)
	}
	// Second run loads the prior snapshot and still succeeds.
	snap, err := Run(ScanConfig{Root: root, SnapshotPath: snapPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metadata.FileCount != 1 {
		t.Errorf("file count = %d", snap.Metadata.FileCount)
	}
}
