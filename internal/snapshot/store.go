// Package snapshot persists and reloads the analysis document. It is the
// cut point between scanning and the finding engines: a consumer can
// reconstruct everything it needs from the file alone.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/internal/scanner"
	"github.com/loctree/loctree/pkg/types"
)

// DefaultPath is where the snapshot lives unless the caller chooses
// otherwise.
const DefaultPath = ".loctree/snapshot.json"

// Save writes the snapshot atomically (temp file + rename), canonically
// sorted so identical inputs serialize byte-identically.
func Save(path string, snap *types.Snapshot) error {
	scanner.Normalize(snap)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot. A missing file, unparsable content, or a schema
// mismatch all return (nil, nil): the caller performs a full scan. Nothing
// is ever partially applied.
func Load(path string) (*types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		config.Verbosef("snapshot %s unreadable, treating as absent: %v", path, err)
		return nil, nil
	}
	if snap.Metadata.SchemaVersion != scanner.SchemaVersion {
		config.Verbosef("snapshot schema %q != %q, treating as absent",
			snap.Metadata.SchemaVersion, scanner.SchemaVersion)
		return nil, nil
	}
	return &snap, nil
}

// MustLoad reads a snapshot for a finding command. Unlike Load, a missing
// or stale snapshot is a hard error: finding commands never scan.
func MustLoad(path string) (*types.Snapshot, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no usable snapshot at %s (run `loct scan` first)", path)
	}
	return snap, nil
}

// Context bundles a snapshot with a resolver rebuilt from its cached
// config. This is the scan-results-from-snapshot contract: no filesystem
// access, no tsconfig/pyproject re-reads.
type Context struct {
	Snap     *types.Snapshot
	Resolver *resolver.Resolver
}

// NewContext reconstructs a usable scan context from a snapshot alone.
func NewContext(snap *types.Snapshot) *Context {
	paths := make([]string, len(snap.Files))
	for i, f := range snap.Files {
		paths[i] = f.Path
	}
	return &Context{
		Snap:     snap,
		Resolver: resolver.FromConfig(snap.Metadata.ResolverConfig, paths),
	}
}
