// Package pipeline orchestrates the scan workflow: load prior snapshot →
// discover and extract → reconcile bridges → persist.
package pipeline

import (
	"fmt"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/discovery"
	"github.com/loctree/loctree/internal/extract"
	"github.com/loctree/loctree/internal/scanner"
	"github.com/loctree/loctree/internal/snapshot"
	"github.com/loctree/loctree/pkg/types"
)

// ScanConfig is the CLI-facing scan configuration.
type ScanConfig struct {
	Root         string
	ExtraRoots   []string
	SnapshotPath string
	Discovery    discovery.Options
	// Full disables incremental reuse.
	Full bool
	// Project carries .loctree/config.toml content, when present.
	Project *config.ProjectConfig
}

// Run executes a scan end to end and persists the snapshot. The progress
// sink receives coarse stage updates.
func Run(cfg ScanConfig, onProgress ProgressFunc) (*types.Snapshot, error) {
	if onProgress == nil {
		onProgress = func(string, string) {}
	}

	onProgress("load", "Loading prior snapshot...")
	var prior *types.Snapshot
	if !cfg.Full {
		var err error
		prior, err = snapshot.Load(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
	}

	var detection *extract.CommandDetectionConfig
	var pyRoots []string
	if cfg.Project != nil {
		detection = extract.NewCommandDetectionConfig(
			cfg.Project.Commands.DOMExclusions,
			cfg.Project.Commands.NonInvokeExclusions,
			cfg.Project.Commands.InvalidCommandNames,
			cfg.Project.Commands.CustomMacros,
		)
		pyRoots = cfg.Project.Scan.PythonRoots
		if cfg.Discovery.MaxDepth == 0 {
			cfg.Discovery.MaxDepth = cfg.Project.Scan.MaxDepth
		}
		cfg.Discovery.IgnoreGlobs = append(cfg.Discovery.IgnoreGlobs, cfg.Project.Scan.IgnoreGlobs...)
		if cfg.Project.Scan.IncludeHidden {
			cfg.Discovery.IncludeHidden = true
		}
	}

	onProgress("scan", "Scanning files...")
	snap, err := scanner.Scan(scanner.Options{
		Root:         cfg.Root,
		ExtraRoots:   cfg.ExtraRoots,
		Discovery:    cfg.Discovery,
		Prior:        prior,
		Detection:    detection,
		PythonRoots:  pyRoots,
		CollectEdges: true,
	})
	if err != nil {
		return nil, err
	}

	onProgress("bridges", "Reconciling bridges...")
	snap.CommandBridges = analyzer.ReconcileCommandBridges(snap)
	snap.EventBridges = analyzer.ReconcileEventBridges(snap)

	onProgress("save", "Writing snapshot...")
	if err := snapshot.Save(cfg.SnapshotPath, snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	return snap, nil
}
