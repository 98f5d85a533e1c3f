// Package output builds the language-agnostic view models shared by every
// rendering surface and renders them as colored text or JSON.
package output

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/internal/recommend"
	"github.com/loctree/loctree/internal/scoring"
	"github.com/loctree/loctree/pkg/types"
)

// hubTop and hubMinScore bound the hub-file list.
const (
	hubTop      = 10
	hubMinScore = 5
)

// HubFile is a file that concentrates traffic.
type HubFile struct {
	Path      string `json:"path"`
	Score     int    `json:"score"`
	Imports   int    `json:"imports"`
	Exports   int    `json:"exports"`
	Importers int    `json:"importers"`
	Commands  int    `json:"commands"`
	// CyclomaticMax is carried for Go files scored by gocyclo.
	CyclomaticMax int `json:"cyclomatic_max,omitempty"`
}

// Report is the full health view model.
type Report struct {
	Health    int                          `json:"health"`
	Tier      string                       `json:"tier"`
	Files     int                          `json:"files"`
	TotalLOC  int                          `json:"total_loc"`
	Languages []types.Language             `json:"languages"`
	Dead      []analyzer.DeadExport        `json:"dead_exports"`
	Cycles    *analyzer.CycleReport        `json:"cycles"`
	Bridges   []types.CommandBridge        `json:"command_bridges"`
	Events    []types.EventBridge          `json:"event_bridges"`
	Twins     *analyzer.TwinReport         `json:"twins"`
	Opaque    []analyzer.OpaquePassthrough `json:"opaque_passthroughs"`
	Hubs      []HubFile                    `json:"hub_files"`
	QuickWins []recommend.QuickWin         `json:"quick_wins"`
}

// Options tunes report assembly.
type Options struct {
	Dead analyzer.DeadExportOptions
	// OpenURLs attaches loctree://open links to findings.
	OpenURLs bool
}

// OpenURL renders the editor-open URL scheme for a finding.
func OpenURL(file string, line int) string {
	return fmt.Sprintf("loctree://open?f=%s&l=%d", url.QueryEscape(file), line)
}

// BuildReport runs every finding engine over the snapshot and assembles
// the aggregate view model.
func BuildReport(snap *types.Snapshot, opts Options) *Report {
	dead := analyzer.FindDeadExports(snap, opts.Dead)
	if opts.OpenURLs {
		for i := range dead {
			dead[i].OpenURL = OpenURL(dead[i].File, dead[i].Line)
		}
	}

	cycles := analyzer.FindCycles(snap)
	bridges := snap.CommandBridges
	if bridges == nil {
		bridges = analyzer.ReconcileCommandBridges(snap)
	}
	events := snap.EventBridges
	if events == nil {
		events = analyzer.ReconcileEventBridges(snap)
	}
	twins := analyzer.FindTwins(snap, opts.Dead.IncludeTests)
	opaque := analyzer.FindOpaquePassthroughs(snap)

	in := scoring.Inputs{
		DeadExports:       len(dead),
		Cycles:            len(cycles.StrictCycles),
		DeadParrots:       len(twins.Parrots),
		SameLanguageTwins: twins.SameLanguageTwinCount(),
	}
	for _, b := range bridges {
		switch b.Status {
		case types.BridgeMissingHandler:
			in.MissingHandlers++
		case types.BridgeUnregisteredHandler:
			in.UnregisteredHandlers++
		case types.BridgeUnusedHandler:
			in.UnusedHandlers++
		}
	}
	for _, t := range twins.Twins {
		in.DuplicateExports += len(t.Locations)
	}

	score := scoring.Scorer{Weights: scoring.DefaultWeights()}.Score(in)

	report := &Report{
		Health:    score,
		Tier:      scoring.Tier(score),
		Files:     snap.Metadata.FileCount,
		TotalLOC:  snap.Metadata.TotalLOC,
		Languages: snap.Metadata.Languages,
		Dead:      dead,
		Cycles:    cycles,
		Bridges:   bridges,
		Events:    events,
		Twins:     twins,
		Opaque:    opaque,
		Hubs:      HubFiles(snap),
		QuickWins: recommend.Generate(recommend.Findings{
			Bridges: bridges,
			Dead:    dead,
			Cycles:  cycles,
			Opaque:  opaque,
		}),
	}
	return report
}

// HubFiles scores every file by imports + 2·exports + 3·importers +
// 2·commands and keeps the top ten above the floor. Ties break score
// descending, then path ascending.
func HubFiles(snap *types.Snapshot) []HubFile {
	importers := map[string]int{}
	for _, e := range snap.Edges {
		if e.Label != types.EdgeDynamicImport {
			importers[e.To]++
		}
	}

	var hubs []HubFile
	for _, fa := range snap.Files {
		h := HubFile{
			Path:          fa.Path,
			Imports:       len(fa.Imports),
			Exports:       len(fa.Exports),
			Importers:     importers[fa.Path],
			Commands:      len(fa.CommandCalls) + len(fa.CommandHandlers),
			CyclomaticMax: fa.CyclomaticMax,
		}
		h.Score = h.Imports + 2*h.Exports + 3*h.Importers + 2*h.Commands
		if h.Score > hubMinScore {
			hubs = append(hubs, h)
		}
	}

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Score != hubs[j].Score {
			return hubs[i].Score > hubs[j].Score
		}
		return hubs[i].Path < hubs[j].Path
	})
	if len(hubs) > hubTop {
		hubs = hubs[:hubTop]
	}
	return hubs
}
