package analyzer

import (
	"sort"

	"github.com/loctree/loctree/internal/resolver"
	"github.com/loctree/loctree/pkg/types"
)

// TwinKind separates actionable duplication from intentional mirroring.
type TwinKind string

const (
	TwinSameLanguage  TwinKind = "SameLanguage"
	TwinCrossLanguage TwinKind = "CrossLanguage"
)

// TwinLocation is one export site of a twinned name.
type TwinLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Kind string `json:"kind"`
}

// Twin is a symbol name exported from two or more files.
type Twin struct {
	Name      string         `json:"name"`
	Kind      TwinKind       `json:"kind"`
	Locations []TwinLocation `json:"locations"`
}

// ShadowExport is a name exported by several files where at least one
// location is dead: a zombie left behind by a refactor.
type ShadowExport struct {
	Name          string   `json:"name"`
	CanonicalFile string   `json:"canonical_file"` // a used location
	DeadFiles     []string `json:"dead_files"`
	DeadLOC       int      `json:"dead_loc"`
}

// DeadParrot is an export with zero observed import edges.
type DeadParrot struct {
	File   string `json:"file"`
	Symbol string `json:"symbol"`
	Line   int    `json:"line"`
}

// TwinReport bundles the C7 outputs.
type TwinReport struct {
	Twins   []Twin         `json:"twins"`
	Shadows []ShadowExport `json:"shadows"`
	Parrots []DeadParrot   `json:"dead_parrots"`
}

// FindTwins collects exact twins, shadow exports, and dead parrots.
func FindTwins(snap *types.Snapshot, includeTests bool) *TwinReport {
	sets := buildConsumerSets(snap)
	report := &TwinReport{}

	type site struct {
		fa   *types.FileAnalysis
		sym  types.ExportSymbol
	}
	byName := map[string][]site{}

	for _, fa := range snap.Files {
		if fa.IsTest && !includeTests {
			continue
		}
		for _, e := range fa.Exports {
			if e.Kind == "reexport" || e.Kind == "__all__" || e.ExportType == "default" {
				continue
			}
			byName[e.Name] = append(byName[e.Name], site{fa, e})
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sites := byName[name]

		// Dead parrots: zero observed import edges for the site's module.
		for _, s := range sites {
			key := resolver.KeyForPath(s.fa.Path).AsKey()
			if !sets.usedExports[key][name] && !sets.usedExports[key]["*"] {
				report.Parrots = append(report.Parrots, DeadParrot{
					File: s.fa.Path, Symbol: name, Line: s.sym.Line,
				})
			}
		}

		if len(sites) < 2 {
			continue
		}

		twin := Twin{Name: name, Kind: TwinSameLanguage}
		families := map[resolver.LangFamily]bool{}
		for _, s := range sites {
			families[resolver.FamilyForLanguage(s.fa.Language)] = true
			twin.Locations = append(twin.Locations, TwinLocation{
				File: s.fa.Path, Line: s.sym.Line, Kind: s.sym.Kind,
			})
		}
		if len(families) > 1 {
			twin.Kind = TwinCrossLanguage
		}
		sort.Slice(twin.Locations, func(i, j int) bool {
			if twin.Locations[i].File != twin.Locations[j].File {
				return twin.Locations[i].File < twin.Locations[j].File
			}
			return twin.Locations[i].Line < twin.Locations[j].Line
		})
		report.Twins = append(report.Twins, twin)

		// Shadow partition: used locations vs dead locations.
		var usedFiles, deadFiles []string
		deadLOC := 0
		for _, s := range sites {
			key := resolver.KeyForPath(s.fa.Path).AsKey()
			if sets.usedExports[key][name] || sets.usedExports[key]["*"] {
				usedFiles = append(usedFiles, s.fa.Path)
			} else {
				deadFiles = append(deadFiles, s.fa.Path)
				deadLOC += s.fa.LOC
			}
		}
		if len(usedFiles) > 0 && len(deadFiles) > 0 {
			sort.Strings(usedFiles)
			sort.Strings(deadFiles)
			report.Shadows = append(report.Shadows, ShadowExport{
				Name:          name,
				CanonicalFile: usedFiles[0],
				DeadFiles:     deadFiles,
				DeadLOC:       deadLOC,
			})
		}
	}

	sort.Slice(report.Parrots, func(i, j int) bool {
		if report.Parrots[i].File != report.Parrots[j].File {
			return report.Parrots[i].File < report.Parrots[j].File
		}
		return report.Parrots[i].Symbol < report.Parrots[j].Symbol
	})

	return report
}

// SameLanguageTwinCount feeds the health formula.
func (r *TwinReport) SameLanguageTwinCount() int {
	n := 0
	for _, t := range r.Twins {
		if t.Kind == TwinSameLanguage {
			n++
		}
	}
	return n
}
