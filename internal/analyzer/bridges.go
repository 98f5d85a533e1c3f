package analyzer

import (
	"sort"
	"strings"

	"github.com/loctree/loctree/pkg/types"
)

// normalizeCommandName strips _command/_cmd suffixes so frontend and
// backend spellings of a wire name compare equal.
func normalizeCommandName(name string) string {
	name = strings.TrimSuffix(name, "_command")
	name = strings.TrimSuffix(name, "_cmd")
	return name
}

// ReconcileCommandBridges merges per-file command calls and handlers into
// one bridge per wire name with a status label.
func ReconcileCommandBridges(snap *types.Snapshot) []types.CommandBridge {
	type handlerSite struct {
		site types.BridgeSite
		name string // handler wire name before normalization
	}

	calls := map[string][]types.BridgeSite{}
	handlers := map[string][]handlerSite{}

	for _, fa := range snap.Files {
		for _, c := range fa.CommandCalls {
			key := normalizeCommandName(c.Name)
			calls[key] = append(calls[key], types.BridgeSite{File: fa.Path, Line: c.Line})
		}
		for _, h := range fa.CommandHandlers {
			key := normalizeCommandName(h.WireName())
			handlers[key] = append(handlers[key], handlerSite{
				site: types.BridgeSite{File: fa.Path, Line: h.Line},
				name: h.WireName(),
			})
		}
	}

	registered := map[string]bool{}
	for _, fa := range snap.Files {
		for _, r := range fa.TauriRegisteredHandlers {
			registered[normalizeCommandName(r)] = true
		}
	}

	names := map[string]bool{}
	for n := range calls {
		names[n] = true
	}
	for n := range handlers {
		names[n] = true
	}

	var bridges []types.CommandBridge
	for name := range names {
		bridge := types.CommandBridge{Name: name, Calls: calls[name]}
		sort.Slice(bridge.Calls, func(i, j int) bool {
			a, b := bridge.Calls[i], bridge.Calls[j]
			if a.File != b.File {
				return a.File < b.File
			}
			return a.Line < b.Line
		})

		hs := handlers[name]
		sort.Slice(hs, func(i, j int) bool {
			a, b := hs[i].site, hs[j].site
			if a.File != b.File {
				return a.File < b.File
			}
			return a.Line < b.Line
		})
		if len(hs) > 0 {
			// Canonical backend: first by (path, line). Extras are kept as
			// duplicates rather than guessed between.
			canonical := hs[0].site
			bridge.Handler = &canonical
			for _, h := range hs[1:] {
				bridge.DuplicateHandlers = append(bridge.DuplicateHandlers, h.site)
			}
		}

		switch {
		case bridge.Handler == nil:
			bridge.Status = types.BridgeMissingHandler
		case len(bridge.Calls) == 0:
			bridge.Status = types.BridgeUnusedHandler
		case !registered[name]:
			bridge.Status = types.BridgeUnregisteredHandler
		default:
			bridge.Status = types.BridgeOK
		}

		bridges = append(bridges, bridge)
	}

	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Name < bridges[j].Name })
	return bridges
}

// ReconcileEventBridges pairs emit sites with listen sites per event name.
func ReconcileEventBridges(snap *types.Snapshot) []types.EventBridge {
	type side struct {
		sites    []types.BridgeSite
		frontend bool // all sites in frontend languages so far
	}
	emits := map[string]*side{}
	listens := map[string]*side{}

	collect := func(m map[string]*side, fa *types.FileAnalysis, refs []types.EventRef) {
		for _, r := range refs {
			s := m[r.Name]
			if s == nil {
				s = &side{frontend: true}
				m[r.Name] = s
			}
			s.sites = append(s.sites, types.BridgeSite{File: fa.Path, Line: r.Line})
			if !fa.Language.IsFrontend() {
				s.frontend = false
			}
		}
	}

	for _, fa := range snap.Files {
		collect(emits, fa, fa.EventEmits)
		collect(listens, fa, fa.EventListens)
	}

	names := map[string]bool{}
	for n := range emits {
		names[n] = true
	}
	for n := range listens {
		names[n] = true
	}

	var bridges []types.EventBridge
	for name := range names {
		bridge := types.EventBridge{Name: name}
		feSync := true
		if e := emits[name]; e != nil {
			bridge.Emits = e.sites
			feSync = feSync && e.frontend
		}
		if l := listens[name]; l != nil {
			bridge.Listens = l.sites
			feSync = feSync && l.frontend
		}
		// FE↔FE sync needs both sides present and entirely frontend.
		bridge.IsFESync = feSync && len(bridge.Emits) > 0 && len(bridge.Listens) > 0

		for _, e := range bridge.Emits {
			for _, l := range bridge.Listens {
				if e.File == l.File {
					bridge.SameFileSync = true
				}
			}
		}

		sort.Slice(bridge.Emits, func(i, j int) bool {
			a, b := bridge.Emits[i], bridge.Emits[j]
			if a.File != b.File {
				return a.File < b.File
			}
			return a.Line < b.Line
		})
		sort.Slice(bridge.Listens, func(i, j int) bool {
			a, b := bridge.Listens[i], bridge.Listens[j]
			if a.File != b.File {
				return a.File < b.File
			}
			return a.Line < b.Line
		})

		bridges = append(bridges, bridge)
	}

	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Name < bridges[j].Name })
	return bridges
}
