// Package recommend turns findings into a priority-ordered quick-win list.
package recommend

import (
	"fmt"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/pkg/types"
)

// QuickWin is one actionable cleanup, cheapest-signal first.
type QuickWin struct {
	Action     string `json:"action"`
	Location   string `json:"location"`
	Why        string `json:"why"`
	FixHint    string `json:"fix_hint"`
	Complexity string `json:"complexity"` // trivial | easy | moderate
	OpenURL    string `json:"open_url,omitempty"`
}

// Findings is everything the generator draws from.
type Findings struct {
	Bridges []types.CommandBridge
	Dead    []analyzer.DeadExport
	Cycles  *analyzer.CycleReport
	Opaque  []analyzer.OpaquePassthrough
}

// perClassCap keeps the list short enough to act on.
const perClassCap = 10

// Generate produces quick wins in fixed priority order: missing handlers,
// unregistered handlers, unused handlers, dead exports, cycles, opaque
// passthrough types.
func Generate(f Findings) []QuickWin {
	var wins []QuickWin

	add := func(w QuickWin, count *int) {
		if *count >= perClassCap {
			return
		}
		*count++
		wins = append(wins, w)
	}

	n := 0
	for _, b := range f.Bridges {
		if b.Status != types.BridgeMissingHandler || len(b.Calls) == 0 {
			continue
		}
		add(QuickWin{
			Action:     fmt.Sprintf("implement handler for %q", b.Name),
			Location:   fmt.Sprintf("%s:%d", b.Calls[0].File, b.Calls[0].Line),
			Why:        "frontend invokes a command no backend handles; the call fails at runtime",
			FixHint:    fmt.Sprintf("add #[tauri::command] fn %s and register it in generate_handler!", b.Name),
			Complexity: "moderate",
		}, &n)
	}

	n = 0
	for _, b := range f.Bridges {
		if b.Status != types.BridgeUnregisteredHandler || b.Handler == nil {
			continue
		}
		add(QuickWin{
			Action:     fmt.Sprintf("register handler %q", b.Name),
			Location:   fmt.Sprintf("%s:%d", b.Handler.File, b.Handler.Line),
			Why:        "the handler exists but is missing from generate_handler!, so invokes fail",
			FixHint:    fmt.Sprintf("add %s to the generate_handler! list", b.Name),
			Complexity: "trivial",
		}, &n)
	}

	n = 0
	for _, b := range f.Bridges {
		if b.Status != types.BridgeUnusedHandler || b.Handler == nil {
			continue
		}
		add(QuickWin{
			Action:     fmt.Sprintf("remove or wire up handler %q", b.Name),
			Location:   fmt.Sprintf("%s:%d", b.Handler.File, b.Handler.Line),
			Why:        "no frontend call site invokes this command",
			FixHint:    "delete the handler or add the missing invoke",
			Complexity: "easy",
		}, &n)
	}

	n = 0
	for _, d := range f.Dead {
		add(QuickWin{
			Action:     fmt.Sprintf("delete dead export %s", d.Symbol),
			Location:   fmt.Sprintf("%s:%d", d.File, d.Line),
			Why:        "no consumer is detectable by static analysis",
			FixHint:    "remove the export, or keep it and add the missing import",
			Complexity: "easy",
			OpenURL:    d.OpenURL,
		}, &n)
	}

	if f.Cycles != nil {
		n = 0
		for _, c := range f.Cycles.StrictCycles {
			hint := "extract the shared part into a module both sides import"
			if c.Class == analyzer.CycleStructural {
				hint = "re-order the re-exports or import the concrete module directly"
			}
			add(QuickWin{
				Action:     "break import cycle",
				Location:   c.Vertices[0],
				Why:        fmt.Sprintf("%s cycle through %d modules", c.Class, len(c.Vertices)-1),
				FixHint:    hint,
				Complexity: "moderate",
			}, &n)
		}
	}

	n = 0
	for _, o := range f.Opaque {
		add(QuickWin{
			Action:     fmt.Sprintf("export or inline type %s", o.TypeName),
			Location:   fmt.Sprintf("%s:%d", o.File, o.Line),
			Why:        "the type is only reachable through function signatures; consumers cannot name it",
			FixHint:    "import the type where it is consumed, or narrow the carrier signatures",
			Complexity: "easy",
		}, &n)
	}

	return wins
}
