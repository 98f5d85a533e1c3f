package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/loctree/loctree/internal/analyzer"
	"github.com/loctree/loctree/pkg/types"
)

var (
	heading = color.New(color.Bold).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

// InitColor disables color when requested or when stdout is not a TTY.
func InitColor(noColor bool) {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// RenderDead prints the dead-export list.
func RenderDead(w io.Writer, dead []analyzer.DeadExport) {
	if len(dead) == 0 {
		fmt.Fprintf(w, "%s no dead exports found\n", good("✓"))
		return
	}
	fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("%d dead exports", len(dead))))
	for _, d := range dead {
		fmt.Fprintf(w, "  %s %s:%d  %s %s\n", bad("✗"), d.File, d.Line, d.Symbol, dim("("+d.Kind+", "+d.Confidence+")"))
		if d.OpenURL != "" {
			fmt.Fprintf(w, "      %s\n", dim(d.OpenURL))
		}
	}
}

// RenderCycles prints strict and lazy cycles with classifications.
func RenderCycles(w io.Writer, report *analyzer.CycleReport, breakingOnly bool) {
	strict := report.StrictCycles
	if breakingOnly {
		strict = nil
		for _, c := range report.StrictCycles {
			if c.Class == analyzer.CycleBreaking {
				strict = append(strict, c)
			}
		}
	}

	if len(strict) == 0 && (breakingOnly || len(report.LazyCycles) == 0) {
		fmt.Fprintf(w, "%s no import cycles\n", good("✓"))
		return
	}

	if len(strict) > 0 {
		fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("%d strict cycles", len(strict))))
		for _, c := range strict {
			marker := warn("●")
			if c.Class == analyzer.CycleBreaking {
				marker = bad("●")
			}
			fmt.Fprintf(w, "  %s [%s] %s\n", marker, c.Class, joinCycle(c.Vertices))
		}
	}
	if !breakingOnly && len(report.LazyCycles) > 0 {
		fmt.Fprintf(w, "%s\n", heading(fmt.Sprintf("%d lazy cycles", len(report.LazyCycles))))
		for _, c := range report.LazyCycles {
			fmt.Fprintf(w, "  %s [%s] %s\n", dim("○"), c.Class, joinCycle(c.Vertices))
		}
	}
	if report.TruncatedSCCs > 0 {
		fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("(%d components truncated at the cycle bound)", report.TruncatedSCCs)))
	}
}

func joinCycle(vertices []string) string {
	out := ""
	for i, v := range vertices {
		if i > 0 {
			out += " -> "
		}
		out += v
	}
	return out
}

// RenderBridges prints command bridges grouped by status.
func RenderBridges(w io.Writer, bridges []types.CommandBridge) {
	if len(bridges) == 0 {
		fmt.Fprintf(w, "%s no command bridges detected\n", dim("–"))
		return
	}
	for _, b := range bridges {
		var marker, note string
		switch b.Status {
		case types.BridgeOK:
			marker, note = good("✓"), ""
		case types.BridgeMissingHandler:
			marker, note = bad("✗"), " no backend handler"
		case types.BridgeUnusedHandler:
			marker, note = warn("!"), " no frontend call"
		case types.BridgeUnregisteredHandler:
			marker, note = bad("✗"), " not in generate_handler!"
		}
		fmt.Fprintf(w, "%s %s%s\n", marker, b.Name, warnIf(note))
		if b.Handler != nil {
			fmt.Fprintf(w, "    handler  %s:%d\n", b.Handler.File, b.Handler.Line)
		}
		for _, c := range b.Calls {
			fmt.Fprintf(w, "    call     %s:%d\n", c.File, c.Line)
		}
		for _, d := range b.DuplicateHandlers {
			fmt.Fprintf(w, "    %s %s:%d\n", warn("dup      "), d.File, d.Line)
		}
	}
}

func warnIf(note string) string {
	if note == "" {
		return ""
	}
	return warn(note)
}

// RenderEvents prints event bridges; FE↔FE sync pairs are informational,
// not orphans.
func RenderEvents(w io.Writer, events []types.EventBridge) {
	if len(events) == 0 {
		fmt.Fprintf(w, "%s no event bridges detected\n", dim("–"))
		return
	}
	for _, e := range events {
		marker := good("✓")
		note := ""
		switch {
		case len(e.Emits) == 0:
			marker, note = warn("!"), " listened, never emitted"
		case len(e.Listens) == 0 && !e.IsFESync:
			marker, note = warn("!"), " emitted, never listened"
		case e.IsFESync:
			note = dim(" fe↔fe sync")
		}
		if e.SameFileSync {
			note += dim(" same-file")
		}
		fmt.Fprintf(w, "%s %s%s\n", marker, e.Name, note)
		for _, s := range e.Emits {
			fmt.Fprintf(w, "    emit    %s:%d\n", s.File, s.Line)
		}
		for _, s := range e.Listens {
			fmt.Fprintf(w, "    listen  %s:%d\n", s.File, s.Line)
		}
	}
}

// RenderZombie prints the combined dead/shadow/parrot view.
func RenderZombie(w io.Writer, dead []analyzer.DeadExport, twins *analyzer.TwinReport) {
	RenderDead(w, dead)

	if len(twins.Shadows) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading(fmt.Sprintf("%d shadow exports", len(twins.Shadows))))
		for _, s := range twins.Shadows {
			fmt.Fprintf(w, "  %s %s: canonical %s, %d dead files (%d LOC)\n",
				warn("!"), s.Name, s.CanonicalFile, len(s.DeadFiles), s.DeadLOC)
			for _, f := range s.DeadFiles {
				fmt.Fprintf(w, "      %s\n", dim(f))
			}
		}
	}
	if len(twins.Parrots) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading(fmt.Sprintf("%d dead parrots (0 references)", len(twins.Parrots))))
		for _, p := range twins.Parrots {
			fmt.Fprintf(w, "  %s %s:%d  %s\n", dim("✗"), p.File, p.Line, p.Symbol)
		}
	}
}

// RenderTwins prints exact twins.
func RenderTwins(w io.Writer, twins *analyzer.TwinReport) {
	if len(twins.Twins) == 0 {
		fmt.Fprintf(w, "%s no duplicate exports\n", good("✓"))
		return
	}
	for _, t := range twins.Twins {
		marker := warn("!")
		if t.Kind == analyzer.TwinCrossLanguage {
			marker = dim("≈")
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, t.Name, dim("("+string(t.Kind)+")"))
		for _, loc := range t.Locations {
			fmt.Fprintf(w, "    %s:%d %s\n", loc.File, loc.Line, dim(loc.Kind))
		}
	}
}

// RenderHubs prints the hub-file list.
func RenderHubs(w io.Writer, hubs []HubFile) {
	if len(hubs) == 0 {
		fmt.Fprintf(w, "%s no hub files above threshold\n", dim("–"))
		return
	}
	fmt.Fprintf(w, "%s\n", heading("import hotspots"))
	for _, h := range hubs {
		line := fmt.Sprintf("  %3d  %s  %s", h.Score, h.Path,
			dim(fmt.Sprintf("(in %d, out %d, exports %d, commands %d)",
				h.Importers, h.Imports, h.Exports, h.Commands)))
		if h.CyclomaticMax > 0 {
			line += dim(fmt.Sprintf(" cyclo %d", h.CyclomaticMax))
		}
		fmt.Fprintln(w, line)
	}
}

// RenderRoutes prints decorator-derived HTTP routes.
func RenderRoutes(w io.Writer, snap *types.Snapshot) {
	n := 0
	for _, fa := range snap.Files {
		for _, r := range fa.Routes {
			fmt.Fprintf(w, "%-9s %s  %s\n", r.Method, r.Path, dim(fmt.Sprintf("%s:%d", fa.Path, r.Line)))
			n++
		}
	}
	if n == 0 {
		fmt.Fprintf(w, "%s no routes detected\n", dim("–"))
	}
}

// RenderLayoutMap prints CSS layout layers per stylesheet.
func RenderLayoutMap(w io.Writer, snap *types.Snapshot) {
	n := 0
	for _, fa := range snap.Files {
		if len(fa.CSSLayers) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", heading(fa.Path))
		for _, l := range fa.CSSLayers {
			detail := ""
			if l.Position != "" {
				detail += "position:" + l.Position + " "
			}
			if l.ZIndex != "" {
				detail += "z-index:" + l.ZIndex
			}
			fmt.Fprintf(w, "  %-40s %s %s\n", l.Selector, detail, dim(fmt.Sprintf("line %d", l.Line)))
			n++
		}
	}
	if n == 0 {
		fmt.Fprintf(w, "%s no layout layers detected\n", dim("–"))
	}
}

// RenderFocus prints one file's neighborhood.
func RenderFocus(w io.Writer, snap *types.Snapshot, fa *types.FileAnalysis) {
	fmt.Fprintf(w, "%s %s\n", heading(fa.Path), dim(fmt.Sprintf("(%s, %d loc)", fa.Language, fa.LOC)))

	if len(fa.Imports) > 0 {
		fmt.Fprintf(w, "%s\n", heading("imports"))
		for _, imp := range fa.Imports {
			target := imp.ResolvedPath
			if target == "" {
				target = imp.Source + dim(" ("+string(imp.Resolution)+")")
			}
			fmt.Fprintf(w, "  -> %s\n", target)
		}
	}

	var importers []string
	for _, e := range snap.Edges {
		if e.To == fa.Path {
			importers = append(importers, e.From)
		}
	}
	if len(importers) > 0 {
		fmt.Fprintf(w, "%s\n", heading("importers"))
		for _, from := range importers {
			fmt.Fprintf(w, "  <- %s\n", from)
		}
	}

	if len(fa.Exports) > 0 {
		fmt.Fprintf(w, "%s\n", heading("exports"))
		for _, e := range fa.Exports {
			fmt.Fprintf(w, "  %s %s\n", e.Name, dim("("+e.Kind+")"))
		}
	}

	for _, c := range fa.CommandCalls {
		fmt.Fprintf(w, "%s %s:%d\n", heading("invokes "+c.Name), fa.Path, c.Line)
	}
	for _, h := range fa.CommandHandlers {
		fmt.Fprintf(w, "%s %s:%d\n", heading("handles "+h.WireName()), fa.Path, h.Line)
	}
}

// RenderHealth prints the aggregate report.
func RenderHealth(w io.Writer, r *Report) {
	scoreColor := good
	switch {
	case r.Health < 40:
		scoreColor = bad
	case r.Health < 70:
		scoreColor = warn
	}
	fmt.Fprintf(w, "%s %s %s\n", heading("health"), scoreColor(fmt.Sprintf("%d/100", r.Health)), dim("("+r.Tier+")"))
	fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("%d files, %d loc, languages: %v", r.Files, r.TotalLOC, r.Languages)))

	missing, unregistered, unused := 0, 0, 0
	for _, b := range r.Bridges {
		switch b.Status {
		case types.BridgeMissingHandler:
			missing++
		case types.BridgeUnregisteredHandler:
			unregistered++
		case types.BridgeUnusedHandler:
			unused++
		}
	}
	fmt.Fprintf(w, "  dead exports    %d\n", len(r.Dead))
	fmt.Fprintf(w, "  strict cycles   %d\n", len(r.Cycles.StrictCycles))
	fmt.Fprintf(w, "  lazy cycles     %d\n", len(r.Cycles.LazyCycles))
	fmt.Fprintf(w, "  bridges         %d missing, %d unregistered, %d unused\n", missing, unregistered, unused)
	fmt.Fprintf(w, "  twins           %d (%d same-language)\n", len(r.Twins.Twins), r.Twins.SameLanguageTwinCount())
	fmt.Fprintf(w, "  dead parrots    %d\n", len(r.Twins.Parrots))
	fmt.Fprintf(w, "  opaque types    %d\n", len(r.Opaque))

	if len(r.QuickWins) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading("quick wins"))
		for _, qw := range r.QuickWins {
			fmt.Fprintf(w, "  %s %s %s\n", warn("•"), qw.Action, dim(qw.Location))
			fmt.Fprintf(w, "      %s\n", dim(qw.FixHint))
		}
	}
}
