// Package analyzer hosts the finding engines that consume a snapshot: the
// cycle detector, the dead-export engine, the twins/shadow engine, and the
// bridge reconciler. Everything here reads immutable snapshot data.
package analyzer

import (
	"sort"

	"github.com/loctree/loctree/pkg/types"
)

// maxCyclesPerSCC bounds elementary-cycle enumeration; the remainder is
// summarized in TruncatedSCCs.
const maxCyclesPerSCC = 64

// CycleClass tags a cycle's severity.
type CycleClass string

const (
	CycleBreaking          CycleClass = "Breaking"
	CycleStructural        CycleClass = "Structural"
	CycleDiamondDependency CycleClass = "DiamondDependency"
)

// ClassifiedCycle is one elementary cycle with its classification. The
// vertex list is closed (first == last) and rotated so the smallest vertex
// leads.
type ClassifiedCycle struct {
	Vertices []string   `json:"vertices"`
	Class    CycleClass `json:"class"`
}

// CycleReport is the cycle detector's output.
type CycleReport struct {
	StrictCycles []ClassifiedCycle `json:"strict_cycles"`
	LazyCycles   []ClassifiedCycle `json:"lazy_cycles"`
	// TruncatedSCCs counts components whose cycle enumeration hit the
	// per-SCC bound.
	TruncatedSCCs int `json:"truncated_sccs,omitempty"`
}

// HasBreaking reports whether any strict cycle is classified Breaking.
func (r *CycleReport) HasBreaking() bool {
	for _, c := range r.StrictCycles {
		if c.Class == CycleBreaking {
			return true
		}
	}
	return false
}

// FindCycles splits the edge list into strict and lazy sets, runs Tarjan's
// SCC over each, and enumerates elementary cycles. type_import edges carry
// no runtime dependency and join neither set.
func FindCycles(snap *types.Snapshot) *CycleReport {
	known := map[string]bool{}
	for _, f := range snap.Files {
		known[f.Path] = true
	}

	var strict, lazy []types.GraphEdge
	for _, e := range snap.Edges {
		if !known[e.From] || !known[e.To] {
			continue
		}
		switch e.Label {
		case types.EdgeImport, types.EdgeReexport:
			strict = append(strict, e)
		case types.EdgeDynamicImport, types.EdgeLazyImport:
			lazy = append(lazy, e)
		}
	}

	report := &CycleReport{}

	strictGraph := newDigraph(strict)
	strictCycles := strictGraph.elementaryCycles(report)
	seen := map[string]bool{}
	for _, cyc := range strictCycles {
		seen[cycleKey(cyc)] = true
		report.StrictCycles = append(report.StrictCycles, ClassifiedCycle{Vertices: cyc})
	}

	// Cycles that appear only once lazy edges join the graph are lazy.
	// Every strict SCC lies inside a union SCC with at least as many
	// cycles, so the union pass re-hits the bound on the same components;
	// take the larger count rather than adding the two.
	unionReport := &CycleReport{}
	unionGraph := newDigraph(append(append([]types.GraphEdge{}, strict...), lazy...))
	for _, cyc := range unionGraph.elementaryCycles(unionReport) {
		if seen[cycleKey(cyc)] {
			continue
		}
		report.LazyCycles = append(report.LazyCycles, ClassifiedCycle{Vertices: cyc})
	}
	if unionReport.TruncatedSCCs > report.TruncatedSCCs {
		report.TruncatedSCCs = unionReport.TruncatedSCCs
	}

	labels := edgeLabelIndex(snap.Edges)
	classify(report.StrictCycles, labels)
	classify(report.LazyCycles, labels)

	sortCycles(report.StrictCycles)
	sortCycles(report.LazyCycles)
	return report
}

// classify tags each cycle. Precedence: Breaking (every edge a static
// import) wins so --breaking-only never under-reports; then two distinct
// cycles sharing a vertex are DiamondDependency; everything else is
// Structural.
func classify(cycles []ClassifiedCycle, labels map[[2]string]map[types.EdgeLabel]bool) {
	shared := sharedVertices(cycles)

	for i := range cycles {
		verts := cycles[i].Vertices
		allImport := true
		for j := 0; j+1 < len(verts); j++ {
			edge := labels[[2]string{verts[j], verts[j+1]}]
			if !edge[types.EdgeImport] {
				allImport = false
				break
			}
		}
		switch {
		case allImport:
			cycles[i].Class = CycleBreaking
		case cycleSharesVertex(verts, shared):
			cycles[i].Class = CycleDiamondDependency
		default:
			cycles[i].Class = CycleStructural
		}
	}
}

// sharedVertices finds vertices that occur in more than one cycle.
func sharedVertices(cycles []ClassifiedCycle) map[string]bool {
	count := map[string]int{}
	for _, c := range cycles {
		unique := map[string]bool{}
		for _, v := range c.Vertices[:len(c.Vertices)-1] {
			unique[v] = true
		}
		for v := range unique {
			count[v]++
		}
	}
	shared := map[string]bool{}
	for v, n := range count {
		if n > 1 {
			shared[v] = true
		}
	}
	return shared
}

func cycleSharesVertex(verts []string, shared map[string]bool) bool {
	for _, v := range verts {
		if shared[v] {
			return true
		}
	}
	return false
}

// edgeLabelIndex maps (from, to) to the set of labels between the pair.
func edgeLabelIndex(edges []types.GraphEdge) map[[2]string]map[types.EdgeLabel]bool {
	idx := map[[2]string]map[types.EdgeLabel]bool{}
	for _, e := range edges {
		key := [2]string{e.From, e.To}
		if idx[key] == nil {
			idx[key] = map[types.EdgeLabel]bool{}
		}
		idx[key][e.Label] = true
	}
	return idx
}

// sortCycles orders the list by its rotated representative.
func sortCycles(cycles []ClassifiedCycle) {
	sort.Slice(cycles, func(i, j int) bool {
		return cycleKey(cycles[i].Vertices) < cycleKey(cycles[j].Vertices)
	})
}

// digraph is an adjacency representation over vertex indices, per the
// redesign note: arrays of indices, no pointer graphs.
type digraph struct {
	names []string
	index map[string]int
	adj   [][]int
}

func newDigraph(edges []types.GraphEdge) *digraph {
	g := &digraph{index: map[string]int{}}
	vertex := func(name string) int {
		if i, ok := g.index[name]; ok {
			return i
		}
		i := len(g.names)
		g.index[name] = i
		g.names = append(g.names, name)
		g.adj = append(g.adj, nil)
		return i
	}
	seen := map[[2]int]bool{}
	for _, e := range edges {
		u, v := vertex(e.From), vertex(e.To)
		if u == v || seen[[2]int{u, v}] {
			continue
		}
		seen[[2]int{u, v}] = true
		g.adj[u] = append(g.adj[u], v)
	}
	for _, nbrs := range g.adj {
		sort.Ints(nbrs)
	}
	return g
}

// sccs runs Tarjan's algorithm, returning only non-trivial components.
func (g *digraph) sccs() [][]int {
	n := len(g.names)
	indexOf := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range indexOf {
		indexOf[i] = -1
	}
	var stack []int
	var result [][]int
	counter := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		indexOf[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if indexOf[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && indexOf[w] < low[v] {
				low[v] = indexOf[w]
			}
		}

		if low[v] == indexOf[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 {
				result = append(result, comp)
			}
		}
	}

	for v := 0; v < n; v++ {
		if indexOf[v] == -1 {
			strongconnect(v)
		}
	}
	return result
}

// elementaryCycles enumerates simple cycles per SCC with a bounded DFS,
// rotating each to its lexicographically smallest vertex.
func (g *digraph) elementaryCycles(report *CycleReport) [][]string {
	var cycles [][]string

	for _, comp := range g.sccs() {
		inComp := map[int]bool{}
		for _, v := range comp {
			inComp[v] = true
		}
		sort.Slice(comp, func(i, j int) bool { return g.names[comp[i]] < g.names[comp[j]] })

		found := 0
		truncated := false
		seen := map[string]bool{}

		for _, start := range comp {
			if found >= maxCyclesPerSCC {
				truncated = true
				break
			}
			var path []int
			onPath := map[int]bool{}

			var dfs func(v int)
			dfs = func(v int) {
				if found >= maxCyclesPerSCC {
					truncated = true
					return
				}
				path = append(path, v)
				onPath[v] = true
				for _, w := range g.adj[v] {
					if !inComp[w] {
						continue
					}
					if w == start {
						cyc := g.rotated(path)
						if key := cycleKey(cyc); !seen[key] {
							seen[key] = true
							cycles = append(cycles, cyc)
							found++
						}
					} else if !onPath[w] && w > start {
						// Only visit vertices after start to avoid
						// emitting each cycle once per rotation.
						dfs(w)
					}
				}
				path = path[:len(path)-1]
				delete(onPath, v)
			}
			dfs(start)
		}

		if truncated {
			report.TruncatedSCCs++
		}
	}

	return cycles
}

// rotated renders a vertex path as a closed cycle starting from its
// lexicographically smallest vertex.
func (g *digraph) rotated(path []int) []string {
	names := make([]string, len(path))
	minIdx := 0
	for i, v := range path {
		names[i] = g.names[v]
		if names[i] < names[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(names)+1)
	out = append(out, names[minIdx:]...)
	out = append(out, names[:minIdx]...)
	out = append(out, names[minIdx])
	return out
}

func cycleKey(cyc []string) string {
	key := ""
	for _, v := range cyc {
		key += v + "→"
	}
	return key
}
