package graph

import (
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Analysis summarizes the shape of a dependency graph.
type Analysis struct {
	// Workstreams are the weakly connected components, each sorted by id.
	Workstreams [][]string `json:"workstreams"`
	// Tangles are the strongly connected components with more than one task.
	// A non-empty list means the graph is cyclic.
	Tangles [][]string `json:"tangles,omitempty"`
}

// Analyze computes connected and strongly connected components with gonum.
func Analyze(g *Graph) *Analysis {
	dg := simple.NewDirectedGraph()
	ug := simple.NewUndirectedGraph()
	for i := range g.nodes {
		dg.AddNode(simple.Node(int64(i)))
		ug.AddNode(simple.Node(int64(i)))
	}
	for i := range g.nodes {
		for _, e := range g.out[i] {
			to := int64(g.index[g.edges[e].To])
			from := int64(i)
			if !dg.HasEdgeFromTo(from, to) {
				dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
			}
			if !ug.HasEdgeBetween(from, to) {
				ug.SetEdge(ug.NewEdge(ug.Node(from), ug.Node(to)))
			}
		}
	}

	a := &Analysis{Workstreams: g.componentIDs(topo.ConnectedComponents(ug))}
	for _, scc := range g.componentIDs(topo.TarjanSCC(dg)) {
		if len(scc) > 1 {
			a.Tangles = append(a.Tangles, scc)
		}
	}
	return a
}

// componentIDs maps gonum node sets back to sorted task ids, ordering the
// components by their first id.
func (g *Graph) componentIDs(components [][]gonum.Node) [][]string {
	out := make([][]string, 0, len(components))
	for _, c := range components {
		ids := make([]string, len(c))
		for i, n := range c {
			ids[i] = g.nodes[n.ID()].ID
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return out
}
