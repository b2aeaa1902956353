package graph

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationReport describes every dependency problem found in a graph.
// A report is Valid when it lists no problem at all, so that a valid graph
// always passes Build. Warnings never affect validity.
type ValidationReport struct {
	Valid          bool             `json:"valid"`
	Circular       [][]string       `json:"circular"`
	Orphaned       []DependencyEdge `json:"orphaned"`
	Duplicates     []DependencyEdge `json:"duplicates"`
	DuplicateTasks []string         `json:"duplicate_tasks,omitempty"`
	// UnknownTypes are edges whose dependency type is not one of the four.
	UnknownTypes []DependencyEdge `json:"unknown_types"`
	// NegativeDurations are tasks with a duration below zero.
	NegativeDurations []string `json:"negative_durations"`
	Warnings          []string `json:"warnings"`
}

// ValidateOptions tunes the warnings emitted by Validate.
type ValidateOptions struct {
	// MaxLagDays flags dependencies whose lag magnitude exceeds it. 0 disables the check.
	MaxLagDays int
}

// Validate inspects g for circular, orphaned and duplicate dependencies.
// It never fails: problems are collected into the report. Graphs built with
// Load keep orphaned and duplicate edges for this purpose. The output is
// identical across runs for the same input.
func Validate(g *Graph, opts ValidateOptions) *ValidationReport {
	r := &ValidationReport{
		Circular:       [][]string{},
		Orphaned:       []DependencyEdge{},
		Duplicates:     []DependencyEdge{},
		DuplicateTasks: g.DuplicateTaskIDs(),
		UnknownTypes:   []DependencyEdge{},
		Warnings:       []string{},
	}
	r.NegativeDurations = []string{}
	for _, id := range g.IDs() {
		if n, _ := g.Node(id); n.DurationDays < 0 {
			r.NegativeDurations = append(r.NegativeDurations, id)
		}
	}

	cycles := newCycleSet()

	// Orphan pre-pass: edges naming a task outside the node set.
	seen := make(map[edgeKey]struct{}, len(g.edges))
	for _, e := range g.edges {
		if !e.Type.Valid() {
			r.UnknownTypes = append(r.UnknownTypes, e)
		}
		if !g.Has(e.From) || !g.Has(e.To) {
			r.Orphaned = append(r.Orphaned, e)
			continue
		}
		if e.From == e.To {
			cycles.add([]string{e.From})
			continue
		}
		if _, dup := seen[e.key()]; dup {
			r.Duplicates = append(r.Duplicates, e)
			continue
		}
		seen[e.key()] = struct{}{}
	}

	for _, c := range findCycles(g) {
		cycles.add(c)
	}
	r.Circular = cycles.list

	r.Warnings = append(r.Warnings, warnings(g, opts)...)

	r.Valid = len(r.Circular) == 0 &&
		len(r.Orphaned) == 0 &&
		len(r.Duplicates) == 0 &&
		len(r.DuplicateTasks) == 0 &&
		len(r.UnknownTypes) == 0 &&
		len(r.NegativeDurations) == 0
	return r
}

// dfsFrame is one entry of the explicit DFS stack: a node and the position
// of the next successor to visit.
type dfsFrame struct {
	node int
	next int
}

const (
	white = iota
	gray
	black
)

// findCycles runs an iterative three-colour depth-first search. Roots are
// visited in id order and successors are sorted, so the result is
// deterministic. A back edge to a gray node closes a cycle, which is read
// off the stack from the target up to the top.
func findCycles(g *Graph) [][]string {
	succ := sortedSuccessors(g)
	color := make([]int, len(g.nodes))
	stackPos := make([]int, len(g.nodes))

	order := make([]int, len(g.nodes))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return strings.Compare(g.nodes[a].ID, g.nodes[b].ID) })

	var cycles [][]string
	var stack []dfsFrame

	for _, root := range order {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stackPos[root] = 0
		stack = append(stack[:0], dfsFrame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(succ[top.node]) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := succ[top.node][top.next]
			top.next++

			switch color[v] {
			case white:
				color[v] = gray
				stackPos[v] = len(stack)
				stack = append(stack, dfsFrame{node: v})
			case gray:
				frames := stack[stackPos[v]:]
				cycle := make([]string, len(frames))
				for i, f := range frames {
					cycle[i] = g.nodes[f.node].ID
				}
				cycles = append(cycles, cycle)
			}
		}
	}
	return cycles
}

// sortedSuccessors returns, per node, the distinct successor indices in id order.
func sortedSuccessors(g *Graph) [][]int {
	succ := make([][]int, len(g.nodes))
	for i := range g.nodes {
		for _, e := range g.out[i] {
			to := g.index[g.edges[e].To]
			if !slices.Contains(succ[i], to) {
				succ[i] = append(succ[i], to)
			}
		}
		slices.SortFunc(succ[i], func(a, b int) int { return strings.Compare(g.nodes[a].ID, g.nodes[b].ID) })
	}
	return succ
}

// cycleSet keeps cycles unique up to rotation.
type cycleSet struct {
	keys map[string]struct{}
	list [][]string
}

func newCycleSet() *cycleSet {
	return &cycleSet{keys: make(map[string]struct{}), list: [][]string{}}
}

func (s *cycleSet) add(cycle []string) {
	c := canonicalRotation(cycle)
	key := strings.Join(c, "\x00")
	if _, ok := s.keys[key]; ok {
		return
	}
	s.keys[key] = struct{}{}
	s.list = append(s.list, c)
}

// canonicalRotation rotates cycle so that its smallest id comes first.
func canonicalRotation(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[start:]...)
	return append(out, cycle[:start]...)
}

func warnings(g *Graph, opts ValidateOptions) []string {
	var out []string

	if g.Len() > 1 {
		for _, id := range g.IDs() {
			i := g.index[id]
			if len(g.in[i]) == 0 && len(g.out[i]) == 0 {
				out = append(out, fmt.Sprintf("task %s has no dependencies", id))
			}
		}
	}

	for _, e := range g.edges {
		from, ok := g.Node(e.From)
		if !ok || !g.Has(e.To) || e.From == e.To {
			continue
		}
		if opts.MaxLagDays > 0 && abs(e.LagDays) > opts.MaxLagDays {
			out = append(out, fmt.Sprintf("dependency %s -> %s has a lag of %d days (limit %d)",
				e.From, e.To, e.LagDays, opts.MaxLagDays))
		}
		if e.LagDays < 0 && -e.LagDays > from.DurationDays {
			out = append(out, fmt.Sprintf("dependency %s -> %s has a lead of %d days, longer than %s itself",
				e.From, e.To, -e.LagDays, e.From))
		}
	}

	for _, id := range g.IDs() {
		n, _ := g.Node(id)
		if n.IsMilestone() && len(n.AssigneeIDs) > 0 {
			out = append(out, fmt.Sprintf("milestone %s has assignees", id))
		}
	}

	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
