package graph

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/Iron-Ham/gantry/internal/errors"
)

// Graph holds the tasks and dependencies of one project.
type Graph struct {
	nodes []TaskNode
	index map[string]int
	edges []DependencyEdge

	// out and in hold indices into edges for every wired edge.
	out [][]int
	in  [][]int

	duplicateTasks []string
}

// Build constructs a graph and rejects structural problems: a duplicate task
// id, a negative duration, an unknown dependency type, an edge naming an
// unknown task, a self-loop, or a repeated (from, to, type) triple.
// Cycles are not detected here; see TopologicalOrder and Validate.
func Build(nodes []TaskNode, edges []DependencyEdge) (*Graph, error) {
	g := newGraph(len(nodes), len(edges))

	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			return nil, errors.NewGraphError("task listed twice", errors.ErrDuplicateTask).WithTaskID(n.ID)
		}
		if n.DurationDays < 0 {
			return nil, errors.NewValidationError("duration must be non-negative").
				WithField("duration_days").
				WithValue(n.DurationDays)
		}
		g.addNode(n)
	}

	seen := make(map[edgeKey]struct{}, len(edges))
	for _, e := range edges {
		e.Type = e.typeOrDefault()
		if !e.Type.Valid() {
			return nil, errors.NewGraphError("invalid dependency", errors.ErrInvalidInput).
				WithEdge(e.From, e.To, string(e.Type))
		}
		if _, ok := g.index[e.From]; !ok {
			return nil, errors.NewGraphError("invalid dependency", errors.ErrUnknownTask).
				WithEdge(e.From, e.To, string(e.Type)).
				WithTaskID(e.From)
		}
		if _, ok := g.index[e.To]; !ok {
			return nil, errors.NewGraphError("invalid dependency", errors.ErrUnknownTask).
				WithEdge(e.From, e.To, string(e.Type)).
				WithTaskID(e.To)
		}
		if e.From == e.To {
			return nil, errors.NewGraphError("invalid dependency", errors.ErrSelfLoop).
				WithEdge(e.From, e.To, string(e.Type))
		}
		if _, dup := seen[e.key()]; dup {
			return nil, errors.NewGraphError("invalid dependency", errors.ErrDuplicateEdge).
				WithEdge(e.From, e.To, string(e.Type))
		}
		seen[e.key()] = struct{}{}
		g.addEdge(e, true)
	}

	return g, nil
}

// Load constructs a graph without rejecting anything. Every edge is kept,
// but only edges whose endpoints both exist, that are not self-loops, and
// that are the first occurrence of their (from, to, type) triple are wired
// into the adjacency lists. The first task with a given id wins.
// Load is the entry point for Validate.
func Load(nodes []TaskNode, edges []DependencyEdge) *Graph {
	g := newGraph(len(nodes), len(edges))

	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			g.duplicateTasks = append(g.duplicateTasks, n.ID)
			continue
		}
		g.addNode(n)
	}

	seen := make(map[edgeKey]struct{}, len(edges))
	for _, e := range edges {
		e.Type = e.typeOrDefault()
		_, fromOK := g.index[e.From]
		_, toOK := g.index[e.To]
		_, dup := seen[e.key()]
		wire := fromOK && toOK && e.From != e.To && !dup
		if wire {
			seen[e.key()] = struct{}{}
		}
		g.addEdge(e, wire)
	}

	return g
}

func newGraph(nodeCap, edgeCap int) *Graph {
	return &Graph{
		nodes: make([]TaskNode, 0, nodeCap),
		index: make(map[string]int, nodeCap),
		edges: make([]DependencyEdge, 0, edgeCap),
	}
}

func (g *Graph) addNode(n TaskNode) {
	n.AssigneeIDs = dedupe(n.AssigneeIDs)
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
}

func (g *Graph) addEdge(e DependencyEdge, wire bool) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	if !wire {
		return
	}
	from, to := g.index[e.From], g.index[e.To]
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

// dedupe removes repeated and empty ids while keeping the first-seen order.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the task with the given id.
func (g *Graph) Node(id string) (TaskNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return TaskNode{}, false
	}
	return g.nodes[i], true
}

// Has reports whether a task with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns the tasks in insertion order.
func (g *Graph) Nodes() []TaskNode {
	return slices.Clone(g.nodes)
}

// IDs returns the task ids sorted ascending.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}

// Edges returns every edge handed to the graph, including unwired ones.
func (g *Graph) Edges() []DependencyEdge {
	return slices.Clone(g.edges)
}

// Outgoing returns the wired edges whose prerequisite is id.
func (g *Graph) Outgoing(id string) []DependencyEdge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.collect(g.out[i])
}

// Incoming returns the wired edges whose dependent is id.
func (g *Graph) Incoming(id string) []DependencyEdge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.collect(g.in[i])
}

func (g *Graph) collect(idx []int) []DependencyEdge {
	out := make([]DependencyEdge, len(idx))
	for i, e := range idx {
		out[i] = g.edges[e]
	}
	return out
}

// Roots returns the ids of tasks without wired predecessors, sorted.
func (g *Graph) Roots() []string {
	var ids []string
	for i, n := range g.nodes {
		if len(g.in[i]) == 0 {
			ids = append(ids, n.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Sinks returns the ids of tasks without wired successors, sorted.
func (g *Graph) Sinks() []string {
	var ids []string
	for i, n := range g.nodes {
		if len(g.out[i]) == 0 {
			ids = append(ids, n.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// DuplicateTaskIDs returns ids that Load saw more than once.
func (g *Graph) DuplicateTaskIDs() []string {
	return slices.Clone(g.duplicateTasks)
}

// TopologicalOrder returns the task ids so that every prerequisite precedes
// its dependents. Among tasks that are ready at the same time the smaller id
// comes first, so the order is stable across runs. A cycle yields a
// CycleError listing the tasks that could not be ordered.
func (g *Graph) TopologicalOrder() ([]string, error) {
	return g.PriorityOrder(func(a, b TaskNode) int { return cmp.Compare(a.ID, b.ID) })
}

// PriorityOrder is TopologicalOrder with a caller-chosen ordering of the
// ready set. compare must be a strict order; ties are broken by id.
func (g *Graph) PriorityOrder(compare func(a, b TaskNode) int) ([]string, error) {
	inDegree := make([]int, len(g.nodes))
	for i := range g.nodes {
		inDegree[i] = len(g.in[i])
	}

	ready := &readyQueue{nodes: g.nodes, compare: compare}
	for i, deg := range inDegree {
		if deg == 0 {
			ready.items = append(ready.items, i)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, g.nodes[i].ID)
		for _, e := range g.out[i] {
			to := g.index[g.edges[e].To]
			inDegree[to]--
			if inDegree[to] == 0 {
				heap.Push(ready, to)
			}
		}
	}

	if len(order) < len(g.nodes) {
		var stuck []string
		for i, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, g.nodes[i].ID)
			}
		}
		slices.Sort(stuck)
		return nil, errors.NewCycleError("topological order", stuck)
	}
	return order, nil
}

// readyQueue is a heap of node indices ordered by compare, then id.
type readyQueue struct {
	items   []int
	nodes   []TaskNode
	compare func(a, b TaskNode) int
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(i, j int) bool {
	a, b := q.nodes[q.items[i]], q.nodes[q.items[j]]
	if c := q.compare(a, b); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (q *readyQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *readyQueue) Push(x any) { q.items = append(q.items, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}
