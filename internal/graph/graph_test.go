package graph

import (
	"reflect"
	"testing"

	"github.com/Iron-Ham/gantry/internal/errors"
)

func task(id string, duration int) TaskNode {
	return TaskNode{ID: id, DurationDays: duration}
}

func fs(from, to string) DependencyEdge {
	return DependencyEdge{From: from, To: to, Type: FinishToStart}
}

func TestParseDependencyType(t *testing.T) {
	tests := []struct {
		in      string
		want    DependencyType
		wantErr bool
	}{
		{"", FinishToStart, false},
		{"finish_to_start", FinishToStart, false},
		{"SS", StartToStart, false},
		{" ff ", FinishToFinish, false},
		{"start_to_finish", StartToFinish, false},
		{"before", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDependencyType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDependencyType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDependencyType(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error should match ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTaskNode_PinnedWindow(t *testing.T) {
	start, end := 2, 7
	tests := []struct {
		name       string
		node       TaskNode
		wantStart  int
		wantFinish int
		wantOK     bool
	}{
		{"unpinned", TaskNode{DurationDays: 3}, 0, 0, false},
		{"start only", TaskNode{DurationDays: 3, FixedStart: &start}, 2, 5, true},
		{"end only", TaskNode{DurationDays: 3, FixedEnd: &end}, 4, 7, true},
		{"both", TaskNode{DurationDays: 3, FixedStart: &start, FixedEnd: &end}, 2, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f, ok := tt.node.PinnedWindow()
			if s != tt.wantStart || f != tt.wantFinish || ok != tt.wantOK {
				t.Errorf("PinnedWindow() = %d, %d, %v; want %d, %d, %v",
					s, f, ok, tt.wantStart, tt.wantFinish, tt.wantOK)
			}
		})
	}
}

func TestDependencyEdge_String(t *testing.T) {
	tests := []struct {
		edge DependencyEdge
		want string
	}{
		{fs("A", "B"), "A -> B (FS)"},
		{DependencyEdge{From: "A", To: "B", Type: StartToStart, LagDays: 2}, "A -> B (SS+2)"},
		{DependencyEdge{From: "A", To: "B", LagDays: -1}, "A -> B (FS-1)"},
	}
	for _, tt := range tests {
		if got := tt.edge.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	g, err := Build(
		[]TaskNode{task("A", 3), task("B", 2), {ID: "C", DurationDays: 4, AssigneeIDs: []string{"r1", "r1", ""}}},
		[]DependencyEdge{{From: "A", To: "B"}, fs("B", "C"), {From: "A", To: "C", Type: StartToStart}},
	)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if got := g.Outgoing("A"); len(got) != 2 {
		t.Errorf("Outgoing(A) has %d edges, want 2", len(got))
	}
	if got := g.Incoming("C"); len(got) != 2 {
		t.Errorf("Incoming(C) has %d edges, want 2", len(got))
	}
	if got := g.Outgoing("A")[0].Type; got != FinishToStart {
		t.Errorf("empty type should default to finish_to_start, got %q", got)
	}
	if got := g.Outgoing("missing"); got != nil {
		t.Errorf("Outgoing(missing) = %v, want nil", got)
	}
	if !reflect.DeepEqual(g.Roots(), []string{"A"}) {
		t.Errorf("Roots() = %v, want [A]", g.Roots())
	}
	if !reflect.DeepEqual(g.Sinks(), []string{"C"}) {
		t.Errorf("Sinks() = %v, want [C]", g.Sinks())
	}
	c, ok := g.Node("C")
	if !ok {
		t.Fatal("Node(C) not found")
	}
	if !reflect.DeepEqual(c.AssigneeIDs, []string{"r1"}) {
		t.Errorf("AssigneeIDs = %v, want deduplicated [r1]", c.AssigneeIDs)
	}
}

func TestBuild_Errors(t *testing.T) {
	nodes := []TaskNode{task("A", 1), task("B", 1)}

	tests := []struct {
		name   string
		nodes  []TaskNode
		edges  []DependencyEdge
		target error
	}{
		{"unknown from", nodes, []DependencyEdge{fs("Z", "B")}, errors.ErrUnknownTask},
		{"unknown to", nodes, []DependencyEdge{fs("A", "Z")}, errors.ErrUnknownTask},
		{"self loop", nodes, []DependencyEdge{fs("A", "A")}, errors.ErrSelfLoop},
		{"duplicate edge", nodes, []DependencyEdge{fs("A", "B"), {From: "A", To: "B"}}, errors.ErrDuplicateEdge},
		{"duplicate task", []TaskNode{task("A", 1), task("A", 2)}, nil, errors.ErrDuplicateTask},
		{"negative duration", []TaskNode{task("A", -1)}, nil, errors.ErrInvalidInput},
		{"unknown type", nodes, []DependencyEdge{{From: "A", To: "B", Type: "after"}}, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.nodes, tt.edges)
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if g != nil {
				t.Error("Build() returned a graph alongside an error")
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("error %v does not match %v", err, tt.target)
			}
			if errors.ExitCode(err) != errors.ExitValidation {
				t.Errorf("ExitCode() = %d, want %d", errors.ExitCode(err), errors.ExitValidation)
			}
		})
	}
}

func TestBuild_ParallelEdgesOfDifferentType(t *testing.T) {
	_, err := Build(
		[]TaskNode{task("A", 1), task("B", 1)},
		[]DependencyEdge{fs("A", "B"), {From: "A", To: "B", Type: StartToStart}},
	)
	if err != nil {
		t.Errorf("edges of different type between one pair should be allowed: %v", err)
	}
}

func TestLoad_KeepsInvalidEdges(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1), task("A", 5)},
		[]DependencyEdge{fs("A", "B"), fs("A", "B"), fs("B", "Z"), fs("B", "B")},
	)

	if got := len(g.Edges()); got != 4 {
		t.Errorf("Edges() has %d edges, want 4", got)
	}
	if got := len(g.Outgoing("A")); got != 1 {
		t.Errorf("Outgoing(A) has %d edges, want 1 (duplicate not wired)", got)
	}
	if got := len(g.Outgoing("B")); got != 0 {
		t.Errorf("Outgoing(B) has %d edges, want 0", got)
	}
	if a, _ := g.Node("A"); a.DurationDays != 1 {
		t.Errorf("first task with a given id should win, got duration %d", a.DurationDays)
	}
	if !reflect.DeepEqual(g.DuplicateTaskIDs(), []string{"A"}) {
		t.Errorf("DuplicateTaskIDs() = %v, want [A]", g.DuplicateTaskIDs())
	}
}

func TestTopologicalOrder(t *testing.T) {
	g, err := Build(
		[]TaskNode{task("D", 1), task("C", 1), task("B", 1), task("A", 1)},
		[]DependencyEdge{fs("A", "C"), fs("B", "C"), fs("C", "D")},
	)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error: %v", err)
	}
	want := []string{"A", "B", "C", "D"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("TopologicalOrder() = %v, want %v", order, want)
	}
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g, err := Build(
		[]TaskNode{task("A", 1), task("B", 1), task("C", 1), task("D", 1)},
		[]DependencyEdge{fs("D", "A"), fs("A", "B"), fs("B", "C"), fs("C", "A")},
	)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	order, err := g.TopologicalOrder()
	if order != nil {
		t.Errorf("TopologicalOrder() returned partial order %v", order)
	}
	var cycleErr *errors.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("error = %v, want CycleError", err)
	}
	if !reflect.DeepEqual(cycleErr.TaskIDs, []string{"A", "B", "C"}) {
		t.Errorf("TaskIDs = %v, want [A B C]", cycleErr.TaskIDs)
	}
}

func TestPriorityOrder(t *testing.T) {
	g, err := Build(
		[]TaskNode{task("A", 1), task("B", 5), task("C", 3), task("D", 1)},
		[]DependencyEdge{fs("A", "D")},
	)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	longestFirst := func(a, b TaskNode) int { return b.DurationDays - a.DurationDays }
	order, err := g.PriorityOrder(longestFirst)
	if err != nil {
		t.Fatalf("PriorityOrder() error: %v", err)
	}
	want := []string{"B", "C", "A", "D"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("PriorityOrder() = %v, want %v", order, want)
	}
}
