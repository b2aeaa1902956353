package graph

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidate_Cycle(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1), task("C", 1)},
		[]DependencyEdge{fs("A", "B"), fs("B", "C"), fs("C", "A")},
	)

	r := Validate(g, ValidateOptions{})
	if r.Valid {
		t.Error("Valid = true, want false")
	}
	want := [][]string{{"A", "B", "C"}}
	if !reflect.DeepEqual(r.Circular, want) {
		t.Errorf("Circular = %v, want %v", r.Circular, want)
	}
}

func TestValidate_CanonicalRotation(t *testing.T) {
	// The search enters the cycle at C from A, so the stack holds C, D, B.
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1), task("C", 1), task("D", 1)},
		[]DependencyEdge{fs("A", "C"), fs("C", "D"), fs("D", "B"), fs("B", "C")},
	)

	r := Validate(g, ValidateOptions{})
	want := [][]string{{"B", "C", "D"}}
	if !reflect.DeepEqual(r.Circular, want) {
		t.Errorf("Circular = %v, want %v", r.Circular, want)
	}
}

func TestValidate_Orphaned(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1)},
		[]DependencyEdge{fs("A", "B"), fs("A", "GONE"), fs("GHOST", "B")},
	)

	r := Validate(g, ValidateOptions{})
	if r.Valid {
		t.Error("Valid = true, want false")
	}
	want := []DependencyEdge{fs("A", "GONE"), fs("GHOST", "B")}
	if !reflect.DeepEqual(r.Orphaned, want) {
		t.Errorf("Orphaned = %v, want %v", r.Orphaned, want)
	}
	if len(r.Circular) != 0 {
		t.Errorf("Circular = %v, want none", r.Circular)
	}
}

func TestValidate_SelfLoopAndDuplicates(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1)},
		[]DependencyEdge{fs("A", "A"), fs("A", "A"), fs("A", "B"), {From: "A", To: "B"}},
	)

	r := Validate(g, ValidateOptions{})
	if !reflect.DeepEqual(r.Circular, [][]string{{"A"}}) {
		t.Errorf("Circular = %v, want [[A]]", r.Circular)
	}
	if len(r.Duplicates) != 1 {
		t.Errorf("Duplicates = %v, want one entry", r.Duplicates)
	}
	if r.Valid {
		t.Error("Valid = true, want false")
	}
}

func TestValidate_Valid(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 3), task("B", 2), task("C", 4)},
		[]DependencyEdge{fs("A", "B"), fs("B", "C")},
	)

	r := Validate(g, ValidateOptions{})
	if !r.Valid {
		t.Errorf("Valid = false, report: %+v", r)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", r.Warnings)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1), task("C", 1), task("D", 1), task("E", 1)},
		[]DependencyEdge{
			fs("A", "B"), fs("B", "A"),
			fs("C", "D"), fs("D", "E"), fs("E", "C"),
			fs("E", "X"),
		},
	)

	first := Validate(g, ValidateOptions{})
	second := Validate(g, ValidateOptions{})
	if !reflect.DeepEqual(first.Circular, second.Circular) {
		t.Errorf("Circular differs between runs: %v vs %v", first.Circular, second.Circular)
	}
	if !reflect.DeepEqual(first.Orphaned, second.Orphaned) {
		t.Errorf("Orphaned differs between runs: %v vs %v", first.Orphaned, second.Orphaned)
	}
	if len(first.Circular) != 2 {
		t.Errorf("Circular = %v, want two cycles", first.Circular)
	}
}

func TestValidate_LargeChainDoesNotRecurse(t *testing.T) {
	const n = 50000
	nodes := make([]TaskNode, n)
	edges := make([]DependencyEdge, 0, n)
	for i := range nodes {
		nodes[i] = task(idFor(i), 1)
		if i > 0 {
			edges = append(edges, fs(idFor(i-1), idFor(i)))
		}
	}
	edges = append(edges, fs(idFor(n-1), idFor(0)))

	r := Validate(Load(nodes, edges), ValidateOptions{})
	if len(r.Circular) != 1 || len(r.Circular[0]) != n {
		t.Errorf("expected one cycle through all %d tasks", n)
	}
}

func idFor(i int) string {
	const digits = "0123456789"
	b := []byte("T00000")
	for p := len(b) - 1; p > 0 && i > 0; p-- {
		b[p] = digits[i%10]
		i /= 10
	}
	return string(b)
}

func TestValidate_Warnings(t *testing.T) {
	g := Load(
		[]TaskNode{
			task("A", 2),
			task("B", 3),
			{ID: "M", AssigneeIDs: []string{"r1"}},
			task("Lonely", 1),
		},
		[]DependencyEdge{
			{From: "A", To: "B", LagDays: 45},
			{From: "A", To: "M", Type: StartToStart, LagDays: -5},
		},
	)

	r := Validate(g, ValidateOptions{MaxLagDays: 30})
	if !r.Valid {
		t.Errorf("warnings must not affect validity: %+v", r)
	}

	wantFragments := []string{
		"task Lonely has no dependencies",
		"A -> B has a lag of 45 days",
		"A -> M has a lead of 5 days",
		"milestone M has assignees",
	}
	joined := strings.Join(r.Warnings, "\n")
	for _, frag := range wantFragments {
		if !strings.Contains(joined, frag) {
			t.Errorf("warnings missing %q:\n%s", frag, joined)
		}
	}
}

func TestValidate_RejectsWhatBuildRejects(t *testing.T) {
	tests := []struct {
		name  string
		nodes []TaskNode
		edges []DependencyEdge
		check func(t *testing.T, r *ValidationReport)
	}{
		{
			name:  "unknown dependency type",
			nodes: []TaskNode{task("A", 1), task("B", 1)},
			edges: []DependencyEdge{{From: "A", To: "B", Type: "bogus"}},
			check: func(t *testing.T, r *ValidationReport) {
				want := []DependencyEdge{{From: "A", To: "B", Type: "bogus"}}
				if !reflect.DeepEqual(r.UnknownTypes, want) {
					t.Errorf("UnknownTypes = %v, want %v", r.UnknownTypes, want)
				}
			},
		},
		{
			name:  "negative duration",
			nodes: []TaskNode{task("A", 2), task("B", -3)},
			edges: []DependencyEdge{fs("A", "B")},
			check: func(t *testing.T, r *ValidationReport) {
				if !reflect.DeepEqual(r.NegativeDurations, []string{"B"}) {
					t.Errorf("NegativeDurations = %v, want [B]", r.NegativeDurations)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(Load(tt.nodes, tt.edges), ValidateOptions{})
			if r.Valid {
				t.Error("Valid = true, want false")
			}
			tt.check(t, r)
			if _, err := Build(tt.nodes, tt.edges); err == nil {
				t.Error("Build() accepted a graph that Validate rejects")
			}
		})
	}
}
