package graph

import (
	"reflect"
	"testing"
)

func TestAnalyze(t *testing.T) {
	g := Load(
		[]TaskNode{task("A", 1), task("B", 1), task("C", 1), task("D", 1), task("E", 1), task("F", 1)},
		[]DependencyEdge{
			fs("A", "B"), {From: "A", To: "B", Type: StartToStart},
			fs("C", "D"), fs("D", "E"), fs("E", "C"),
		},
	)

	a := Analyze(g)

	wantStreams := [][]string{{"A", "B"}, {"C", "D", "E"}, {"F"}}
	if !reflect.DeepEqual(a.Workstreams, wantStreams) {
		t.Errorf("Workstreams = %v, want %v", a.Workstreams, wantStreams)
	}
	wantTangles := [][]string{{"C", "D", "E"}}
	if !reflect.DeepEqual(a.Tangles, wantTangles) {
		t.Errorf("Tangles = %v, want %v", a.Tangles, wantTangles)
	}
}

func TestAnalyze_Acyclic(t *testing.T) {
	g, err := Build([]TaskNode{task("A", 1), task("B", 1)}, []DependencyEdge{fs("A", "B")})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	a := Analyze(g)
	if len(a.Tangles) != 0 {
		t.Errorf("Tangles = %v, want none", a.Tangles)
	}
	if len(a.Workstreams) != 1 {
		t.Errorf("Workstreams = %v, want one", a.Workstreams)
	}
}
