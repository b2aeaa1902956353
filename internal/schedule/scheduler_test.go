package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/cpm"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/graph"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

func node(id string, duration int, assignees ...string) graph.TaskNode {
	return graph.TaskNode{ID: id, DurationDays: duration, AssigneeIDs: assignees}
}

func fs(from, to string, lag int) graph.DependencyEdge {
	return graph.DependencyEdge{From: from, To: to, Type: graph.FinishToStart, LagDays: lag}
}

func mustBuild(t *testing.T, nodes []graph.TaskNode, edges []graph.DependencyEdge) *graph.Graph {
	t.Helper()
	g, err := graph.Build(nodes, edges)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func mustSchedule(t *testing.T, g *graph.Graph, opts Options) *Result {
	t.Helper()
	res, err := Schedule(g, opts)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	return res
}

func assertWindow(t *testing.T, res *Result, id string, start, finish int) {
	t.Helper()
	task, ok := res.Task(id)
	if !ok {
		t.Fatalf("task %s missing from result", id)
	}
	if task.Start != start || task.Finish != finish {
		t.Errorf("%s = [%d,%d), want [%d,%d)", id, task.Start, task.Finish, start, finish)
	}
}

func TestSchedule_Chain(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 3), node("B", 2), node("C", 4)},
		[]graph.DependencyEdge{fs("A", "B", 0), fs("B", "C", 1)},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "A", 0, 3)
	assertWindow(t, res, "B", 3, 5)
	assertWindow(t, res, "C", 6, 10)

	if res.ProjectStart != 0 || res.ProjectFinish != 10 {
		t.Errorf("project = [%d,%d), want [0,10)", res.ProjectStart, res.ProjectFinish)
	}
	if len(res.Changes) != 3 {
		t.Errorf("Changes = %d, want 3 (no planned dates)", len(res.Changes))
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestSchedule_PinConflict(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("Y", 10), {ID: "X", DurationDays: 2, FixedStart: intp(5)}},
		[]graph.DependencyEdge{fs("Y", "X", 0)},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "X", 5, 7)

	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %v, want one", res.Conflicts)
	}
	c := res.Conflicts[0]
	if c.TaskID != "X" || c.RequiredDay != 10 || c.PinnedDay != 5 || c.Predecessor != "Y" {
		t.Errorf("conflict = %+v", c)
	}
	if c.Kind != ConflictDependency {
		t.Errorf("Kind = %q, want %q", c.Kind, ConflictDependency)
	}
	if x, _ := res.Task("X"); !x.Pinned {
		t.Error("X should be marked pinned")
	}
}

func TestSchedule_PinnedFinishConflict(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 6), {ID: "B", DurationDays: 2, FixedEnd: intp(4)}},
		[]graph.DependencyEdge{{From: "A", To: "B", Type: graph.FinishToFinish}},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "B", 2, 4)
	if len(res.Conflicts) != 1 || res.Conflicts[0].RequiredDay != 6 || res.Conflicts[0].PinnedDay != 4 {
		t.Errorf("Conflicts = %+v, want finish conflict 6 vs 4", res.Conflicts)
	}
}

func TestSchedule_PinnedStartAndFinishConflicts(t *testing.T) {
	// Y binds X's start and Z binds its finish; both pins are violated.
	g := mustBuild(t,
		[]graph.TaskNode{
			node("Y", 6),
			node("Z", 9),
			{ID: "X", DurationDays: 3, FixedStart: intp(2), FixedEnd: intp(5)},
		},
		[]graph.DependencyEdge{
			fs("Y", "X", 0),
			{From: "Z", To: "X", Type: graph.FinishToFinish},
		},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "X", 2, 5)

	if len(res.Conflicts) != 2 {
		t.Fatalf("Conflicts = %+v, want start and finish conflicts", res.Conflicts)
	}
	byPred := map[string]Conflict{}
	for _, c := range res.Conflicts {
		byPred[c.Predecessor] = c
	}
	if c := byPred["Y"]; c.RequiredDay != 6 || c.PinnedDay != 2 {
		t.Errorf("start conflict = %+v, want 6 vs 2", c)
	}
	if c := byPred["Z"]; c.RequiredDay != 9 || c.PinnedDay != 5 {
		t.Errorf("finish conflict = %+v, want 9 vs 5", c)
	}
}

func TestSchedule_BothPinsMatchCriticalPath(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{{ID: "A", DurationDays: 3, FixedStart: intp(2), FixedEnd: intp(7)}, node("B", 1)},
		[]graph.DependencyEdge{fs("A", "B", 0)},
	)

	res := mustSchedule(t, g, DefaultOptions())
	analysis, err := cpm.Compute(g, cpm.Options{})
	if err != nil {
		t.Fatalf("cpm.Compute() error: %v", err)
	}
	for _, id := range []string{"A", "B"} {
		task, _ := res.Task(id)
		ts := analysis.Tasks[id]
		if task.Start != ts.ES || task.Finish != ts.EF {
			t.Errorf("%s scheduled [%d,%d), critical path says [%d,%d)", id, task.Start, task.Finish, ts.ES, ts.EF)
		}
	}
	assertWindow(t, res, "B", 7, 8)
}

func TestSchedule_PinnedSuccessorsFollowPin(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("Y", 10), {ID: "X", DurationDays: 2, FixedStart: intp(5)}, node("Z", 1)},
		[]graph.DependencyEdge{fs("Y", "X", 0), fs("X", "Z", 0)},
	)

	res := mustSchedule(t, g, DefaultOptions())
	// Propagation continues from the pinned dates.
	assertWindow(t, res, "Z", 7, 8)
}

func TestSchedule_TypedConstraints(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 4), node("B", 3), node("C", 2), node("D", 2)},
		[]graph.DependencyEdge{
			{From: "A", To: "B", Type: graph.StartToStart, LagDays: 2},
			{From: "A", To: "C", Type: graph.FinishToFinish, LagDays: 1},
			{From: "A", To: "D", Type: graph.StartToFinish, LagDays: 6},
		},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "B", 2, 5)
	assertWindow(t, res, "C", 3, 5)
	assertWindow(t, res, "D", 4, 6)
}

func TestSchedule_AvoidWeekends(t *testing.T) {
	holiday := monday.AddDate(0, 0, 8) // second Tuesday
	cal := calendar.New(monday, []time.Time{holiday})
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 3), node("B", 4), node("C", 1)},
		[]graph.DependencyEdge{fs("A", "B", 0), fs("B", "C", 0)},
	)

	opts := DefaultOptions()
	opts.AvoidWeekends = true
	opts.Calendar = cal
	res := mustSchedule(t, g, opts)

	assertWindow(t, res, "A", 0, 3)
	// Thu, Fri, Mon, (holiday Tue), Wed.
	assertWindow(t, res, "B", 3, 10)
	assertWindow(t, res, "C", 10, 11)
}

func TestSchedule_AvoidWeekendsFromSaturdayAnchor(t *testing.T) {
	saturday := monday.AddDate(0, 0, -2)
	g := mustBuild(t, []graph.TaskNode{node("A", 2)}, nil)

	opts := DefaultOptions()
	opts.AvoidWeekends = true
	opts.Calendar = calendar.New(saturday, nil)
	res := mustSchedule(t, g, opts)

	assertWindow(t, res, "A", 2, 4)
}

func TestSchedule_PinOnWeekendIsPreserved(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{{ID: "P", DurationDays: 1, FixedStart: intp(5)}},
		nil,
	)

	opts := DefaultOptions()
	opts.AvoidWeekends = true
	opts.Calendar = calendar.New(monday, nil)
	res := mustSchedule(t, g, opts)

	p, _ := res.Task("P")
	if p.Start != 5 {
		t.Errorf("pinned start moved to %d", p.Start)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Kind != ConflictCalendar || res.Conflicts[0].RequiredDay != 7 {
		t.Errorf("Conflicts = %+v, want one calendar conflict requiring day 7", res.Conflicts)
	}
}

func TestSchedule_AvoidWeekendsNeedsCalendar(t *testing.T) {
	g := mustBuild(t, []graph.TaskNode{node("A", 1)}, nil)
	opts := DefaultOptions()
	opts.AvoidWeekends = true

	_, err := Schedule(g, opts)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestSchedule_PlannedDates(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{
			{ID: "A", DurationDays: 3, PlannedStart: intp(4), PlannedFinish: intp(7)},
			{ID: "B", DurationDays: 2, PlannedStart: intp(5), PlannedFinish: intp(7)},
		},
		[]graph.DependencyEdge{fs("A", "B", 0)},
	)

	res := mustSchedule(t, g, DefaultOptions())
	assertWindow(t, res, "A", 4, 7)
	assertWindow(t, res, "B", 7, 9)

	want := []Change{{TaskID: "B", Before: &Window{Start: 5, Finish: 7}, After: Window{Start: 7, Finish: 9}}}
	if !reflect.DeepEqual(res.Changes, want) {
		t.Errorf("Changes = %+v, want %+v", res.Changes, want)
	}
}

func TestSchedule_IgnoreDependencies(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 3), {ID: "B", DurationDays: 2, PlannedStart: intp(1)}},
		[]graph.DependencyEdge{fs("A", "B", 0)},
	)

	res := mustSchedule(t, g, Options{RespectDependencies: false})
	assertWindow(t, res, "B", 1, 3)
}

func TestSchedule_ResourceStaggering(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 3, "r1"), node("B", 2, "r1"), node("C", 1, "r2")},
		nil,
	)

	opts := DefaultOptions()
	opts.OptimizeResources = true
	res := mustSchedule(t, g, opts)

	// A has zero slack and claims r1 first.
	assertWindow(t, res, "A", 0, 3)
	assertWindow(t, res, "B", 3, 5)
	assertWindow(t, res, "C", 0, 1)
}

func TestSchedule_StaggeringSkipsMilestones(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 3, "r1"), node("M", 0, "r1")},
		nil,
	)

	opts := DefaultOptions()
	opts.OptimizeResources = true
	res := mustSchedule(t, g, opts)
	assertWindow(t, res, "M", 0, 0)
}

func TestSchedule_Cyclic(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{node("A", 1), node("B", 1)},
		[]graph.DependencyEdge{fs("A", "B", 0), fs("B", "A", 0)},
	)

	for _, opts := range []Options{DefaultOptions(), {RespectDependencies: true, OptimizeResources: true}} {
		res, err := Schedule(g, opts)
		if res != nil {
			t.Error("cyclic graph returned a result")
		}
		var cycleErr *errors.CycleError
		if !errors.As(err, &cycleErr) {
			t.Errorf("error = %v, want CycleError", err)
		}
	}
}

func TestSchedule_PinsNeverMove(t *testing.T) {
	g := mustBuild(t,
		[]graph.TaskNode{
			node("A", 8, "r1"),
			{ID: "B", DurationDays: 2, FixedStart: intp(1), AssigneeIDs: []string{"r1"}},
			{ID: "C", DurationDays: 3, FixedEnd: intp(6)},
		},
		[]graph.DependencyEdge{fs("A", "B", 0), fs("B", "C", 0)},
	)

	cal := calendar.New(monday, nil)
	for _, c := range []Criterion{CriterionNone, CriterionDuration, CriterionCost, CriterionResources} {
		t.Run(string(c)+"_criterion", func(t *testing.T) {
			opts := DefaultOptions()
			opts.Criterion = c
			opts.AvoidWeekends = true
			opts.Calendar = cal
			res := mustSchedule(t, g, opts)

			assertWindow(t, res, "B", 1, 3)
			task, _ := res.Task("C")
			if task.Finish != 6 {
				t.Errorf("C finish = %d, want 6", task.Finish)
			}
			if len(res.Conflicts) == 0 {
				t.Error("expected conflicts for B")
			}
		})
	}
}
