// Package schedule assigns concrete dates to every task of a dependency
// graph. It honors typed dependency constraints with lag, optional weekend
// and holiday avoidance, pinned tasks and resource staggering, and reports
// the changes against the planned dates and every pin it could not honor.
package schedule

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/cpm"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/graph"
)

// Schedule dates every task of g. It fails only when g is cyclic or the
// options are inconsistent; pin conflicts are reported in the result.
func Schedule(g *graph.Graph, opts Options) (*Result, error) {
	if opts.AvoidWeekends && opts.Calendar == nil {
		return nil, errors.NewScheduleError("avoiding weekends requires a calendar", errors.ErrInvalidInput)
	}
	if opts.Criterion != CriterionNone {
		if _, err := ParseCriterion(string(opts.Criterion)); err != nil {
			return nil, err
		}
	}

	s := newScheduler(g, opts)
	order, err := s.order()
	if err != nil {
		return nil, err
	}

	for _, id := range order {
		n, _ := g.Node(id)
		if n.Pinned() {
			s.placePinned(n)
			continue
		}
		s.commit(n, s.fit(n, s.requirement(n)))
	}

	if opts.Criterion == CriterionCost {
		s.deferSlack(order)
	}

	return s.result(), nil
}

type scheduler struct {
	g    *graph.Graph
	opts Options

	// cal is nil unless weekends are avoided.
	cal         *calendar.Calendar
	usePlanned  bool
	stagger     bool
	placed      map[string]Window
	free        map[string]int
	conflicts   []Conflict
	pinnedTasks map[string]bool
}

func newScheduler(g *graph.Graph, opts Options) *scheduler {
	s := &scheduler{
		g:           g,
		opts:        opts,
		usePlanned:  opts.Criterion == CriterionNone,
		stagger:     opts.Criterion == CriterionResources || (opts.OptimizeResources && opts.Criterion != CriterionCost),
		placed:      make(map[string]Window, g.Len()),
		free:        make(map[string]int),
		pinnedTasks: make(map[string]bool),
	}
	if opts.AvoidWeekends {
		s.cal = opts.Calendar
	}
	return s
}

// order returns the processing order. With staggering, ready tasks are
// taken by (slack, earliest start, id) so critical work claims resources first.
func (s *scheduler) order() ([]string, error) {
	if !s.stagger {
		return s.g.TopologicalOrder()
	}
	analysis, err := cpm.Compute(s.g, cpm.Options{})
	if err != nil {
		return nil, err
	}
	return s.g.PriorityOrder(func(a, b graph.TaskNode) int {
		ta, tb := analysis.Tasks[a.ID], analysis.Tasks[b.ID]
		if c := cmp.Compare(ta.Slack, tb.Slack); c != 0 {
			return c
		}
		return cmp.Compare(ta.ES, tb.ES)
	})
}

// requirement is the set of lower bounds the dependencies place on a task.
type requirement struct {
	start      int
	finish     int
	startFrom  string
	finishFrom string
	hasStart   bool
	hasFinish  bool
}

func (s *scheduler) requirement(n graph.TaskNode) requirement {
	r := requirement{start: math.MinInt, finish: math.MinInt}
	if !s.opts.RespectDependencies {
		return r
	}
	for _, e := range s.g.Incoming(n.ID) {
		pred := s.placed[e.From]
		b := cpm.EdgeBound(e, pred.Start, pred.Finish)
		if b.OnFinish {
			if !r.hasFinish || b.Day > r.finish {
				r.finish, r.finishFrom, r.hasFinish = b.Day, e.From, true
			}
			continue
		}
		if !r.hasStart || b.Day > r.start {
			r.start, r.startFrom, r.hasStart = b.Day, e.From, true
		}
	}
	return r
}

// fit finds the earliest window for an unpinned task that satisfies its
// requirement, the anchor, its planned start, the calendar and its
// assignees' availability. Every adjustment only moves the start later.
func (s *scheduler) fit(n graph.TaskNode, r requirement) Window {
	start := 0
	if s.usePlanned && n.PlannedStart != nil {
		start = max(start, *n.PlannedStart)
	}
	if r.hasStart {
		start = max(start, r.start)
	}
	if r.hasFinish {
		start = max(start, s.latestStart(r.finish, n.DurationDays))
	}

	for {
		start = s.normalize(start)
		if free := s.freeAt(n); free > start {
			start = free
			continue
		}
		finish := s.span(start, n.DurationDays)
		if r.hasFinish && finish < r.finish {
			start++
			continue
		}
		return Window{Start: start, Finish: finish}
	}
}

// placePinned keeps a pinned task at its pins and records any conflict.
func (s *scheduler) placePinned(n graph.TaskNode) {
	w := s.pinnedWindow(n)
	r := s.requirement(n)

	if r.hasStart && r.start > w.Start {
		s.conflicts = append(s.conflicts, Conflict{
			TaskID:      n.ID,
			Kind:        ConflictDependency,
			RequiredDay: r.start,
			PinnedDay:   w.Start,
			Predecessor: r.startFrom,
			Reason: fmt.Sprintf("dependency on %s requires a start on or after day %d, but %s is pinned to start on day %d",
				r.startFrom, r.start, n.ID, w.Start),
		})
	}
	if r.hasFinish && r.finish > w.Finish {
		s.conflicts = append(s.conflicts, Conflict{
			TaskID:      n.ID,
			Kind:        ConflictDependency,
			RequiredDay: r.finish,
			PinnedDay:   w.Finish,
			Predecessor: r.finishFrom,
			Reason: fmt.Sprintf("dependency on %s requires a finish on or after day %d, but %s is pinned to finish on day %d",
				r.finishFrom, r.finish, n.ID, w.Finish),
		})
	}

	if s.cal != nil && !s.cal.IsWorkingDay(w.Start) {
		s.conflicts = append(s.conflicts, Conflict{
			TaskID:      n.ID,
			Kind:        ConflictCalendar,
			RequiredDay: s.cal.NextWorkingDay(w.Start),
			PinnedDay:   w.Start,
			Reason:      fmt.Sprintf("%s is pinned to day %d, which is not a working day", n.ID, w.Start),
		})
	}

	s.pinnedTasks[n.ID] = true
	s.commit(n, w)
}

// pinnedWindow is the node's own pinned window, with a single pin spanning
// working days when a calendar is set.
func (s *scheduler) pinnedWindow(n graph.TaskNode) Window {
	start, finish, _ := n.PinnedWindow()
	switch {
	case s.cal == nil || (n.FixedStart != nil && n.FixedEnd != nil):
		return Window{Start: start, Finish: finish}
	case n.FixedStart != nil:
		return Window{Start: start, Finish: s.span(start, n.DurationDays)}
	default:
		return Window{Start: s.latestStart(finish, n.DurationDays), Finish: finish}
	}
}

func (s *scheduler) commit(n graph.TaskNode, w Window) {
	s.placed[n.ID] = w
	if !s.stagger || n.DurationDays == 0 {
		return
	}
	for _, r := range n.AssigneeIDs {
		s.free[r] = max(s.free[r], w.Finish)
	}
}

// freeAt returns the first day every assignee of n is free, or MinInt
// when staggering is off or n is a milestone.
func (s *scheduler) freeAt(n graph.TaskNode) int {
	at := math.MinInt
	if !s.stagger || n.DurationDays == 0 {
		return at
	}
	for _, r := range n.AssigneeIDs {
		if f, ok := s.free[r]; ok {
			at = max(at, f)
		}
	}
	return at
}

func (s *scheduler) normalize(day int) int {
	if s.cal == nil {
		return day
	}
	return s.cal.NextWorkingDay(day)
}

func (s *scheduler) span(start, duration int) int {
	if s.cal == nil {
		return start + duration
	}
	return s.cal.AddWorkingDays(start, duration)
}

func (s *scheduler) latestStart(finish, duration int) int {
	if s.cal == nil {
		return finish - duration
	}
	return s.cal.SubtractWorkingDays(finish, duration)
}

// deferSlack moves unpinned tasks to their latest start without moving the
// project finish, walking the order backwards so successors are final.
func (s *scheduler) deferSlack(order []string) {
	projectFinish := math.MinInt
	for _, w := range s.placed {
		projectFinish = max(projectFinish, w.Finish)
	}

	for i := len(order) - 1; i >= 0; i-- {
		n, _ := s.g.Node(order[i])
		if n.Pinned() {
			continue
		}
		current := s.placed[n.ID]

		lf, ls := projectFinish, math.MaxInt
		if s.opts.RespectDependencies {
			for _, e := range s.g.Outgoing(n.ID) {
				succ := s.placed[e.To]
				b := cpm.LatestBound(e, succ.Start, succ.Finish)
				if b.OnFinish {
					lf = min(lf, b.Day)
				} else {
					ls = min(ls, b.Day)
				}
			}
		}

		start := min(s.latestStart(lf, n.DurationDays), ls)
		if s.cal != nil {
			for !s.cal.IsWorkingDay(start) {
				start--
			}
		}
		if start > current.Start {
			s.placed[n.ID] = Window{Start: start, Finish: s.span(start, n.DurationDays)}
		}
	}
}

func (s *scheduler) result() *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		Criterion: s.opts.Criterion,
		Tasks:     make([]ScheduledTask, 0, len(s.placed)),
		Changes:   []Change{},
		Conflicts: s.conflicts,
	}
	if res.Conflicts == nil {
		res.Conflicts = []Conflict{}
	}

	for _, n := range s.g.Nodes() {
		w := s.placed[n.ID]
		res.Tasks = append(res.Tasks, ScheduledTask{
			TaskID:       n.ID,
			Name:         n.Name,
			Start:        w.Start,
			Finish:       w.Finish,
			DurationDays: n.DurationDays,
			AssigneeIDs:  n.AssigneeIDs,
			Progress:     n.Progress,
			Pinned:       s.pinnedTasks[n.ID],
		})
	}
	slices.SortFunc(res.Tasks, func(a, b ScheduledTask) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.TaskID, b.TaskID)
	})

	for i, t := range res.Tasks {
		if i == 0 {
			res.ProjectStart, res.ProjectFinish = t.Start, t.Finish
		}
		res.ProjectStart = min(res.ProjectStart, t.Start)
		res.ProjectFinish = max(res.ProjectFinish, t.Finish)

		n, _ := s.g.Node(t.TaskID)
		if c, changed := diff(n, t.Window()); changed {
			res.Changes = append(res.Changes, c)
		}
	}

	return res
}

// diff compares the scheduled window with the task's planned dates.
func diff(n graph.TaskNode, after Window) (Change, bool) {
	if n.PlannedStart == nil && n.PlannedFinish == nil {
		return Change{TaskID: n.ID, After: after}, true
	}
	before := Window{Start: after.Start, Finish: after.Finish}
	if n.PlannedStart != nil {
		before.Start = *n.PlannedStart
	}
	if n.PlannedFinish != nil {
		before.Finish = *n.PlannedFinish
	}
	if before == after {
		return Change{}, false
	}
	return Change{TaskID: n.ID, Before: &before, After: after}, true
}
