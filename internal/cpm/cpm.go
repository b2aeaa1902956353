// Package cpm implements the Critical Path Method over a dependency graph:
// a forward pass for earliest dates, a backward pass for latest dates, slack
// per task, and extraction of the critical chain.
//
// All dates are integer day offsets from the project anchor (day 0).
package cpm

import (
	"slices"
	"sort"

	"github.com/Iron-Ham/gantry/internal/graph"
)

// Compute runs the two-pass analysis. It fails with a CycleError when g is
// cyclic and never returns a partial result.
func Compute(g *graph.Graph, opts Options) (*Result, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}

	// Forward pass: ES is the tightest incoming bound, never before the anchor.
	for _, id := range order {
		n, _ := g.Node(id)
		ts := &TaskSchedule{TaskID: id}
		result.Tasks[id] = ts

		if start, finish, ok := n.PinnedWindow(); ok {
			ts.ES, ts.EF = start, finish
			ts.Pinned = true
			continue
		}
		for _, e := range g.Incoming(id) {
			pred := result.Tasks[e.From]
			ts.ES = max(ts.ES, EdgeBound(e, pred.ES, pred.EF).StartFor(n.DurationDays))
		}
		ts.EF = ts.ES + n.DurationDays
	}

	if len(order) > 0 {
		first := result.Tasks[order[0]]
		result.ProjectStart, result.ProjectEnd = first.ES, first.EF
		for _, ts := range result.Tasks {
			result.ProjectStart = min(result.ProjectStart, ts.ES)
			result.ProjectEnd = max(result.ProjectEnd, ts.EF)
		}
	}

	end := result.ProjectEnd
	if opts.Deadline != nil {
		end = *opts.Deadline
	}

	// Backward pass: LF is bounded by the project end and by every successor.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]
		duration := ts.EF - ts.ES

		lf := end
		for _, e := range g.Outgoing(id) {
			succ := result.Tasks[e.To]
			b := LatestBound(e, succ.LS, succ.LF)
			if b.OnFinish {
				lf = min(lf, b.Day)
			} else {
				lf = min(lf, b.Day+duration)
			}
		}
		ts.LF = lf
		ts.LS = lf - duration

		// A pinned task cannot start later than its pin.
		if ts.Pinned && ts.LS > ts.ES {
			ts.LS = ts.ES
			ts.LF = ts.EF
		}

		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
		if ts.Slack < 0 {
			result.NegativeSlack = append(result.NegativeSlack, id)
		}
	}
	slices.Sort(result.NegativeSlack)

	result.CriticalPath = extractPath(g, result)
	result.Waves = computeWaves(result)

	return result, nil
}

// extractPath starts at the zero-slack sink with the largest EF (ties: the
// smaller id) and walks back through zero-slack predecessors whose edge
// actually sets the current task's ES, preferring the longer task and then
// the smaller id. When lead-heavy start or finish
// constraints leave no zero-slack sink, the walk starts from the zero-slack
// task finishing last.
func extractPath(g *graph.Graph, result *Result) CriticalPath {
	start := latestCritical(g.Sinks(), result)
	if start == nil {
		start = latestCritical(g.IDs(), result)
	}
	if start == nil {
		return CriticalPath{TaskIDs: []string{}}
	}

	path := []string{start.TaskID}
	current := start.TaskID
	for {
		var next string
		nextDuration := -1
		cur := result.Tasks[current]
		for _, e := range g.Incoming(current) {
			ps := result.Tasks[e.From]
			if !ps.IsCritical || EdgeBound(e, ps.ES, ps.EF).StartFor(cur.EF-cur.ES) != cur.ES {
				continue
			}
			pred, _ := g.Node(e.From)
			if pred.DurationDays > nextDuration || (pred.DurationDays == nextDuration && pred.ID < next) {
				next, nextDuration = pred.ID, pred.DurationDays
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		current = next
	}
	slices.Reverse(path)

	first, last := result.Tasks[path[0]], result.Tasks[path[len(path)-1]]
	return CriticalPath{
		TaskIDs:           path,
		TotalDurationDays: last.EF - first.ES,
	}
}

// latestCritical returns the zero-slack task among ids (sorted) with the
// largest EF, or nil.
func latestCritical(ids []string, result *Result) *TaskSchedule {
	var best *TaskSchedule
	for _, id := range ids {
		ts := result.Tasks[id]
		if ts.IsCritical && (best == nil || ts.EF > best.EF) {
			best = ts
		}
	}
	return best
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(result *Result) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Tasks[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		taskIDs := esGroups[es]
		sort.Strings(taskIDs)

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      es,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}

	return waves
}
