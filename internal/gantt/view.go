package gantt

import (
	"context"
	"slices"
	"time"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/cpm"
	"github.com/Iron-Ham/gantry/internal/graph"
	"github.com/Iron-Ham/gantry/internal/resource"
	"github.com/Iron-Ham/gantry/internal/schedule"
)

const unassignedGroup = "unassigned"

// GetGanttTasks dates every task of the project and packages the tasks,
// their dependencies, a timeline and statistics for display. Tasks keep
// their stored start as a lower bound; dependencies push them later.
func (s *Service) GetGanttTasks(ctx context.Context, projectID string, opts ViewOptions) (*GanttView, error) {
	scale := opts.Scale
	if scale == "" {
		scale = s.defaultScale
	}
	scale, err := calendar.ParseScale(string(scale))
	if err != nil {
		return nil, err
	}
	grouping, err := ParseGrouping(string(opts.GroupBy))
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g, err := snap.graph()
	if err != nil {
		return nil, err
	}
	cp, err := cpm.Compute(g, cpm.Options{})
	if err != nil {
		return nil, err
	}
	sched, err := schedule.Schedule(g, s.scheduleOptions(snap, s.avoidWeekends))
	if err != nil {
		return nil, err
	}

	log := s.logger.WithProject(projectID).WithOperation("gantt_tasks")

	from, to := snap.dateRange(opts.Range)
	window := resource.Range{From: from, To: to}

	view := &GanttView{
		ProjectID:    projectID,
		ProjectName:  snap.project.Name,
		Tasks:        []GanttTask{},
		Groups:       []Group{},
		Dependencies: []graph.DependencyEdge{},
		CriticalPath: cp.CriticalPath.TaskIDs,
	}
	if view.CriticalPath == nil {
		view.CriticalPath = []string{}
	}

	visible := make(map[string]struct{}, len(sched.Tasks))
	for _, t := range sched.Tasks {
		if !window.Includes(t.Start, t.Finish) {
			continue
		}
		visible[t.TaskID] = struct{}{}
		ts := cp.Tasks[t.TaskID]
		view.Tasks = append(view.Tasks, GanttTask{
			ID:           t.TaskID,
			Name:         t.Name,
			Start:        snap.date(t.Start),
			Finish:       snap.date(t.Finish),
			DurationDays: t.DurationDays,
			Progress:     t.Progress,
			Status:       StatusOf(t.Progress),
			AssigneeIDs:  t.AssigneeIDs,
			IsMilestone:  t.DurationDays == 0,
			IsCritical:   ts.IsCritical,
			Pinned:       t.Pinned,
			SlackDays:    ts.Slack,
		})
	}

	for i := range view.Tasks {
		for _, e := range g.Incoming(view.Tasks[i].ID) {
			if _, ok := visible[e.From]; ok {
				view.Tasks[i].Dependencies = append(view.Tasks[i].Dependencies, e)
			}
		}
	}
	for _, e := range g.Edges() {
		_, fromOK := visible[e.From]
		_, toOK := visible[e.To]
		if fromOK && toOK {
			view.Dependencies = append(view.Dependencies, e)
		}
	}

	view.Groups = groupTasks(view.Tasks, grouping)
	view.Timeline = timeline(snap, view.Tasks, opts.Range, scale)
	view.Statistics = statistics(view.Tasks)
	view.Statistics.Workstreams = len(graph.Analyze(g).Workstreams)
	view.Statistics.DurationDays = sched.Duration()

	log.Debug("built gantt view",
		"tasks", len(view.Tasks),
		"dependencies", len(view.Dependencies),
		"scale", string(scale),
		"group_by", string(grouping))
	return view, nil
}

func groupTasks(tasks []GanttTask, grouping Grouping) []Group {
	groups := []Group{}
	switch grouping {
	case GroupAssignee:
		byKey := make(map[string][]GanttTask)
		for _, t := range tasks {
			if len(t.AssigneeIDs) == 0 {
				byKey[unassignedGroup] = append(byKey[unassignedGroup], t)
				continue
			}
			for _, id := range t.AssigneeIDs {
				byKey[id] = append(byKey[id], t)
			}
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			if k != unassignedGroup {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		if _, ok := byKey[unassignedGroup]; ok {
			keys = append(keys, unassignedGroup)
		}
		for _, k := range keys {
			groups = append(groups, Group{Key: k, Tasks: byKey[k]})
		}
	case GroupStatus:
		for _, status := range []Status{StatusNotStarted, StatusInProgress, StatusCompleted} {
			var members []GanttTask
			for _, t := range tasks {
				if t.Status == status {
					members = append(members, t)
				}
			}
			if len(members) > 0 {
				groups = append(groups, Group{Key: string(status), Tasks: members})
			}
		}
	}
	return groups
}

// timeline bounds the view by the requested range where given and by the
// tasks otherwise, widened to whole scale units.
func timeline(snap *snapshot, tasks []GanttTask, r DateRange, scale calendar.Scale) Timeline {
	start, end := snap.cal.Anchor(), snap.cal.Anchor()
	for i, t := range tasks {
		if i == 0 || t.Start.Before(start) {
			start = t.Start
		}
		if i == 0 || t.Finish.After(end) {
			end = t.Finish
		}
	}
	if r.From != nil {
		start = calendar.Truncate(*r.From)
	}
	if r.To != nil {
		end = calendar.Truncate(*r.To)
	}
	if end.Before(start) {
		end = start
	}

	tl := Timeline{
		Start: calendar.Floor(start, scale),
		End:   calendar.Ceil(end, scale),
		Scale: scale,
	}
	tl.Units = units(tl.Start, tl.End, scale)
	return tl
}

func units(start, end time.Time, scale calendar.Scale) int {
	switch scale {
	case calendar.ScaleMonth:
		return (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	case calendar.ScaleWeek:
		return int(end.Sub(start).Hours()) / (24 * 7)
	default:
		return int(end.Sub(start).Hours()) / 24
	}
}

// statistics counts statuses and weighs progress by duration. When every
// task is a milestone the plain average is used.
func statistics(tasks []GanttTask) Statistics {
	st := Statistics{TotalTasks: len(tasks)}
	weighted, totalDuration, plain := 0, 0, 0
	for _, t := range tasks {
		switch t.Status {
		case StatusCompleted:
			st.Completed++
		case StatusInProgress:
			st.InProgress++
		default:
			st.NotStarted++
		}
		if t.IsMilestone {
			st.Milestones++
		}
		if t.IsCritical {
			st.CriticalTasks++
		}
		p := min(max(t.Progress, 0), 100)
		weighted += p * t.DurationDays
		totalDuration += t.DurationDays
		plain += p
	}
	switch {
	case totalDuration > 0:
		st.Progress = float64(weighted) / float64(totalDuration)
	case len(tasks) > 0:
		st.Progress = float64(plain) / float64(len(tasks))
	}
	return st
}
