package gantt

import (
	"context"

	"github.com/Iron-Ham/gantry/internal/cpm"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/graph"
	"github.com/Iron-Ham/gantry/internal/resource"
	"github.com/Iron-Ham/gantry/internal/schedule"
)

// CalculateCriticalPath runs the critical path method over the project.
// A project deadline, when set, bounds every latest finish.
func (s *Service) CalculateCriticalPath(ctx context.Context, projectID string) (*CriticalPathReport, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g, err := snap.graph()
	if err != nil {
		return nil, err
	}

	var opts cpm.Options
	if snap.project.Deadline != nil {
		opts.Deadline = snap.offset(snap.project.Deadline)
	}
	result, err := cpm.Compute(g, opts)
	if err != nil {
		return nil, err
	}

	report := &CriticalPathReport{
		ProjectID:         projectID,
		TaskIDs:           result.CriticalPath.TaskIDs,
		TotalDurationDays: result.CriticalPath.TotalDurationDays,
		ProjectStart:      snap.date(result.ProjectStart),
		ProjectEnd:        snap.date(result.ProjectEnd),
		Tasks:             make([]TaskSlack, 0, len(result.TopoOrder)),
		NegativeSlack:     result.NegativeSlack,
	}
	if report.TaskIDs == nil {
		report.TaskIDs = []string{}
	}
	for _, id := range result.TopoOrder {
		ts := result.Tasks[id]
		n, _ := g.Node(id)
		report.Tasks = append(report.Tasks, TaskSlack{
			TaskID:         id,
			Name:           n.Name,
			EarliestStart:  snap.date(ts.ES),
			EarliestFinish: snap.date(ts.EF),
			LatestStart:    snap.date(ts.LS),
			LatestFinish:   snap.date(ts.LF),
			SlackDays:      ts.Slack,
			IsCritical:     ts.IsCritical,
		})
	}

	log := s.logger.WithProject(projectID).WithOperation("critical_path")
	log.Info("computed critical path",
		"path_length", len(report.TaskIDs),
		"total_days", report.TotalDurationDays)
	if len(report.NegativeSlack) > 0 {
		log.Warn("tasks cannot meet their constraints", "tasks", report.NegativeSlack)
	}
	return report, nil
}

// AutoScheduleTasks reschedules the project. Pinned tasks never move; a pin
// that cannot be honored is reported as a conflict. With Apply set, the
// changed tasks are saved in one atomic write.
func (s *Service) AutoScheduleTasks(ctx context.Context, projectID string, opts AutoScheduleOptions) (*ScheduleReport, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g, err := snap.graph()
	if err != nil {
		return nil, err
	}

	schedOpts := s.scheduleOptions(snap, opts.AvoidWeekends)
	schedOpts.RespectDependencies = opts.RespectDependencies
	schedOpts.OptimizeResources = opts.OptimizeResources
	result, err := schedule.Schedule(g, schedOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule %s", projectID)
	}

	log := s.logger.WithProject(projectID).WithOperation("auto_schedule").With("run_id", result.RunID)
	report := &ScheduleReport{
		ProjectID:     projectID,
		RunID:         result.RunID,
		Tasks:         snap.datedTasks(result.Tasks),
		Changes:       snap.datedChanges(result.Changes),
		Conflicts:     snap.datedConflicts(result.Conflicts),
		ProjectStart:  snap.date(result.ProjectStart),
		ProjectFinish: snap.date(result.ProjectFinish),
	}
	for _, c := range result.Conflicts {
		log.Warn("pinned task conflicts with its constraints",
			"task_id", c.TaskID,
			"kind", string(c.Kind),
			"reason", c.Reason)
	}

	if opts.Apply && len(result.Changes) > 0 {
		if err := s.save(ctx, projectID, snap.applyDates(result.Changes)); err != nil {
			return nil, err
		}
		report.Applied = true
	}

	log.Info("scheduled project",
		"tasks", len(report.Tasks),
		"changes", len(report.Changes),
		"conflicts", len(report.Conflicts),
		"applied", report.Applied)
	return report, nil
}

// ValidateProjectDependencies reports circular, orphaned and duplicate
// dependencies. It fails only when the project cannot be loaded; every
// graph problem is part of the result. A valid graph is also scheduled so
// that pin conflicts show up.
func (s *Service) ValidateProjectDependencies(ctx context.Context, projectID string) (*ValidationResult, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	g := graph.Load(snap.nodes(), snap.edges)
	report := graph.Validate(g, graph.ValidateOptions{MaxLagDays: s.maxLagDays})
	result := &ValidationResult{
		ProjectID:         projectID,
		Valid:             report.Valid,
		Circular:          report.Circular,
		Orphaned:          report.Orphaned,
		Duplicates:        report.Duplicates,
		DuplicateTasks:    report.DuplicateTasks,
		UnknownTypes:      report.UnknownTypes,
		NegativeDurations: report.NegativeDurations,
		Conflicts:         []DatedConflict{},
		Warnings:          report.Warnings,
	}

	log := s.logger.WithProject(projectID).WithOperation("validate")
	if report.Valid {
		strict, err := snap.graph()
		if err == nil {
			sched, err := schedule.Schedule(strict, s.scheduleOptions(snap, s.avoidWeekends))
			if err == nil {
				result.Conflicts = snap.datedConflicts(sched.Conflicts)
			} else {
				log.Warn("schedule check failed", "error", err)
			}
		} else {
			result.Valid = false
			result.Warnings = append(result.Warnings, err.Error())
			log.Warn("graph rejected after validation", "error", err)
		}
	}

	log.Info("validated dependencies",
		"valid", result.Valid,
		"cycles", len(result.Circular),
		"orphaned", len(result.Orphaned),
		"duplicates", len(result.Duplicates),
		"conflicts", len(result.Conflicts),
		"warnings", len(result.Warnings))
	return result, nil
}

// GetResourceAllocation dates the project and reports, per assignee, the
// booked windows and every double booking within the range.
func (s *Service) GetResourceAllocation(ctx context.Context, projectID string, r DateRange) (*AllocationReport, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g, err := snap.graph()
	if err != nil {
		return nil, err
	}
	sched, err := schedule.Schedule(g, s.scheduleOptions(snap, s.avoidWeekends))
	if err != nil {
		return nil, err
	}

	assignments := make([]resource.Assignment, 0, len(sched.Tasks))
	for _, t := range sched.Tasks {
		assignments = append(assignments, resource.Assignment{
			TaskID:      t.TaskID,
			Start:       t.Start,
			Finish:      t.Finish,
			AssigneeIDs: t.AssigneeIDs,
		})
	}
	from, to := snap.dateRange(r)
	alloc := resource.Allocate(assignments, resource.Range{From: from, To: to})

	report := &AllocationReport{
		ProjectID: projectID,
		Resources: make([]ResourceReport, 0, len(alloc.Resources)),
		Statistics: AllocationStatistics{
			Resources:       alloc.Statistics.Resources,
			Overbooked:      alloc.Statistics.Overbooked,
			TotalOverlaps:   alloc.Statistics.TotalOverlaps,
			UnassignedTasks: alloc.Statistics.UnassignedTasks,
		},
	}
	for _, l := range alloc.Resources {
		rr := ResourceReport{
			ResourceID:      l.ResourceID,
			Windows:         make([]DatedWindow, 0, len(l.Windows)),
			Overlaps:        make([]DatedOverlap, 0, len(l.Overlaps)),
			BusyDays:        l.BusyDays,
			BookedDays:      l.BookedDays,
			Utilization:     l.Utilization,
			PeakConcurrency: l.PeakConcurrency,
		}
		for _, w := range l.Windows {
			rr.Windows = append(rr.Windows, DatedWindow{
				TaskID: w.TaskID,
				Start:  snap.date(w.Start),
				Finish: snap.date(w.Finish),
			})
		}
		for _, o := range l.Overlaps {
			rr.Overlaps = append(rr.Overlaps, DatedOverlap{
				TaskA:  o.TaskA,
				TaskB:  o.TaskB,
				Start:  snap.date(o.Start),
				Finish: snap.date(o.Finish),
				Days:   o.Days(),
			})
		}
		report.Resources = append(report.Resources, rr)
	}

	log := s.logger.WithProject(projectID).WithOperation("resource_allocation")
	if report.Statistics.Overbooked > 0 {
		log.Warn("resources are double-booked",
			"overbooked", report.Statistics.Overbooked,
			"overlaps", report.Statistics.TotalOverlaps)
	}
	log.Debug("allocated resources", "resources", report.Statistics.Resources)
	return report, nil
}

// OptimizeSchedule reschedules the project under criterion and compares
// the project end with the current one. Nothing is saved; callers apply
// the returned dates with BulkUpdateTasks.
func (s *Service) OptimizeSchedule(ctx context.Context, projectID string, criterion string) (*OptimizationReport, error) {
	c, err := schedule.ParseCriterion(criterion)
	if err != nil {
		var schedErr *errors.ScheduleError
		if errors.As(err, &schedErr) {
			return nil, schedErr.WithProjectID(projectID)
		}
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
	opt, err := schedule.Optimize(g, c, s.scheduleOptions(snap, s.avoidWeekends))
	if err != nil {
		return nil, errors.Wrapf(err, "optimize %s", projectID)
	}

	report := &OptimizationReport{
		ProjectID:         projectID,
		Criterion:         string(opt.Criterion),
		OriginalDuration:  opt.OriginalDuration,
		OptimizedDuration: opt.OptimizedDuration,
		OriginalEnd:       snap.date(opt.OriginalFinish),
		OptimizedEnd:      snap.date(opt.OptimizedFinish),
		Savings:           opt.Savings,
		Tasks:             snap.datedTasks(opt.Schedule.Tasks),
		Changes:           snap.datedChanges(opt.Schedule.Changes),
		Conflicts:         snap.datedConflicts(opt.Schedule.Conflicts),
	}

	s.logger.WithProject(projectID).WithOperation("optimize").Info("optimized schedule",
		"criterion", report.Criterion,
		"original_duration", report.OriginalDuration,
		"optimized_duration", report.OptimizedDuration,
		"savings", report.Savings)
	return report, nil
}

func (s *Service) save(ctx context.Context, projectID string, records []TaskRecord) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.repo.SaveProjectTasks(ctx, projectID, records); err != nil {
		return errors.Wrapf(err, "save tasks of %s", projectID)
	}
	return nil
}
