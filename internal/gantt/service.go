// Package gantt composes the graph, critical path, scheduling and resource
// packages over project data loaded from a Repository.
//
// Every operation builds its own graph from freshly loaded records. The
// Service holds no per-project state and is safe for concurrent use.
package gantt

import (
	"context"
	"slices"
	"time"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/graph"
	"github.com/Iron-Ham/gantry/internal/logging"
	"github.com/Iron-Ham/gantry/internal/schedule"
)

const defaultMaxLagDays = 30

// Service answers Gantt queries for the projects in a Repository.
type Service struct {
	repo          Repository
	logger        *logging.Logger
	maxLagDays    int
	holidays      []time.Time
	avoidWeekends bool
	defaultScale  calendar.Scale
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxLagDays sets the lag above which validation warns. 0 disables the warning.
func WithMaxLagDays(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxLagDays = n
		}
	}
}

// WithHolidays adds non-working days shared by every project.
func WithHolidays(days []time.Time) Option {
	return func(s *Service) {
		s.holidays = append(s.holidays, days...)
	}
}

// WithAvoidWeekends makes the read-only views date tasks in working days.
func WithAvoidWeekends(avoid bool) Option {
	return func(s *Service) {
		s.avoidWeekends = avoid
	}
}

// WithDefaultScale sets the timeline scale used when a view names none.
func WithDefaultScale(scale calendar.Scale) Option {
	return func(s *Service) {
		if scale != "" {
			s.defaultScale = scale
		}
	}
}

// NewService creates a Service reading from repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		logger:       logging.NopLogger(),
		maxLagDays:   defaultMaxLagDays,
		defaultScale: calendar.ScaleWeek,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot is one project's data as loaded for a single operation.
type snapshot struct {
	project *Project
	records []TaskRecord
	edges   []graph.DependencyEdge
	cal     *calendar.Calendar
}

func (s *Service) load(ctx context.Context, projectID string) (*snapshot, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	project, err := s.repo.LoadProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "load project %s", projectID)
	}
	records, err := s.repo.LoadProjectTasks(ctx, projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "load tasks of %s", projectID)
	}
	edges, err := s.repo.LoadProjectDependencies(ctx, projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "load dependencies of %s", projectID)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	holidays := slices.Concat(s.holidays, project.Holidays)
	return &snapshot{
		project: project,
		records: records,
		edges:   edges,
		cal:     calendar.New(project.StartDate, holidays),
	}, nil
}

// nodes converts the stored records to day offsets.
func (snap *snapshot) nodes() []graph.TaskNode {
	nodes := make([]graph.TaskNode, 0, len(snap.records))
	for _, r := range snap.records {
		nodes = append(nodes, graph.TaskNode{
			ID:            r.ID,
			Name:          r.Name,
			DurationDays:  r.DurationDays,
			AssigneeIDs:   r.AssigneeIDs,
			Progress:      r.Progress,
			FixedStart:    snap.offset(r.FixedStart),
			FixedEnd:      snap.offset(r.FixedEnd),
			PlannedStart:  snap.offset(r.Start),
			PlannedFinish: snap.offset(r.Finish),
		})
	}
	return nodes
}

// graph builds the strict graph used by every computing operation.
func (snap *snapshot) graph() (*graph.Graph, error) {
	g, err := graph.Build(snap.nodes(), snap.edges)
	if err != nil {
		return nil, errors.Wrapf(err, "build graph of %s", snap.project.ID)
	}
	return g, nil
}

func (snap *snapshot) offset(t *time.Time) *int {
	if t == nil {
		return nil
	}
	o := snap.cal.Offset(*t)
	return &o
}

func (snap *snapshot) date(offset int) time.Time {
	return snap.cal.Date(offset)
}

func (snap *snapshot) dateRange(r DateRange) (from, to *int) {
	return snap.offset(r.From), snap.offset(r.To)
}

// scheduleOptions returns the options of a plain scheduling run.
func (s *Service) scheduleOptions(snap *snapshot, avoidWeekends bool) schedule.Options {
	opts := schedule.DefaultOptions()
	opts.AvoidWeekends = avoidWeekends
	opts.Calendar = snap.cal
	return opts
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCanceled, err.Error())
	}
	return nil
}

func (snap *snapshot) datedTasks(tasks []schedule.ScheduledTask) []DatedTask {
	out := make([]DatedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, DatedTask{
			TaskID:       t.TaskID,
			Name:         t.Name,
			Start:        snap.date(t.Start),
			Finish:       snap.date(t.Finish),
			DurationDays: t.DurationDays,
			Pinned:       t.Pinned,
		})
	}
	return out
}

func (snap *snapshot) datedChanges(changes []schedule.Change) []DatedChange {
	out := make([]DatedChange, 0, len(changes))
	for _, c := range changes {
		dc := DatedChange{
			TaskID:      c.TaskID,
			AfterStart:  snap.date(c.After.Start),
			AfterFinish: snap.date(c.After.Finish),
		}
		if c.Before != nil {
			start, finish := snap.date(c.Before.Start), snap.date(c.Before.Finish)
			dc.BeforeStart, dc.BeforeFinish = &start, &finish
		}
		out = append(out, dc)
	}
	return out
}

func (snap *snapshot) datedConflicts(conflicts []schedule.Conflict) []DatedConflict {
	out := make([]DatedConflict, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, DatedConflict{
			TaskID:       c.TaskID,
			Kind:         string(c.Kind),
			Reason:       c.Reason,
			RequiredDate: snap.date(c.RequiredDay),
			PinnedDate:   snap.date(c.PinnedDay),
			Predecessor:  c.Predecessor,
		})
	}
	return out
}

// applyDates copies scheduled dates onto the stored records of the changed
// tasks and returns only those records.
func (snap *snapshot) applyDates(changes []schedule.Change) []TaskRecord {
	changed := make(map[string]schedule.Window, len(changes))
	for _, c := range changes {
		changed[c.TaskID] = c.After
	}
	var out []TaskRecord
	for _, r := range snap.records {
		w, ok := changed[r.ID]
		if !ok {
			continue
		}
		start, finish := snap.date(w.Start), snap.date(w.Finish)
		r.Start, r.Finish = &start, &finish
		out = append(out, r)
	}
	return out
}
