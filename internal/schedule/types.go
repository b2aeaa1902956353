package schedule

import (
	"slices"
	"strings"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/errors"
)

// Criterion selects the tie-breaking used by Optimize.
type Criterion string

const (
	// CriterionNone reschedules from the planned dates without optimizing.
	CriterionNone Criterion = ""
	// CriterionDuration places every unpinned task at its earliest feasible start.
	CriterionDuration Criterion = "duration"
	// CriterionCost defers tasks with slack to their latest start.
	CriterionCost Criterion = "cost"
	// CriterionResources staggers tasks that share an assignee.
	CriterionResources Criterion = "resources"
)

// Criteria returns the criteria accepted by Optimize.
func Criteria() []Criterion {
	return []Criterion{CriterionDuration, CriterionCost, CriterionResources}
}

// ParseCriterion validates a criterion name.
func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Criteria(), c) {
		return "", errors.NewScheduleError("unknown optimization criterion", errors.ErrInvalidInput).
			WithCriterion(s)
	}
	return c, nil
}

// Options controls a scheduling run.
type Options struct {
	// RespectDependencies applies dependency constraints. When false tasks
	// keep their planned start (or the anchor) and only calendar and
	// resource adjustments apply.
	RespectDependencies bool
	// AvoidWeekends moves starts to the next working day and counts
	// durations in working days. Requires Calendar.
	AvoidWeekends bool
	// OptimizeResources delays a task until every assignee is free and
	// orders ready tasks by (slack, earliest start, id).
	OptimizeResources bool
	// Calendar supplies weekends and holidays.
	Calendar *calendar.Calendar
	// Criterion selects an optimization mode; empty keeps planned dates as
	// lower bounds.
	Criterion Criterion
}

// DefaultOptions returns options that respect dependencies and nothing else.
func DefaultOptions() Options {
	return Options{RespectDependencies: true}
}

// Window is a half-open range of day offsets [Start, Finish).
type Window struct {
	Start  int `json:"start"`
	Finish int `json:"finish"`
}

// Overlaps reports whether two windows share a day. Empty windows never overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.Finish && o.Start < w.Finish
}

// ScheduledTask is a task with its final dates.
type ScheduledTask struct {
	TaskID       string   `json:"task_id"`
	Name         string   `json:"name,omitempty"`
	Start        int      `json:"start"`
	Finish       int      `json:"finish"`
	DurationDays int      `json:"duration_days"`
	AssigneeIDs  []string `json:"assignee_ids,omitempty"`
	Progress     int      `json:"progress,omitempty"`
	Pinned       bool     `json:"pinned,omitempty"`
}

// Window returns the task's scheduled window.
func (t ScheduledTask) Window() Window {
	return Window{Start: t.Start, Finish: t.Finish}
}

// Change records a task whose dates differ from its planned dates.
// Before is nil when the task had no planned dates.
type Change struct {
	TaskID string  `json:"task_id"`
	Before *Window `json:"before"`
	After  Window  `json:"after"`
}

// ConflictKind classifies a scheduling conflict.
type ConflictKind string

const (
	// ConflictDependency: a dependency requires a later date than the pin allows.
	ConflictDependency ConflictKind = "dependency"
	// ConflictCalendar: a pin falls on a non-working day while avoiding weekends.
	ConflictCalendar ConflictKind = "calendar"
)

// Conflict is a pin that cannot be honored together with the other
// constraints. The task stays at its pinned dates.
type Conflict struct {
	TaskID      string       `json:"task_id"`
	Kind        ConflictKind `json:"kind"`
	Reason      string       `json:"reason"`
	RequiredDay int          `json:"required_day"`
	PinnedDay   int          `json:"pinned_day"`
	Predecessor string       `json:"predecessor,omitempty"`
}

// Result is the outcome of a scheduling run.
type Result struct {
	RunID         string          `json:"run_id"`
	Criterion     Criterion       `json:"criterion,omitempty"`
	Tasks         []ScheduledTask `json:"tasks"`
	Changes       []Change        `json:"changes"`
	Conflicts     []Conflict      `json:"conflicts"`
	ProjectStart  int             `json:"project_start"`
	ProjectFinish int             `json:"project_finish"`
}

// Task returns the scheduled task with the given id.
func (r *Result) Task(id string) (ScheduledTask, bool) {
	for _, t := range r.Tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return ScheduledTask{}, false
}

// Duration returns the span of the schedule in days.
func (r *Result) Duration() int {
	return r.ProjectFinish - r.ProjectStart
}
