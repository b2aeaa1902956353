package gantt

import (
	"context"
	"strings"
	"time"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/graph"
)

// Project is the scheduling context of a set of tasks.
type Project struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	StartDate time.Time   `json:"start_date"`
	Deadline  *time.Time  `json:"deadline,omitempty"`
	Holidays  []time.Time `json:"holidays,omitempty"`
}

// TaskRecord is a task as stored. Finish is exclusive: a task starting on
// Monday with a Finish on Wednesday works Monday and Tuesday.
type TaskRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	DurationDays int        `json:"duration_days"`
	Start        *time.Time `json:"start,omitempty"`
	Finish       *time.Time `json:"finish,omitempty"`
	FixedStart   *time.Time `json:"fixed_start,omitempty"`
	FixedEnd     *time.Time `json:"fixed_end,omitempty"`
	AssigneeIDs  []string   `json:"assignee_ids,omitempty"`
	Progress     int        `json:"progress"`
}

// Repository loads and stores project data. SaveProjectTasks replaces the
// stored tasks with the same ids in one atomic step; a reader never sees
// some of the tasks updated and others not.
type Repository interface {
	LoadProject(ctx context.Context, projectID string) (*Project, error)
	LoadProjectTasks(ctx context.Context, projectID string) ([]TaskRecord, error)
	LoadProjectDependencies(ctx context.Context, projectID string) ([]graph.DependencyEdge, error)
	SaveProjectTasks(ctx context.Context, projectID string, tasks []TaskRecord) error
}

// Status is derived from a task's progress.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// StatusOf maps progress to a status.
func StatusOf(progress int) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Grouping selects how GetGanttTasks groups its tasks.
type Grouping string

const (
	GroupNone     Grouping = "none"
	GroupAssignee Grouping = "assignee"
	GroupStatus   Grouping = "status"
)

// ParseGrouping parses a grouping name. An empty string is GroupNone.
func ParseGrouping(s string) (Grouping, error) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(s))); g {
	case "", GroupNone:
		return GroupNone, nil
	case GroupAssignee, GroupStatus:
		return g, nil
	default:
		return "", errors.NewValidationError("unknown grouping").WithField("group_by").WithValue(s)
	}
}

// DateRange is an optional [From, To) filter.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ViewOptions configures GetGanttTasks.
type ViewOptions struct {
	Range   DateRange
	Scale   calendar.Scale
	GroupBy Grouping
}

// GanttTask is a dated task in a view.
type GanttTask struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Start        time.Time              `json:"start"`
	Finish       time.Time              `json:"finish"`
	DurationDays int                    `json:"duration_days"`
	Progress     int                    `json:"progress"`
	Status       Status                 `json:"status"`
	AssigneeIDs  []string               `json:"assignee_ids,omitempty"`
	IsMilestone  bool                   `json:"is_milestone"`
	IsCritical   bool                   `json:"is_critical"`
	Pinned       bool                   `json:"pinned,omitempty"`
	SlackDays    int                    `json:"slack_days"`
	Dependencies []graph.DependencyEdge `json:"dependencies,omitempty"`
}

// Group is a labelled subset of a view's tasks.
type Group struct {
	Key   string      `json:"key"`
	Tasks []GanttTask `json:"tasks"`
}

// Timeline bounds a view, padded to whole scale units.
type Timeline struct {
	Start time.Time      `json:"start"`
	End   time.Time      `json:"end"`
	Scale calendar.Scale `json:"scale"`
	Units int            `json:"units"`
}

// Statistics summarizes a view.
type Statistics struct {
	TotalTasks    int     `json:"total_tasks"`
	Completed     int     `json:"completed"`
	InProgress    int     `json:"in_progress"`
	NotStarted    int     `json:"not_started"`
	Milestones    int     `json:"milestones"`
	CriticalTasks int     `json:"critical_tasks"`
	Workstreams   int     `json:"workstreams"`
	Progress      float64 `json:"progress"`
	DurationDays  int     `json:"duration_days"`
}

// GanttView is the result of GetGanttTasks.
type GanttView struct {
	ProjectID    string                 `json:"project_id"`
	ProjectName  string                 `json:"project_name"`
	Tasks        []GanttTask            `json:"tasks"`
	Groups       []Group                `json:"groups"`
	Dependencies []graph.DependencyEdge `json:"dependencies"`
	CriticalPath []string               `json:"critical_path"`
	Timeline     Timeline               `json:"timeline"`
	Statistics   Statistics             `json:"statistics"`
}

// TaskSlack is one task of a critical path report.
type TaskSlack struct {
	TaskID         string    `json:"task_id"`
	Name           string    `json:"name"`
	EarliestStart  time.Time `json:"earliest_start"`
	EarliestFinish time.Time `json:"earliest_finish"`
	LatestStart    time.Time `json:"latest_start"`
	LatestFinish   time.Time `json:"latest_finish"`
	SlackDays      int       `json:"slack_days"`
	IsCritical     bool      `json:"is_critical"`
}

// CriticalPathReport is the result of CalculateCriticalPath.
type CriticalPathReport struct {
	ProjectID         string      `json:"project_id"`
	TaskIDs           []string    `json:"task_ids"`
	TotalDurationDays int         `json:"total_duration_days"`
	ProjectStart      time.Time   `json:"project_start"`
	ProjectEnd        time.Time   `json:"project_end"`
	Tasks             []TaskSlack `json:"tasks"`
	NegativeSlack     []string    `json:"negative_slack,omitempty"`
}

// AutoScheduleOptions configures AutoScheduleTasks.
type AutoScheduleOptions struct {
	RespectDependencies bool
	AvoidWeekends       bool
	OptimizeResources   bool
	// Apply persists the new dates of every changed task.
	Apply bool
}

// DatedTask is a scheduled task with calendar dates.
type DatedTask struct {
	TaskID       string    `json:"task_id"`
	Name         string    `json:"name"`
	Start        time.Time `json:"start"`
	Finish       time.Time `json:"finish"`
	DurationDays int       `json:"duration_days"`
	Pinned       bool      `json:"pinned,omitempty"`
}

// DatedChange is a rescheduled task. Before fields are nil when the task
// had no dates.
type DatedChange struct {
	TaskID       string     `json:"task_id"`
	BeforeStart  *time.Time `json:"before_start"`
	BeforeFinish *time.Time `json:"before_finish"`
	AfterStart   time.Time  `json:"after_start"`
	AfterFinish  time.Time  `json:"after_finish"`
}

// DatedConflict is a pin that could not be honored.
type DatedConflict struct {
	TaskID       string    `json:"task_id"`
	Kind         string    `json:"kind"`
	Reason       string    `json:"reason"`
	RequiredDate time.Time `json:"required_date"`
	PinnedDate   time.Time `json:"pinned_date"`
	Predecessor  string    `json:"predecessor,omitempty"`
}

// ScheduleReport is the result of AutoScheduleTasks.
type ScheduleReport struct {
	ProjectID     string          `json:"project_id"`
	RunID         string          `json:"run_id"`
	Tasks         []DatedTask     `json:"tasks"`
	Changes       []DatedChange   `json:"changes"`
	Conflicts     []DatedConflict `json:"conflicts"`
	ProjectStart  time.Time       `json:"project_start"`
	ProjectFinish time.Time       `json:"project_finish"`
	Applied       bool            `json:"applied"`
}

// ValidationResult is the result of ValidateProjectDependencies.
type ValidationResult struct {
	ProjectID      string                 `json:"project_id"`
	Valid          bool                   `json:"valid"`
	Circular       [][]string             `json:"circular"`
	Orphaned       []graph.DependencyEdge `json:"orphaned"`
	Duplicates     []graph.DependencyEdge `json:"duplicates"`
	DuplicateTasks []string               `json:"duplicate_tasks,omitempty"`
	UnknownTypes   []graph.DependencyEdge `json:"unknown_types"`
	// NegativeDurations are tasks whose duration is below zero.
	NegativeDurations []string        `json:"negative_durations"`
	Conflicts         []DatedConflict `json:"conflicts"`
	Warnings          []string        `json:"warnings"`
}

// DatedWindow is a resource booking.
type DatedWindow struct {
	TaskID string    `json:"task_id"`
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// DatedOverlap is a double booking of one resource by two tasks.
type DatedOverlap struct {
	TaskA  string    `json:"task_a"`
	TaskB  string    `json:"task_b"`
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
	Days   int       `json:"days"`
}

// ResourceReport is the booking of one resource.
type ResourceReport struct {
	ResourceID      string         `json:"resource_id"`
	Windows         []DatedWindow  `json:"windows"`
	Overlaps        []DatedOverlap `json:"overlaps"`
	BusyDays        int            `json:"busy_days"`
	BookedDays      int            `json:"booked_days"`
	Utilization     float64        `json:"utilization"`
	PeakConcurrency int            `json:"peak_concurrency"`
}

// AllocationStatistics summarizes an allocation report.
type AllocationStatistics struct {
	Resources       int `json:"resources"`
	Overbooked      int `json:"overbooked"`
	TotalOverlaps   int `json:"total_overlaps"`
	UnassignedTasks int `json:"unassigned_tasks"`
}

// AllocationReport is the result of GetResourceAllocation.
type AllocationReport struct {
	ProjectID  string               `json:"project_id"`
	Resources  []ResourceReport     `json:"resources"`
	Statistics AllocationStatistics `json:"statistics"`
}

// OptimizationReport is the result of OptimizeSchedule.
type OptimizationReport struct {
	ProjectID         string          `json:"project_id"`
	Criterion         string          `json:"criterion"`
	OriginalDuration  int             `json:"original_duration"`
	OptimizedDuration int             `json:"optimized_duration"`
	OriginalEnd       time.Time       `json:"original_end"`
	OptimizedEnd      time.Time       `json:"optimized_end"`
	Savings           int             `json:"savings"`
	Tasks             []DatedTask     `json:"tasks"`
	Changes           []DatedChange   `json:"changes"`
	Conflicts         []DatedConflict `json:"conflicts"`
}

// TaskUpdate changes selected fields of one task. Nil fields are left alone.
type TaskUpdate struct {
	TaskID       string     `json:"task_id"`
	Name         *string    `json:"name,omitempty"`
	DurationDays *int       `json:"duration_days,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	Finish       *time.Time `json:"finish,omitempty"`
	Progress     *int       `json:"progress,omitempty"`
	AssigneeIDs  []string   `json:"assignee_ids,omitempty"`
	// ClearAssignees removes every assignee; AssigneeIDs is ignored.
	ClearAssignees bool `json:"clear_assignees,omitempty"`
}

// UpdateFailure explains why one update was rejected.
type UpdateFailure struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

// BulkUpdateResult is the result of BulkUpdateTasks.
type BulkUpdateResult struct {
	Updated  int             `json:"updated"`
	Failed   int             `json:"failed"`
	Tasks    []TaskRecord    `json:"tasks"`
	Failures []UpdateFailure `json:"failures"`
}
