package cpm

// Result holds the complete critical path analysis of one graph.
type Result struct {
	Tasks        map[string]*TaskSchedule `json:"tasks"`
	CriticalPath CriticalPath             `json:"critical_path"`
	Waves        []Wave                   `json:"waves"`
	TopoOrder    []string                 `json:"topo_order"`

	// ProjectStart is the smallest ES and ProjectEnd the largest EF.
	ProjectStart int `json:"project_start"`
	ProjectEnd   int `json:"project_end"`

	// NegativeSlack lists tasks whose latest start precedes their earliest
	// start, sorted by id. Only pins or a deadline can cause this.
	NegativeSlack []string `json:"negative_slack,omitempty"`
}

// CriticalPath is the longest dependency chain through the project.
type CriticalPath struct {
	TaskIDs           []string `json:"task_ids"`
	TotalDurationDays int      `json:"total_duration_days"`
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID     string `json:"task_id"`
	ES         int    `json:"earliest_start"`
	EF         int    `json:"earliest_finish"`
	LS         int    `json:"latest_start"`
	LF         int    `json:"latest_finish"`
	Slack      int    `json:"slack_days"`
	IsCritical bool   `json:"is_critical"`
	Pinned     bool   `json:"pinned,omitempty"`
	Wave       int    `json:"wave"`
}

// Wave represents a group of tasks sharing an earliest start.
type Wave struct {
	Index      int      `json:"index"`
	Start      int      `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}

// Options tunes Compute.
type Options struct {
	// Deadline, when set, replaces the computed project end as the latest
	// finish of every task. A deadline before the natural end yields
	// negative slack.
	Deadline *int
}
