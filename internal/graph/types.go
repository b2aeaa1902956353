// Package graph models the tasks and dependencies of one project as a
// directed graph and provides ordering, validation and structural analysis.
//
// Nodes are held in an arena and addressed by index. Adjacency lists hold
// indices into the edge slice, so a Graph is cheap to build per computation
// and is never shared between goroutines.
package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/gantry/internal/errors"
)

// DependencyType is the kind of constraint an edge places between two tasks.
type DependencyType string

const (
	// FinishToStart: the dependent starts after the prerequisite finishes.
	FinishToStart DependencyType = "finish_to_start"
	// StartToStart: the dependent starts after the prerequisite starts.
	StartToStart DependencyType = "start_to_start"
	// FinishToFinish: the dependent finishes after the prerequisite finishes.
	FinishToFinish DependencyType = "finish_to_finish"
	// StartToFinish: the dependent finishes after the prerequisite starts.
	StartToFinish DependencyType = "start_to_finish"
)

// DependencyTypes returns every valid dependency type.
func DependencyTypes() []DependencyType {
	return []DependencyType{FinishToStart, StartToStart, FinishToFinish, StartToFinish}
}

// Valid reports whether t is one of the four dependency types.
func (t DependencyType) Valid() bool {
	return slices.Contains(DependencyTypes(), t)
}

// Short returns the two-letter abbreviation used in compact output.
func (t DependencyType) Short() string {
	switch t {
	case FinishToStart:
		return "FS"
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "??"
	}
}

// ParseDependencyType accepts the long form ("finish_to_start") or the
// abbreviation ("FS"), case-insensitively. An empty string is finish_to_start.
func ParseDependencyType(s string) (DependencyType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return FinishToStart, nil
	case "fs":
		return FinishToStart, nil
	case "ss":
		return StartToStart, nil
	case "ff":
		return FinishToFinish, nil
	case "sf":
		return StartToFinish, nil
	}
	t := DependencyType(v)
	if !t.Valid() {
		return "", errors.NewValidationError("unknown dependency type").
			WithField("type").
			WithValue(s)
	}
	return t, nil
}

// TaskNode is a task as seen by the scheduling core. Dates are day offsets
// from the project anchor (day 0).
type TaskNode struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	DurationDays int      `json:"duration_days"`
	AssigneeIDs  []string `json:"assignee_ids,omitempty"`
	Progress     int      `json:"progress,omitempty"`

	// FixedStart and FixedEnd pin the task. A pinned task keeps its dates.
	FixedStart *int `json:"fixed_start,omitempty"`
	FixedEnd   *int `json:"fixed_end,omitempty"`

	// PlannedStart and PlannedFinish are the currently stored dates, used as
	// the "before" state when rescheduling.
	PlannedStart  *int `json:"planned_start,omitempty"`
	PlannedFinish *int `json:"planned_finish,omitempty"`
}

// IsMilestone reports whether the task has zero duration.
func (n TaskNode) IsMilestone() bool {
	return n.DurationDays == 0
}

// Pinned reports whether the task has a fixed start or end.
func (n TaskNode) Pinned() bool {
	return n.FixedStart != nil || n.FixedEnd != nil
}

// PinnedWindow returns the half-open [start, finish) window the pins fix,
// in calendar days. With both pins set the window is exactly
// [FixedStart, FixedEnd) and may differ from DurationDays; with one pin
// the other edge follows from DurationDays.
func (n TaskNode) PinnedWindow() (start, finish int, ok bool) {
	switch {
	case n.FixedStart != nil && n.FixedEnd != nil:
		return *n.FixedStart, *n.FixedEnd, true
	case n.FixedStart != nil:
		return *n.FixedStart, *n.FixedStart + n.DurationDays, true
	case n.FixedEnd != nil:
		return *n.FixedEnd - n.DurationDays, *n.FixedEnd, true
	default:
		return 0, 0, false
	}
}

// DependencyEdge constrains To (the dependent) relative to From (the
// prerequisite). A negative LagDays is a lead.
type DependencyEdge struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Type    DependencyType `json:"type"`
	LagDays int            `json:"lag_days"`
}

// String renders the edge as "A -> B (FS+2)".
func (e DependencyEdge) String() string {
	lag := ""
	if e.LagDays != 0 {
		lag = fmt.Sprintf("%+d", e.LagDays)
	}
	return fmt.Sprintf("%s -> %s (%s%s)", e.From, e.To, e.typeOrDefault().Short(), lag)
}

func (e DependencyEdge) typeOrDefault() DependencyType {
	if e.Type == "" {
		return FinishToStart
	}
	return e.Type
}

type edgeKey struct {
	from, to string
	typ      DependencyType
}

func (e DependencyEdge) key() edgeKey {
	return edgeKey{from: e.From, to: e.To, typ: e.typeOrDefault()}
}
