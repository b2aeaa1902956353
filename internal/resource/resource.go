// Package resource detects double-booked assignees in a dated schedule.
package resource

import (
	"cmp"
	"slices"
)

// Assignment is a dated task and the resources working on it.
type Assignment struct {
	TaskID      string
	Start       int
	Finish      int
	AssigneeIDs []string
}

// Range optionally restricts allocation to tasks intersecting [From, To).
type Range struct {
	From *int `json:"from,omitempty"`
	To   *int `json:"to,omitempty"`
}

// Includes reports whether the window [start, finish) intersects the range.
// Zero-length windows are included when their day lies in the range.
func (r Range) Includes(start, finish int) bool {
	if r.From != nil {
		if finish < *r.From || (finish == *r.From && start < finish) {
			return false
		}
	}
	if r.To != nil && start >= *r.To {
		return false
	}
	return true
}

// Window is one task occupying a resource over [Start, Finish).
type Window struct {
	TaskID string `json:"task_id"`
	Start  int    `json:"start"`
	Finish int    `json:"finish"`
}

// Overlap is one pair of windows that book the same resource at once.
// Start and Finish bound the intersection.
type Overlap struct {
	ResourceID string `json:"resource_id"`
	TaskA      string `json:"task_a"`
	TaskB      string `json:"task_b"`
	Start      int    `json:"start"`
	Finish     int    `json:"finish"`
}

// Days returns the length of the overlap.
func (o Overlap) Days() int {
	return o.Finish - o.Start
}

// Load is the booking of one resource.
type Load struct {
	ResourceID string    `json:"resource_id"`
	Windows    []Window  `json:"windows"`
	Overlaps   []Overlap `json:"overlaps"`
	// BusyDays counts days with at least one booking.
	BusyDays int `json:"busy_days"`
	// BookedDays sums window lengths; above BusyDays when double-booked.
	BookedDays int `json:"booked_days"`
	// Utilization is BusyDays over the allocation span.
	Utilization float64 `json:"utilization"`
	// PeakConcurrency is the most windows open on a single day.
	PeakConcurrency int `json:"peak_concurrency"`
}

// Statistics summarizes an allocation.
type Statistics struct {
	Resources       int `json:"resources"`
	Overbooked      int `json:"overbooked"`
	TotalOverlaps   int `json:"total_overlaps"`
	UnassignedTasks int `json:"unassigned_tasks"`
	SpanStart       int `json:"span_start"`
	SpanFinish      int `json:"span_finish"`
}

// Allocation is the result of Allocate.
type Allocation struct {
	Resources  []Load     `json:"resources"`
	Statistics Statistics `json:"statistics"`
}

// Resource returns the load of the given resource.
func (a *Allocation) Resource(id string) (Load, bool) {
	for _, l := range a.Resources {
		if l.ResourceID == id {
			return l, true
		}
	}
	return Load{}, false
}

// Allocate groups the tasks by assignee and sweeps each resource's windows
// in (start, finish, task id) order, keeping the windows still open in an
// active list. Every overlapping pair is reported once per resource.
// Zero-length windows never overlap.
func Allocate(tasks []Assignment, r Range) *Allocation {
	byResource := make(map[string][]Window)
	stats := Statistics{}
	first := true

	for _, t := range tasks {
		if !r.Includes(t.Start, t.Finish) {
			continue
		}
		if first {
			stats.SpanStart, stats.SpanFinish = t.Start, t.Finish
			first = false
		}
		stats.SpanStart = min(stats.SpanStart, t.Start)
		stats.SpanFinish = max(stats.SpanFinish, t.Finish)

		assigned := false
		seen := make(map[string]struct{}, len(t.AssigneeIDs))
		for _, id := range t.AssigneeIDs {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			byResource[id] = append(byResource[id], Window{TaskID: t.TaskID, Start: t.Start, Finish: t.Finish})
			assigned = true
		}
		if !assigned {
			stats.UnassignedTasks++
		}
	}
	if r.From != nil {
		stats.SpanStart = *r.From
	}
	if r.To != nil {
		stats.SpanFinish = *r.To
	}

	ids := make([]string, 0, len(byResource))
	for id := range byResource {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	alloc := &Allocation{Resources: make([]Load, 0, len(ids))}
	span := stats.SpanFinish - stats.SpanStart
	for _, id := range ids {
		load := sweep(id, byResource[id])
		if span > 0 {
			load.Utilization = float64(load.BusyDays) / float64(span)
		}
		if len(load.Overlaps) > 0 {
			stats.Overbooked++
			stats.TotalOverlaps += len(load.Overlaps)
		}
		alloc.Resources = append(alloc.Resources, load)
	}
	stats.Resources = len(alloc.Resources)
	alloc.Statistics = stats
	return alloc
}

func sweep(resourceID string, windows []Window) Load {
	slices.SortFunc(windows, func(a, b Window) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Finish, b.Finish); c != 0 {
			return c
		}
		return cmp.Compare(a.TaskID, b.TaskID)
	})

	load := Load{ResourceID: resourceID, Windows: windows, Overlaps: []Overlap{}}
	var active []Window
	busyUntil := 0
	busyOpen := false

	for _, w := range windows {
		if w.Finish <= w.Start {
			continue
		}
		load.BookedDays += w.Finish - w.Start

		// Union length for BusyDays.
		switch {
		case !busyOpen || w.Start >= busyUntil:
			load.BusyDays += w.Finish - w.Start
			busyUntil, busyOpen = w.Finish, true
		case w.Finish > busyUntil:
			load.BusyDays += w.Finish - busyUntil
			busyUntil = w.Finish
		}

		// Drop windows that closed before w starts.
		kept := active[:0]
		for _, a := range active {
			if a.Finish > w.Start {
				kept = append(kept, a)
			}
		}
		active = kept

		for _, a := range active {
			load.Overlaps = append(load.Overlaps, Overlap{
				ResourceID: resourceID,
				TaskA:      a.TaskID,
				TaskB:      w.TaskID,
				Start:      w.Start,
				Finish:     min(a.Finish, w.Finish),
			})
		}
		active = append(active, w)
		load.PeakConcurrency = max(load.PeakConcurrency, len(active))
	}
	return load
}
