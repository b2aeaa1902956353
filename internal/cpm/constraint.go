package cpm

import (
	"fmt"

	"github.com/Iron-Ham/gantry/internal/graph"
)

// Bound is the lower limit a dependency places on its dependent task.
// OnFinish bounds the dependent's finish; otherwise it bounds the start.
type Bound struct {
	Day      int
	OnFinish bool
}

// EdgeBound evaluates e against the prerequisite's start and finish:
//
//	finish_to_start:  start  >= finish(from) + lag
//	start_to_start:   start  >= start(from)  + lag
//	finish_to_finish: finish >= finish(from) + lag
//	start_to_finish:  finish >= start(from)  + lag
func EdgeBound(e graph.DependencyEdge, fromStart, fromFinish int) Bound {
	switch e.Type {
	case graph.FinishToStart, "":
		return Bound{Day: fromFinish + e.LagDays}
	case graph.StartToStart:
		return Bound{Day: fromStart + e.LagDays}
	case graph.FinishToFinish:
		return Bound{Day: fromFinish + e.LagDays, OnFinish: true}
	case graph.StartToFinish:
		return Bound{Day: fromStart + e.LagDays, OnFinish: true}
	default:
		panic(fmt.Sprintf("cpm: unknown dependency type %q", e.Type))
	}
}

// StartFor converts the bound into a lower limit on the start of a task
// lasting duration calendar days.
func (b Bound) StartFor(duration int) int {
	if b.OnFinish {
		return b.Day - duration
	}
	return b.Day
}

// LatestBound is the backward-pass mirror of EdgeBound: the upper limit the
// dependent's latest dates place on the prerequisite.
//
//	finish_to_start:  LF(from) <= LS(to) - lag
//	start_to_start:   LS(from) <= LS(to) - lag
//	finish_to_finish: LF(from) <= LF(to) - lag
//	start_to_finish:  LS(from) <= LF(to) - lag
func LatestBound(e graph.DependencyEdge, toLS, toLF int) Bound {
	switch e.Type {
	case graph.FinishToStart, "":
		return Bound{Day: toLS - e.LagDays, OnFinish: true}
	case graph.StartToStart:
		return Bound{Day: toLS - e.LagDays}
	case graph.FinishToFinish:
		return Bound{Day: toLF - e.LagDays, OnFinish: true}
	case graph.StartToFinish:
		return Bound{Day: toLF - e.LagDays}
	default:
		panic(fmt.Sprintf("cpm: unknown dependency type %q", e.Type))
	}
}
