package schedule

import (
	"math"

	"github.com/Iron-Ham/gantry/internal/graph"
)

// Optimization compares an optimized schedule with the current one.
type Optimization struct {
	Criterion         Criterion `json:"criterion"`
	OriginalDuration  int       `json:"original_duration"`
	OptimizedDuration int       `json:"optimized_duration"`
	OriginalFinish    int       `json:"original_finish"`
	OptimizedFinish   int       `json:"optimized_finish"`
	// Savings is how many days earlier the project finishes.
	Savings  int     `json:"savings"`
	Schedule *Result `json:"schedule"`
}

// Optimize reschedules g under criterion and reports the change in project
// end. The original span is taken from the planned dates where tasks have
// them and from a plain reschedule otherwise.
func Optimize(g *graph.Graph, criterion Criterion, opts Options) (*Optimization, error) {
	c, err := ParseCriterion(string(criterion))
	if err != nil {
		return nil, err
	}

	baseOpts := opts
	baseOpts.Criterion = CriterionNone
	baseOpts.OptimizeResources = false
	baseline, err := Schedule(g, baseOpts)
	if err != nil {
		return nil, err
	}

	opts.Criterion = c
	optimized, err := Schedule(g, opts)
	if err != nil {
		return nil, err
	}

	origStart, origFinish := originalSpan(g, baseline)
	return &Optimization{
		Criterion:         c,
		OriginalDuration:  origFinish - origStart,
		OptimizedDuration: optimized.Duration(),
		OriginalFinish:    origFinish,
		OptimizedFinish:   optimized.ProjectFinish,
		Savings:           origFinish - optimized.ProjectFinish,
		Schedule:          optimized,
	}, nil
}

// originalSpan returns the project start and finish before optimization.
func originalSpan(g *graph.Graph, baseline *Result) (int, int) {
	if len(baseline.Tasks) == 0 {
		return 0, 0
	}
	start, finish := math.MaxInt, math.MinInt
	for _, t := range baseline.Tasks {
		n, _ := g.Node(t.TaskID)
		s, f := t.Start, t.Finish
		if n.PlannedStart != nil {
			s = *n.PlannedStart
		}
		if n.PlannedFinish != nil {
			f = *n.PlannedFinish
		}
		start = min(start, s)
		finish = max(finish, f)
	}
	return start, finish
}
