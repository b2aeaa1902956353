package report

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/gantry/internal/gantt"
)

// ProjectSummary is one line of a multi-project report.
type ProjectSummary struct {
	ProjectID    string   `json:"project_id"`
	Name         string   `json:"name"`
	Tasks        int      `json:"tasks"`
	Progress     float64  `json:"progress"`
	DurationDays int      `json:"duration_days"`
	CriticalPath []string `json:"critical_path"`
	Valid        bool     `json:"valid"`
	Conflicts    int      `json:"conflicts"`
	Overbooked   int      `json:"overbooked"`
	Error        string   `json:"error,omitempty"`
}

// Summarize builds a summary of every project, running at most
// maxParallel projects at once. A project that fails is reported with its
// error instead of aborting the others. The result is sorted by project id.
func Summarize(ctx context.Context, svc *gantt.Service, projectIDs []string, maxParallel int) []ProjectSummary {
	p := pool.NewWithResults[ProjectSummary]().WithMaxGoroutines(max(maxParallel, 1))
	for _, id := range projectIDs {
		p.Go(func() ProjectSummary {
			return summarize(ctx, svc, id)
		})
	}
	out := p.Wait()
	slices.SortFunc(out, func(a, b ProjectSummary) int {
		return strings.Compare(a.ProjectID, b.ProjectID)
	})
	return out
}

func summarize(ctx context.Context, svc *gantt.Service, projectID string) ProjectSummary {
	s := ProjectSummary{ProjectID: projectID}

	validation, err := svc.ValidateProjectDependencies(ctx, projectID)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Valid = validation.Valid
	s.Conflicts = len(validation.Conflicts)
	if !s.Valid {
		s.Error = "invalid dependencies"
		return s
	}

	view, err := svc.GetGanttTasks(ctx, projectID, gantt.ViewOptions{})
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Name = view.ProjectName
	s.Tasks = view.Statistics.TotalTasks
	s.Progress = view.Statistics.Progress
	s.DurationDays = view.Statistics.DurationDays
	s.CriticalPath = view.CriticalPath

	alloc, err := svc.GetResourceAllocation(ctx, projectID, gantt.DateRange{})
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Overbooked = alloc.Statistics.Overbooked
	return s
}

// Summary renders a multi-project report.
func (p *Printer) Summary(rows []ProjectSummary) error {
	return p.emit(rows, func(b *strings.Builder) {
		th := p.theme
		p.line(b, "%s", th.header.Render(row(
			fit("project", p.nameWidth), fit("tasks", 5), fit("done", 6),
			fit("days", 5), fit("conflicts", 9), fit("overbooked", 10))))
		for _, r := range rows {
			if r.Error != "" {
				p.line(b, "%s", row(fit(r.ProjectID, p.nameWidth), th.errText.Render(r.Error)))
				continue
			}
			conflicts := fit(fmt.Sprint(r.Conflicts), 9)
			if r.Conflicts > 0 {
				conflicts = th.warning.Render(conflicts)
			}
			overbooked := fit(fmt.Sprint(r.Overbooked), 10)
			if r.Overbooked > 0 {
				overbooked = th.warning.Render(overbooked)
			}
			p.line(b, "%s", row(
				fit(label(r.ProjectID, r.Name), p.nameWidth),
				fit(fmt.Sprint(r.Tasks), 5),
				fit(fmt.Sprintf("%.0f%%", r.Progress), 6),
				fit(fmt.Sprint(r.DurationDays), 5),
				conflicts,
				overbooked,
			))
		}
	})
}
