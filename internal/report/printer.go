// Package report renders service results as styled text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/gantry/internal/config"
	"github.com/Iron-Ham/gantry/internal/gantt"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	defaultBarWidth  = 40
	defaultNameWidth = 28
	dateWidth        = 10
)

// Options configures a Printer.
type Options struct {
	Format    Format
	Color     bool
	BarWidth  int
	NameWidth int
}

// OptionsFromConfig maps the output section of the configuration.
func OptionsFromConfig(cfg config.OutputConfig) Options {
	return Options{
		Format:    Format(cfg.Format),
		Color:     cfg.Color,
		BarWidth:  cfg.BarWidth,
		NameWidth: cfg.NameWidth,
	}
}

// Printer writes reports to one writer.
type Printer struct {
	w         io.Writer
	format    Format
	theme     theme
	barWidth  int
	nameWidth int
}

// New returns a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	p := &Printer{
		w:         w,
		format:    opts.Format,
		theme:     newTheme(opts.Color),
		barWidth:  opts.BarWidth,
		nameWidth: opts.NameWidth,
	}
	if p.format == "" {
		p.format = FormatText
	}
	if p.barWidth <= 0 {
		p.barWidth = defaultBarWidth
	}
	if p.nameWidth <= 0 {
		p.nameWidth = defaultNameWidth
	}
	return p
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes the lines of a text report, or v as JSON in JSON mode.
func (p *Printer) emit(v any, lines func(b *strings.Builder)) error {
	if p.format == FormatJSON {
		return p.JSON(v)
	}
	var b strings.Builder
	lines(&b)
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) line(b *strings.Builder, format string, args ...any) {
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func date(t time.Time) string {
	return t.Format(config.DateLayout)
}

// Gantt renders a view as one bar per task across the timeline.
func (p *Printer) Gantt(v *gantt.GanttView) error {
	return p.emit(v, func(b *strings.Builder) {
		th := p.theme
		p.line(b, "%s", th.title.Render(fmt.Sprintf("%s (%s)", v.ProjectName, v.ProjectID)))
		p.line(b, "%s", th.muted.Render(fmt.Sprintf("%s .. %s  %d %s(s)",
			date(v.Timeline.Start), date(v.Timeline.End), v.Timeline.Units, v.Timeline.Scale)))

		if len(v.Groups) == 0 {
			p.taskRows(b, v.Tasks, v.Timeline)
		}
		for _, g := range v.Groups {
			p.line(b, "")
			p.line(b, "%s", th.header.Render(g.Key))
			p.taskRows(b, g.Tasks, v.Timeline)
		}

		st := v.Statistics
		p.line(b, "")
		p.line(b, "%s", th.box.Render(fmt.Sprintf(
			"%d tasks  %d done  %d in progress  %d not started  %d milestones\n"+
				"%.1f%% complete  %d critical  %d workstreams  %d days",
			st.TotalTasks, st.Completed, st.InProgress, st.NotStarted, st.Milestones,
			st.Progress, st.CriticalTasks, st.Workstreams, st.DurationDays)))
		if len(v.CriticalPath) > 0 {
			p.line(b, "critical path: %s", th.critical.Render(strings.Join(v.CriticalPath, " -> ")))
		}
	})
}

func (p *Printer) taskRows(b *strings.Builder, tasks []gantt.GanttTask, tl gantt.Timeline) {
	for _, t := range tasks {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		p.line(b, "%s", row(
			fit(name, p.nameWidth),
			p.bar(t, tl),
			date(t.Start),
			date(t.Finish),
			fmt.Sprintf("%3d%%", t.Progress),
		))
	}
}

// bar draws a task across barWidth columns scaled to the timeline. Done
// work is solid, remaining work is shaded and a milestone is a diamond.
func (p *Printer) bar(t gantt.GanttTask, tl gantt.Timeline) string {
	total := tl.End.Sub(tl.Start).Hours() / 24
	cells := []rune(strings.Repeat(" ", p.barWidth))
	if total <= 0 {
		return string(cells)
	}
	col := func(at time.Time) int {
		c := int(at.Sub(tl.Start).Hours() / 24 / total * float64(p.barWidth))
		return min(max(c, 0), p.barWidth)
	}

	start, end := col(t.Start), col(t.Finish)
	if t.IsMilestone {
		cells[min(start, p.barWidth-1)] = '◆'
		return p.barStyle(t).Render(string(cells))
	}
	if end <= start {
		end = min(start+1, p.barWidth)
		start = end - 1
	}
	done := start + (end-start)*min(max(t.Progress, 0), 100)/100
	for i := start; i < end; i++ {
		if i < done {
			cells[i] = '█'
		} else {
			cells[i] = '░'
		}
	}
	return p.barStyle(t).Render(string(cells))
}

func (p *Printer) barStyle(t gantt.GanttTask) lipgloss.Style {
	switch {
	case t.Status == gantt.StatusCompleted:
		return p.theme.done
	case t.IsCritical:
		return p.theme.critical
	default:
		return p.theme.normal
	}
}

// CriticalPath renders the path and the slack of every task.
func (p *Printer) CriticalPath(r *gantt.CriticalPathReport) error {
	return p.emit(r, func(b *strings.Builder) {
		th := p.theme
		p.line(b, "%s", th.title.Render("Critical path of "+r.ProjectID))
		if len(r.TaskIDs) == 0 {
			p.line(b, "%s", th.muted.Render("no critical path"))
		} else {
			p.line(b, "%s  (%d days)", th.critical.Render(strings.Join(r.TaskIDs, " -> ")), r.TotalDurationDays)
		}
		p.line(b, "%s .. %s", date(r.ProjectStart), date(r.ProjectEnd))
		p.line(b, "")
		p.line(b, "%s", th.header.Render(row(
			fit("task", p.nameWidth),
			fit("ES", dateWidth), fit("EF", dateWidth),
			fit("LS", dateWidth), fit("LF", dateWidth), "slack")))
		for _, t := range r.Tasks {
			slack := fmt.Sprintf("%5d", t.SlackDays)
			switch {
			case t.SlackDays < 0:
				slack = th.errText.Render(slack)
			case t.IsCritical:
				slack = th.critical.Render(slack)
			}
			p.line(b, "%s", row(
				fit(label(t.TaskID, t.Name), p.nameWidth),
				date(t.EarliestStart), date(t.EarliestFinish),
				date(t.LatestStart), date(t.LatestFinish), slack))
		}
		if len(r.NegativeSlack) > 0 {
			p.line(b, "")
			p.line(b, "%s", th.warning.Render("cannot meet constraints: "+strings.Join(r.NegativeSlack, ", ")))
		}
	})
}

// Schedule renders the changes and conflicts of a scheduling run.
func (p *Printer) Schedule(r *gantt.ScheduleReport) error {
	return p.emit(r, func(b *strings.Builder) {
		th := p.theme
		p.line(b, "%s", th.title.Render("Schedule of "+r.ProjectID))
		p.line(b, "%s .. %s  run %s", date(r.ProjectStart), date(r.ProjectFinish), r.RunID)
		p.changes(b, r.Changes)
		p.conflicts(b, r.Conflicts)
		if r.Applied {
			p.line(b, "%s", th.done.Render(fmt.Sprintf("saved %d task(s)", len(r.Changes))))
		}
	})
}

func (p *Printer) changes(b *strings.Builder, changes []gantt.DatedChange) {
	if len(changes) == 0 {
		p.line(b, "%s", p.theme.muted.Render("no changes"))
		return
	}
	p.line(b, "")
	p.line(b, "%s", p.theme.header.Render(fmt.Sprintf("%d change(s)", len(changes))))
	for _, c := range changes {
		before := "unscheduled"
		if c.BeforeStart != nil && c.BeforeFinish != nil {
			before = date(*c.BeforeStart) + ".." + date(*c.BeforeFinish)
		}
		p.line(b, "  %s  %s -> %s..%s", fit(c.TaskID, p.nameWidth), before,
			date(c.AfterStart), date(c.AfterFinish))
	}
}

func (p *Printer) conflicts(b *strings.Builder, conflicts []gantt.DatedConflict) {
	if len(conflicts) == 0 {
		return
	}
	p.line(b, "")
	p.line(b, "%s", p.theme.warning.Render(fmt.Sprintf("%d conflict(s)", len(conflicts))))
	for _, c := range conflicts {
		p.line(b, "  %s  %s", fit(c.TaskID, p.nameWidth), c.Reason)
	}
}

// Validation renders a dependency validation result.
func (p *Printer) Validation(r *gantt.ValidationResult) error {
	return p.emit(r, func(b *strings.Builder) {
		th := p.theme
		status := th.done.Render("valid")
		if !r.Valid {
			status = th.errText.Render("invalid")
		}
		p.line(b, "%s %s", th.title.Render("Dependencies of "+r.ProjectID+":"), status)
		for _, c := range r.Circular {
			p.line(b, "  cycle: %s", strings.Join(slices.Concat(c, c[:1]), " -> "))
		}
		for _, e := range r.Orphaned {
			p.line(b, "  orphaned: %s", e)
		}
		for _, e := range r.Duplicates {
			p.line(b, "  duplicate: %s", e)
		}
		for _, id := range r.DuplicateTasks {
			p.line(b, "  duplicate task: %s", id)
		}
		for _, e := range r.UnknownTypes {
			p.line(b, "  unknown type: %s", e)
		}
		for _, id := range r.NegativeDurations {
			p.line(b, "  negative duration: %s", id)
		}
		p.conflicts(b, r.Conflicts)
		for _, w := range r.Warnings {
			p.line(b, "  %s %s", th.warning.Render("warning:"), w)
		}
	})
}

// Allocation renders each resource's bookings and double bookings.
func (p *Printer) Allocation(r *gantt.AllocationReport) error {
	return p.emit(r, func(b *strings.Builder) {
		th := p.theme
		st := r.Statistics
		p.line(b, "%s", th.title.Render("Resources of "+r.ProjectID))
		p.line(b, "%d resource(s), %d overbooked, %d overlap(s), %d unassigned task(s)",
			st.Resources, st.Overbooked, st.TotalOverlaps, st.UnassignedTasks)
		for _, res := range r.Resources {
			p.line(b, "")
			name := res.ResourceID
			if len(res.Overlaps) > 0 {
				name = th.warning.Render(name)
			}
			p.line(b, "%s  %d busy day(s)  %.0f%% utilized  peak %d",
				name, res.BusyDays, res.Utilization*100, res.PeakConcurrency)
			for _, w := range res.Windows {
				p.line(b, "  %s  %s..%s", fit(w.TaskID, p.nameWidth), date(w.Start), date(w.Finish))
			}
			for _, o := range res.Overlaps {
				p.line(b, "  %s %s and %s overlap %s..%s (%d day(s))",
					th.warning.Render("!"), o.TaskA, o.TaskB, date(o.Start), date(o.Finish), o.Days)
			}
		}
	})
}

// Optimization renders the before and after durations of an optimization.
func (p *Printer) Optimization(r *gantt.OptimizationReport) error {
	return p.emit(r, func(b *strings.Builder) {
		th := p.theme
		p.line(b, "%s", th.title.Render(fmt.Sprintf("Optimized %s by %s", r.ProjectID, r.Criterion)))
		p.line(b, "duration %d -> %d days, end %s -> %s",
			r.OriginalDuration, r.OptimizedDuration, date(r.OriginalEnd), date(r.OptimizedEnd))
		savings := fmt.Sprintf("savings: %d day(s)", r.Savings)
		if r.Savings > 0 {
			savings = th.done.Render(savings)
		} else if r.Savings < 0 {
			savings = th.warning.Render(savings)
		}
		p.line(b, "%s", savings)
		p.changes(b, r.Changes)
		p.conflicts(b, r.Conflicts)
	})
}

// BulkUpdate renders the outcome of a bulk update.
func (p *Printer) BulkUpdate(r *gantt.BulkUpdateResult) error {
	return p.emit(r, func(b *strings.Builder) {
		p.line(b, "updated %d, failed %d", r.Updated, r.Failed)
		for _, f := range r.Failures {
			p.line(b, "  %s %s: %s", p.theme.errText.Render("x"), f.TaskID, f.Error)
		}
	})
}

func label(id, name string) string {
	if name == "" || name == id {
		return id
	}
	return id + " " + name
}

// IsJSON reports whether the printer writes JSON.
func (p *Printer) IsJSON() bool {
	return p.format == FormatJSON
}
