package store

import (
	"strings"
	"time"

	"github.com/Iron-Ham/gantry/internal/config"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/gantt"
	"github.com/Iron-Ham/gantry/internal/graph"
)

// Document is everything stored for one project.
type Document struct {
	Project      gantt.Project
	Tasks        []gantt.TaskRecord
	Dependencies []graph.DependencyEdge
}

// projectFile is the YAML layout of a project file. Dates are written as
// YYYY-MM-DD; task finish dates are exclusive.
type projectFile struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	StartDate    string           `yaml:"start_date"`
	Deadline     string           `yaml:"deadline,omitempty"`
	Holidays     []string         `yaml:"holidays,omitempty"`
	Tasks        []taskEntry      `yaml:"tasks"`
	Dependencies []dependencyLine `yaml:"dependencies,omitempty"`
}

type taskEntry struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name,omitempty"`
	DurationDays int      `yaml:"duration_days"`
	Start        string   `yaml:"start,omitempty"`
	Finish       string   `yaml:"finish,omitempty"`
	FixedStart   string   `yaml:"fixed_start,omitempty"`
	FixedEnd     string   `yaml:"fixed_end,omitempty"`
	Assignees    []string `yaml:"assignees,omitempty,flow"`
	Progress     int      `yaml:"progress,omitempty"`
}

type dependencyLine struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Type    string `yaml:"type,omitempty"`
	LagDays int    `yaml:"lag_days,omitempty"`
}

// dateParser collects the first date error of a decode.
type dateParser struct {
	err error
}

func (p *dateParser) required(field, s string) time.Time {
	t := p.optional(field, s)
	if t == nil {
		if p.err == nil {
			p.err = errors.NewValidationError("date is required").WithField(field)
		}
		return time.Time{}
	}
	return *t
}

func (p *dateParser) optional(field, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || p.err != nil {
		return nil
	}
	t, err := time.Parse(config.DateLayout, s)
	if err != nil {
		p.err = errors.NewValidationError("invalid date").WithField(field).WithValue(s).WithCause(err)
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(config.DateLayout)
}

// decode converts a project file to the service's types. Unknown
// dependency types are kept verbatim so validation can report them.
func (f *projectFile) decode() (*Document, error) {
	var p dateParser
	doc := &Document{
		Project: gantt.Project{
			ID:        f.ID,
			Name:      f.Name,
			StartDate: p.required("start_date", f.StartDate),
			Deadline:  p.optional("deadline", f.Deadline),
		},
		Tasks:        make([]gantt.TaskRecord, 0, len(f.Tasks)),
		Dependencies: make([]graph.DependencyEdge, 0, len(f.Dependencies)),
	}
	for _, h := range f.Holidays {
		if d := p.optional("holidays", h); d != nil {
			doc.Project.Holidays = append(doc.Project.Holidays, *d)
		}
	}
	for _, t := range f.Tasks {
		doc.Tasks = append(doc.Tasks, gantt.TaskRecord{
			ID:           t.ID,
			Name:         t.Name,
			DurationDays: t.DurationDays,
			Start:        p.optional("tasks."+t.ID+".start", t.Start),
			Finish:       p.optional("tasks."+t.ID+".finish", t.Finish),
			FixedStart:   p.optional("tasks."+t.ID+".fixed_start", t.FixedStart),
			FixedEnd:     p.optional("tasks."+t.ID+".fixed_end", t.FixedEnd),
			AssigneeIDs:  t.Assignees,
			Progress:     t.Progress,
		})
	}
	if p.err != nil {
		return nil, p.err
	}

	for _, d := range f.Dependencies {
		typ, err := graph.ParseDependencyType(d.Type)
		if err != nil {
			typ = graph.DependencyType(strings.ToLower(strings.TrimSpace(d.Type)))
		}
		doc.Dependencies = append(doc.Dependencies, graph.DependencyEdge{
			From:    d.From,
			To:      d.To,
			Type:    typ,
			LagDays: d.LagDays,
		})
	}
	return doc, nil
}

func encodeTask(t gantt.TaskRecord) taskEntry {
	return taskEntry{
		ID:           t.ID,
		Name:         t.Name,
		DurationDays: t.DurationDays,
		Start:        formatDate(t.Start),
		Finish:       formatDate(t.Finish),
		FixedStart:   formatDate(t.FixedStart),
		FixedEnd:     formatDate(t.FixedEnd),
		Assignees:    t.AssigneeIDs,
		Progress:     t.Progress,
	}
}

func encode(doc *Document) *projectFile {
	f := &projectFile{
		ID:        doc.Project.ID,
		Name:      doc.Project.Name,
		StartDate: doc.Project.StartDate.Format(config.DateLayout),
		Deadline:  formatDate(doc.Project.Deadline),
		Tasks:     make([]taskEntry, 0, len(doc.Tasks)),
	}
	for _, h := range doc.Project.Holidays {
		f.Holidays = append(f.Holidays, h.Format(config.DateLayout))
	}
	for _, t := range doc.Tasks {
		f.Tasks = append(f.Tasks, encodeTask(t))
	}
	for _, e := range doc.Dependencies {
		f.Dependencies = append(f.Dependencies, dependencyLine{
			From:    e.From,
			To:      e.To,
			Type:    string(e.Type),
			LagDays: e.LagDays,
		})
	}
	return f
}
