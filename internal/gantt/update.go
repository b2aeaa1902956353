package gantt

import (
	"context"
	"slices"
	"strings"

	"github.com/Iron-Ham/gantry/internal/errors"
)

// BulkUpdateTasks applies updates to the project's tasks. Each update is
// validated on its own; rejected updates are listed in Failures and the
// rest are saved together in one atomic write. A failed save saves nothing.
func (s *Service) BulkUpdateTasks(ctx context.Context, projectID string, updates []TaskUpdate) (*BulkUpdateResult, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(snap.records))
	for i, r := range snap.records {
		if _, dup := index[r.ID]; !dup {
			index[r.ID] = i
		}
	}

	result := &BulkUpdateResult{
		Tasks:    []TaskRecord{},
		Failures: []UpdateFailure{},
	}
	working := slices.Clone(snap.records)
	var touched []int

	for _, u := range updates {
		i, ok := index[u.TaskID]
		if !ok {
			result.fail(u.TaskID, errors.NewNotFoundError("task", u.TaskID))
			continue
		}
		updated, err := applyUpdate(working[i], u)
		if err != nil {
			result.fail(u.TaskID, err)
			continue
		}
		working[i] = updated
		result.Updated++
		if !slices.Contains(touched, i) {
			touched = append(touched, i)
		}
	}

	for _, i := range touched {
		result.Tasks = append(result.Tasks, working[i])
	}

	log := s.logger.WithProject(projectID).WithOperation("bulk_update")
	if len(result.Tasks) > 0 {
		if err := s.save(ctx, projectID, result.Tasks); err != nil {
			log.Error("bulk update not saved", "error", err, "tasks", len(result.Tasks))
			return nil, err
		}
	}
	for _, f := range result.Failures {
		log.Warn("task update rejected", "task_id", f.TaskID, "error", f.Error)
	}
	log.Info("updated tasks", "updated", result.Updated, "failed", result.Failed)
	return result, nil
}

func (r *BulkUpdateResult) fail(taskID string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, UpdateFailure{TaskID: taskID, Error: err.Error()})
}

// applyUpdate returns rec with the update applied, or an error when the
// result would be invalid. rec itself is left untouched.
func applyUpdate(rec TaskRecord, u TaskUpdate) (TaskRecord, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return rec, errors.NewValidationError("name must not be empty").WithField("name")
		}
		rec.Name = name
	}
	if u.DurationDays != nil {
		if *u.DurationDays < 0 {
			return rec, errors.NewValidationError("duration must be non-negative").
				WithField("duration_days").WithValue(*u.DurationDays)
		}
		rec.DurationDays = *u.DurationDays
	}
	if u.Progress != nil {
		if *u.Progress < 0 || *u.Progress > 100 {
			return rec, errors.NewValidationError("progress must be between 0 and 100").
				WithField("progress").WithValue(*u.Progress)
		}
		rec.Progress = *u.Progress
	}
	if u.Start != nil {
		start := *u.Start
		rec.Start = &start
	}
	if u.Finish != nil {
		finish := *u.Finish
		rec.Finish = &finish
	}
	if rec.Start != nil && rec.Finish != nil && rec.Finish.Before(*rec.Start) {
		return rec, errors.NewValidationError("finish must not precede start").
			WithField("finish").WithValue(rec.Finish.Format("2006-01-02"))
	}
	switch {
	case u.ClearAssignees:
		rec.AssigneeIDs = nil
	case u.AssigneeIDs != nil:
		rec.AssigneeIDs = slices.Clone(u.AssigneeIDs)
	}
	return rec, nil
}
