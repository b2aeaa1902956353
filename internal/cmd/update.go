package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/gantry/internal/config"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/gantt"
)

var updateCmd = &cobra.Command{
	Use:   "update <project> [task]",
	Short: "Update one or many tasks",
	Long: `Update the name, duration, dates, progress or assignees of tasks.

With a task id the flags describe one update. With --file, every entry of a
YAML list is applied:

  - task: T1
    progress: 100
  - task: T2
    start: 2026-03-09
    duration_days: 4
    assignees: [ann, bob]

Each update is checked on its own; accepted updates are saved together and
rejected ones are listed. Exits with status 2 when any update is rejected.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().String("name", "", "new task name")
	updateCmd.Flags().Int("duration", -1, "new duration in days")
	updateCmd.Flags().Int("progress", -1, "new progress percentage (0-100)")
	updateCmd.Flags().String("start", "", "new start date (YYYY-MM-DD)")
	updateCmd.Flags().String("finish", "", "new finish date (YYYY-MM-DD, exclusive)")
	updateCmd.Flags().String("assignees", "", "comma-separated assignee ids")
	updateCmd.Flags().Bool("clear-assignees", false, "remove every assignee")
	updateCmd.Flags().StringP("file", "f", "", "YAML file with a list of updates")
}

// updateEntry is one element of an update file.
type updateEntry struct {
	Task           string   `yaml:"task"`
	Name           *string  `yaml:"name"`
	DurationDays   *int     `yaml:"duration_days"`
	Start          string   `yaml:"start"`
	Finish         string   `yaml:"finish"`
	Progress       *int     `yaml:"progress"`
	Assignees      []string `yaml:"assignees"`
	ClearAssignees bool     `yaml:"clear_assignees"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var updates []gantt.TaskUpdate
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		fromFile, err := readUpdateFile(file)
		if err != nil {
			return err
		}
		updates = append(updates, fromFile...)
	}
	if len(args) == 2 {
		u, err := updateFromFlags(cmd, args[1])
		if err != nil {
			return err
		}
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return errors.NewValidationError("nothing to update: give a task id or --file")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.service.BulkUpdateTasks(cmd.Context(), args[0], updates)
	if err != nil {
		return err
	}
	if err := a.printer.BulkUpdate(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return errors.NewValidationError(fmt.Sprintf("%d update(s) rejected", result.Failed))
	}
	return nil
}

func updateFromFlags(cmd *cobra.Command, taskID string) (gantt.TaskUpdate, error) {
	u := gantt.TaskUpdate{TaskID: taskID}
	flags := cmd.Flags()

	if flags.Changed("name") {
		name, _ := flags.GetString("name")
		u.Name = &name
	}
	if flags.Changed("duration") {
		d, _ := flags.GetInt("duration")
		u.DurationDays = &d
	}
	if flags.Changed("progress") {
		p, _ := flags.GetInt("progress")
		u.Progress = &p
	}
	var err error
	if u.Start, err = dateFlag(cmd, "start"); err != nil {
		return u, err
	}
	if u.Finish, err = dateFlag(cmd, "finish"); err != nil {
		return u, err
	}
	if flags.Changed("assignees") {
		s, _ := flags.GetString("assignees")
		u.AssigneeIDs = splitList(s)
		u.ClearAssignees = len(u.AssigneeIDs) == 0
	}
	if clearAll, _ := flags.GetBool("clear-assignees"); clearAll {
		u.ClearAssignees = true
	}
	return u, nil
}

func readUpdateFile(path string) ([]gantt.TaskUpdate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read update file %s", path)
	}
	var entries []updateEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewValidationError("invalid update file").WithValue(path).WithCause(err)
	}

	updates := make([]gantt.TaskUpdate, 0, len(entries))
	for i, e := range entries {
		if e.Task == "" {
			return nil, errors.NewValidationError("update is missing a task id").WithField(fmt.Sprintf("[%d].task", i))
		}
		u := gantt.TaskUpdate{
			TaskID:         e.Task,
			Name:           e.Name,
			DurationDays:   e.DurationDays,
			Progress:       e.Progress,
			AssigneeIDs:    e.Assignees,
			ClearAssignees: e.ClearAssignees,
		}
		if u.Start, err = parseEntryDate(e.Start, i, "start"); err != nil {
			return nil, err
		}
		if u.Finish, err = parseEntryDate(e.Finish, i, "finish"); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func parseEntryDate(s string, index int, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(config.DateLayout, s)
	if err != nil {
		return nil, errors.NewValidationError("invalid date").
			WithField(fmt.Sprintf("[%d].%s", index, field)).
			WithValue(s).
			WithCause(err)
	}
	return &t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
