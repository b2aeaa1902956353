package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/gantt"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <project> [criterion]",
	Short: "Propose a shorter, cheaper or less contended schedule",
	Long: `Reschedule a project for one criterion and compare the result with the
current plan.

Criteria:
  duration   - start every task as early as its dependencies allow
  cost       - start every task as late as possible without moving the end
  resources  - stagger tasks that share an assignee

Without a criterion the configured default is used. --apply saves the
proposed dates.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().Bool("apply", false, "save the optimized dates")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	criterion := a.cfg.Schedule.DefaultCriterion
	if len(args) == 2 {
		criterion = args[1]
	}

	r, err := a.service.OptimizeSchedule(cmd.Context(), args[0], criterion)
	if err != nil {
		return err
	}
	apply, _ := cmd.Flags().GetBool("apply")
	if !apply {
		return a.printer.Optimization(r)
	}

	updates := make([]gantt.TaskUpdate, 0, len(r.Changes))
	for _, c := range r.Changes {
		updates = append(updates, gantt.TaskUpdate{
			TaskID: c.TaskID,
			Start:  &c.AfterStart,
			Finish: &c.AfterFinish,
		})
	}
	result, err := a.service.BulkUpdateTasks(cmd.Context(), args[0], updates)
	if err != nil {
		return err
	}

	if a.printer.IsJSON() {
		return a.printer.JSON(struct {
			Optimization *gantt.OptimizationReport `json:"optimization"`
			Update       *gantt.BulkUpdateResult   `json:"update"`
		}{r, result})
	}
	if err := a.printer.Optimization(r); err != nil {
		return err
	}
	return a.printer.BulkUpdate(result)
}
