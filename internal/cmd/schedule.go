package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/gantt"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <project>",
	Short: "Compute start and finish dates for every task",
	Long: `Compute dates for every task from durations, dependencies and pins.

Without --apply the proposed changes are only shown. Pinned tasks keep their
dates; a pin that violates a dependency is reported as a conflict.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().Bool("apply", false, "save the computed dates")
	scheduleCmd.Flags().Bool("avoid-weekends", false, "skip weekends and holidays (default from config)")
	scheduleCmd.Flags().Bool("ignore-dependencies", false, "place tasks without dependency constraints")
	scheduleCmd.Flags().Bool("optimize-resources", false, "stagger tasks that share an assignee (default from config)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	opts := gantt.AutoScheduleOptions{
		RespectDependencies: a.cfg.Schedule.RespectDependencies,
		AvoidWeekends:       a.cfg.Schedule.AvoidWeekends,
		OptimizeResources:   a.cfg.Schedule.OptimizeResources,
	}
	opts.Apply, _ = cmd.Flags().GetBool("apply")
	if cmd.Flags().Changed("avoid-weekends") {
		opts.AvoidWeekends, _ = cmd.Flags().GetBool("avoid-weekends")
	}
	if cmd.Flags().Changed("optimize-resources") {
		opts.OptimizeResources, _ = cmd.Flags().GetBool("optimize-resources")
	}
	if ignore, _ := cmd.Flags().GetBool("ignore-dependencies"); ignore {
		opts.RespectDependencies = false
	}

	r, err := a.service.AutoScheduleTasks(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	return a.printer.Schedule(r)
}
