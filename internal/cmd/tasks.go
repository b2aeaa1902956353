package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/gantt"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks <project>",
	Short: "Show the Gantt chart of a project",
	Long: `Show every task of a project on a timeline, with its dates, progress,
critical flag and slack.

--from and --to keep only tasks overlapping the range. --group-by groups
rows by assignee or by status.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasks,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.Flags().String("from", "", "only tasks finishing after this date (YYYY-MM-DD)")
	tasksCmd.Flags().String("to", "", "only tasks starting before this date (YYYY-MM-DD)")
	tasksCmd.Flags().String("scale", "", "timeline scale: day, week, month (default from config)")
	tasksCmd.Flags().String("group-by", "", "group rows: assignee, status")
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	r, err := dateRangeFlags(cmd)
	if err != nil {
		return err
	}
	opts := gantt.ViewOptions{Range: r}
	if s, _ := cmd.Flags().GetString("scale"); s != "" {
		scale, err := calendar.ParseScale(s)
		if err != nil {
			return errors.NewValidationError("invalid scale").WithField("scale").WithValue(s).WithCause(err)
		}
		opts.Scale = scale
	}
	groupBy, _ := cmd.Flags().GetString("group-by")
	opts.GroupBy = gantt.Grouping(groupBy)

	view, err := a.service.GetGanttTasks(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	return a.printer.Gantt(view)
}
