package cmd

import (
	"github.com/spf13/cobra"
)

var criticalPathCmd = &cobra.Command{
	Use:   "critical-path <project>",
	Short: "Show the critical path and slack of every task",
	Args:  cobra.ExactArgs(1),
	RunE:  runCriticalPath,
}

func init() {
	rootCmd.AddCommand(criticalPathCmd)
}

func runCriticalPath(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	r, err := a.service.CalculateCriticalPath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return a.printer.CriticalPath(r)
}
