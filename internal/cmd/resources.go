package cmd

import (
	"github.com/spf13/cobra"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources <project>",
	Short: "Show assignee workload and double-bookings",
	Args:  cobra.ExactArgs(1),
	RunE:  runResources,
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
	resourcesCmd.Flags().String("from", "", "only work finishing after this date (YYYY-MM-DD)")
	resourcesCmd.Flags().String("to", "", "only work starting before this date (YYYY-MM-DD)")
}

func runResources(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	r, err := dateRangeFlags(cmd)
	if err != nil {
		return err
	}
	report, err := a.service.GetResourceAllocation(cmd.Context(), args[0], r)
	if err != nil {
		return err
	}
	return a.printer.Allocation(report)
}
