package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [project...]",
	Short: "Summarize several projects",
	Long: `Summarize progress, duration, pin conflicts and double-bookings for each
project. Without arguments every project in the data directory is included.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Int("parallel", 0, "projects computed concurrently (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ids := args
	if len(ids) == 0 {
		if ids, err = a.store.ListProjects(cmd.Context()); err != nil {
			return err
		}
	}

	parallel := a.cfg.Report.MaxParallel
	if n, _ := cmd.Flags().GetInt("parallel"); n > 0 {
		parallel = n
	}
	rows := report.Summarize(cmd.Context(), a.service, ids, parallel)
	return a.printer.Summary(rows)
}
