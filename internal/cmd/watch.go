package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [project...]",
	Short: "Revalidate projects whenever their files change",
	Long: `Watch the data directory and validate a project each time its file is
saved. Without arguments every project is watched. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", a.store.Dir())
	return a.store.Watch(ctx, func(projectID string) {
		if len(args) > 0 && !slices.Contains(args, projectID) {
			return
		}
		revalidate(ctx, cmd, a, projectID)
	})
}

func revalidate(ctx context.Context, cmd *cobra.Command, a *app, projectID string) {
	r, err := a.service.ValidateProjectDependencies(ctx, projectID)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", projectID, err)
		return
	}
	if err := a.printer.Validation(r); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", projectID, err)
	}
}
