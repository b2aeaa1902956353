package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/errors"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project>",
	Short: "Check a project's dependencies",
	Long: `Check a project's dependencies for cycles, orphaned references and
duplicates, and report pins that conflict with them.

Exits with status 2 when the dependencies are invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	r, err := a.service.ValidateProjectDependencies(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := a.printer.Validation(r); err != nil {
		return err
	}
	if !r.Valid {
		return errors.NewValidationError("invalid dependencies").WithValue(args[0])
	}
	return nil
}
