package main

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/gantry/internal/cmd"
	"github.com/Iron-Ham/gantry/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errors.ExitCode(err))
	}
}
