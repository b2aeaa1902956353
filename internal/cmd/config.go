package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gantry/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify gantry configuration",
	Long: `View or modify gantry configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  gantry config set schedule.avoid_weekends false
  gantry config set schedule.default_criterion cost
  gantry config set output.bar_width 60

Valid keys:
  schedule.respect_dependencies - Propagate dependencies when scheduling (true/false)
  schedule.avoid_weekends       - Skip weekends and holidays (true/false)
  schedule.optimize_resources   - Stagger tasks sharing an assignee (true/false)
  schedule.default_criterion    - Optimize criterion: duration, cost, resources
  schedule.default_scale        - Timeline scale: day, week, month
  validation.max_lag_days       - Lag above which a dependency is flagged (0 disables)
  store.data_dir                - Directory holding <project>.yaml files
  output.format                 - Output format: text, json
  output.color                  - Styled text output (true/false)
  output.bar_width              - Timeline bar width in columns
  output.name_width             - Task name column width
  report.max_parallel           - Projects summarized concurrently
  logging.enabled               - Write the log file (true/false)
  logging.level                 - Log level: debug, info, warn, error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/gantry/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "schedule:")
	fmt.Fprintf(out, "  respect_dependencies: %v\n", cfg.Schedule.RespectDependencies)
	fmt.Fprintf(out, "  avoid_weekends: %v\n", cfg.Schedule.AvoidWeekends)
	fmt.Fprintf(out, "  optimize_resources: %v\n", cfg.Schedule.OptimizeResources)
	fmt.Fprintf(out, "  default_criterion: %s\n", cfg.Schedule.DefaultCriterion)
	fmt.Fprintf(out, "  default_scale: %s\n", cfg.Schedule.DefaultScale)
	fmt.Fprintf(out, "  holidays: [%s]\n", strings.Join(cfg.Schedule.Holidays, ", "))

	fmt.Fprintln(out, "validation:")
	fmt.Fprintf(out, "  max_lag_days: %d\n", cfg.Validation.MaxLagDays)

	fmt.Fprintln(out, "store:")
	fmt.Fprintf(out, "  data_dir: %s\n", cfg.Store.DataDir)

	fmt.Fprintln(out, "output:")
	fmt.Fprintf(out, "  format: %s\n", cfg.Output.Format)
	fmt.Fprintf(out, "  color: %v\n", cfg.Output.Color)
	fmt.Fprintf(out, "  bar_width: %d\n", cfg.Output.BarWidth)
	fmt.Fprintf(out, "  name_width: %d\n", cfg.Output.NameWidth)

	fmt.Fprintln(out, "report:")
	fmt.Fprintf(out, "  max_parallel: %d\n", cfg.Report.MaxParallel)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  dir: %s\n", cfg.Logging.Dir)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"schedule.respect_dependencies": "bool",
		"schedule.avoid_weekends":       "bool",
		"schedule.optimize_resources":   "bool",
		"schedule.default_criterion":    "string",
		"schedule.default_scale":        "string",
		"validation.max_lag_days":       "int",
		"store.data_dir":                "string",
		"output.format":                 "string",
		"output.color":                  "bool",
		"output.bar_width":              "int",
		"output.name_width":             "int",
		"report.max_parallel":           "int",
		"logging.enabled":               "bool",
		"logging.level":                 "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'gantry config set --help' to see valid keys", key)
	}

	// Values restricted to a fixed set
	choices := map[string][]string{
		"schedule.default_criterion": config.ValidCriteria(),
		"schedule.default_scale":     config.ValidScales(),
		"output.format":              config.ValidOutputFormats(),
		"logging.level":              config.ValidLogLevels(),
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		if valid, restricted := choices[key]; restricted && !slices.Contains(valid, value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(valid, ", "))
		}
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'gantry config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Gantry Configuration

# Auto-scheduling defaults
schedule:
  # Propagate dependency constraints when scheduling
  respect_dependencies: true
  # Start tasks on business days and count durations in working days
  avoid_weekends: true
  # Stagger tasks that share an assignee
  optimize_resources: false
  # Optimize criterion when none is given: duration, cost, resources
  default_criterion: duration
  # Timeline scale for the tasks view: day, week, month
  default_scale: week
  # Non-working dates applied to every project (YYYY-MM-DD)
  holidays: []

# Dependency validation
validation:
  # Flag dependencies whose lag exceeds this many days (0 disables)
  max_lag_days: 30

# Project storage
store:
  # Directory holding <project>.yaml files (default: ./.gantry/projects)
  data_dir: ""

# CLI output
output:
  # text or json
  format: text
  color: true
  bar_width: 40
  name_width: 28

# Multi-project report
report:
  # Projects computed concurrently
  max_parallel: 4

# Log file
logging:
  enabled: true
  # debug, info, warn, error
  level: info
  # Empty means "logs" beside the data directory
  dir: ""
  max_size_mb: 10
  max_backups: 3
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize gantry's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/gantry/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: GANTRY_* (e.g., GANTRY_SCHEDULE_AVOID_WEEKENDS)")

	return nil
}
