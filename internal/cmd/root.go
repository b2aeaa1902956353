package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gantry/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Gantt scheduling for construction projects",
	Long: `Gantry computes Gantt charts for construction projects: dependency
validation, critical path, auto-scheduling around pins and weekends, and
resource double-booking reports.

Projects are YAML files in the data directory, one <project>.yaml each.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/gantry/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding <project>.yaml files (default is ./.gantry/projects)")
	rootCmd.PersistentFlags().Bool("json", false, "write JSON instead of text")
	rootCmd.PersistentFlags().Bool("no-wait", false, "fail instead of waiting when another process holds a project lock")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/gantry")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GANTRY")
	// Replace dots with underscores for nested keys in env vars
	// e.g., GANTRY_SCHEDULE_AVOID_WEEKENDS for schedule.avoid_weekends
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
