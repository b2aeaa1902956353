package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DateLayout is the calendar date format used in config and project files.
const DateLayout = "2006-01-02"

// Config represents the complete gantry configuration
type Config struct {
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Validation ValidationConfig `mapstructure:"validation"`
	Store      StoreConfig      `mapstructure:"store"`
	Output     OutputConfig     `mapstructure:"output"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ScheduleConfig controls auto-scheduling defaults
type ScheduleConfig struct {
	// RespectDependencies propagates dependency constraints when auto-scheduling (default: true)
	RespectDependencies bool `mapstructure:"respect_dependencies"`
	// AvoidWeekends moves starts to the next business day and counts durations
	// in working days (default: true)
	AvoidWeekends bool `mapstructure:"avoid_weekends"`
	// OptimizeResources staggers tasks that share an assignee (default: false)
	OptimizeResources bool `mapstructure:"optimize_resources"`
	// DefaultCriterion is the optimize criterion when none is given
	// Options: "duration", "cost", "resources" (default: "duration")
	DefaultCriterion string `mapstructure:"default_criterion"`
	// DefaultScale is the timeline scale for the tasks view
	// Options: "day", "week", "month" (default: "week")
	DefaultScale string `mapstructure:"default_scale"`
	// Holidays are non-working dates (YYYY-MM-DD) applied to every project,
	// in addition to the project's own holidays
	Holidays []string `mapstructure:"holidays"`
}

// ValidationConfig controls dependency validation warnings
type ValidationConfig struct {
	// MaxLagDays is the lag magnitude above which a dependency is flagged (default: 30, 0 = disabled)
	MaxLagDays int `mapstructure:"max_lag_days"`
}

// StoreConfig controls where project files are read from
type StoreConfig struct {
	// DataDir is the directory holding <project>.yaml files.
	// If empty, defaults to ".gantry/projects" relative to the working directory.
	// Supports ~ for home directory expansion.
	DataDir string `mapstructure:"data_dir"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	// Format is the default output format: "text" or "json" (default: "text")
	Format string `mapstructure:"format"`
	// Color enables lipgloss styling of text output (default: true)
	Color bool `mapstructure:"color"`
	// BarWidth is the width in columns of timeline bars (default: 40, min: 10, max: 200)
	BarWidth int `mapstructure:"bar_width"`
	// NameWidth truncates task names in text tables (default: 28)
	NameWidth int `mapstructure:"name_width"`
}

// ReportConfig controls the multi-project report command
type ReportConfig struct {
	// MaxParallel is the number of projects computed concurrently (default: 4)
	MaxParallel int `mapstructure:"max_parallel"`
}

// LoggingConfig controls the JSON log file
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory. If empty, logs go to "logs" beside the data
	// directory (default: "")
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// HolidayDates parses Holidays into dates.
func (s *ScheduleConfig) HolidayDates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(s.Holidays))
	for _, h := range s.Holidays {
		d, err := time.Parse(DateLayout, strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// ResolveDataDir returns the resolved project data directory.
// If DataDir is empty, it returns the default path relative to baseDir.
// If DataDir starts with ~, it expands to the user's home directory.
// If DataDir is a relative path, it's resolved relative to baseDir.
func (s *StoreConfig) ResolveDataDir(baseDir string) string {
	if s.DataDir == "" {
		return filepath.Join(baseDir, ".gantry", "projects")
	}

	path := s.DataDir
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			RespectDependencies: true,
			AvoidWeekends:       true,
			OptimizeResources:   false,
			DefaultCriterion:    "duration",
			DefaultScale:        "week",
			Holidays:            []string{},
		},
		Validation: ValidationConfig{
			MaxLagDays: 30,
		},
		Store: StoreConfig{
			DataDir: "", // Empty means use default: .gantry/projects
		},
		Output: OutputConfig{
			Format:    "text",
			Color:     true,
			BarWidth:  40,
			NameWidth: 28,
		},
		Report: ReportConfig{
			MaxParallel: 4,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Schedule defaults
	viper.SetDefault("schedule.respect_dependencies", defaults.Schedule.RespectDependencies)
	viper.SetDefault("schedule.avoid_weekends", defaults.Schedule.AvoidWeekends)
	viper.SetDefault("schedule.optimize_resources", defaults.Schedule.OptimizeResources)
	viper.SetDefault("schedule.default_criterion", defaults.Schedule.DefaultCriterion)
	viper.SetDefault("schedule.default_scale", defaults.Schedule.DefaultScale)
	viper.SetDefault("schedule.holidays", defaults.Schedule.Holidays)

	// Validation defaults
	viper.SetDefault("validation.max_lag_days", defaults.Validation.MaxLagDays)

	// Store defaults
	viper.SetDefault("store.data_dir", defaults.Store.DataDir)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.color", defaults.Output.Color)
	viper.SetDefault("output.bar_width", defaults.Output.BarWidth)
	viper.SetDefault("output.name_width", defaults.Output.NameWidth)

	// Report defaults
	viper.SetDefault("report.max_parallel", defaults.Report.MaxParallel)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gantry")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gantry"
	}
	return filepath.Join(home, ".config", "gantry")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
