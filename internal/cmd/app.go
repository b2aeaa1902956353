package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/gantry/internal/calendar"
	"github.com/Iron-Ham/gantry/internal/config"
	"github.com/Iron-Ham/gantry/internal/errors"
	"github.com/Iron-Ham/gantry/internal/gantt"
	"github.com/Iron-Ham/gantry/internal/logging"
	"github.com/Iron-Ham/gantry/internal/report"
	"github.com/Iron-Ham/gantry/internal/store"
)

// app is everything a command needs, built from the configuration and the
// global flags.
type app struct {
	cfg     *config.Config
	logDir  string
	logger  *logging.Logger
	store   *store.FileStore
	service *gantt.Service
	printer *report.Printer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewValidationError("invalid configuration").WithCause(err)
	}
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		cfg.Output.Format = string(report.FormatJSON)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current directory")
	}
	dataDir := cfg.Store.ResolveDataDir(cwd)

	var storeOpts []store.Option
	if noWait, _ := cmd.Flags().GetBool("no-wait"); noWait {
		storeOpts = append(storeOpts, store.WithoutWaiting())
	}
	st, err := store.New(dataDir, storeOpts...)
	if err != nil {
		return nil, err
	}

	logDir := resolveLogDir(cfg.Logging, dataDir)
	logger, err := newLogger(cfg.Logging, logDir)
	if err != nil {
		return nil, err
	}

	holidays, err := cfg.Schedule.HolidayDates()
	if err != nil {
		return nil, errors.NewValidationError("invalid holiday").WithField("schedule.holidays").WithCause(err)
	}
	scale, err := calendar.ParseScale(cfg.Schedule.DefaultScale)
	if err != nil {
		return nil, errors.NewValidationError("invalid scale").WithField("schedule.default_scale").WithCause(err)
	}

	svc := gantt.NewService(st,
		gantt.WithLogger(logger),
		gantt.WithMaxLagDays(cfg.Validation.MaxLagDays),
		gantt.WithHolidays(holidays),
		gantt.WithAvoidWeekends(cfg.Schedule.AvoidWeekends),
		gantt.WithDefaultScale(scale),
	)

	return &app{
		cfg:     cfg,
		logDir:  logDir,
		logger:  logger,
		store:   st,
		service: svc,
		printer: report.New(cmd.OutOrStdout(), report.OptionsFromConfig(cfg.Output)),
	}, nil
}

// resolveLogDir returns the configured log directory, or "logs" beside the
// data directory.
func resolveLogDir(cfg config.LoggingConfig, dataDir string) string {
	if cfg.Dir != "" {
		return cfg.Dir
	}
	return filepath.Join(filepath.Dir(dataDir), "logs")
}

func newLogger(cfg config.LoggingConfig, dir string) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(dir, cfg.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log")
	}
	return logger, nil
}

func (a *app) close() {
	_ = a.logger.Close()
}

// dateFlag parses an optional YYYY-MM-DD flag.
func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(config.DateLayout, s)
	if err != nil {
		return nil, errors.NewValidationError("invalid date").WithField(name).WithValue(s).WithCause(err)
	}
	return &t, nil
}

func dateRangeFlags(cmd *cobra.Command) (gantt.DateRange, error) {
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return gantt.DateRange{}, err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return gantt.DateRange{}, err
	}
	return gantt.DateRange{From: from, To: to}, nil
}
