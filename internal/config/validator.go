package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "output.bar_width")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidCriteria returns the list of valid optimization criteria
func ValidCriteria() []string {
	return []string{"duration", "cost", "resources"}
}

// ValidScales returns the list of valid timeline scales
func ValidScales() []string {
	return []string{"day", "week", "month"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"text", "json"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSchedule()...)
	errors = append(errors, c.validateValidation()...)
	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateReport()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateSchedule validates the ScheduleConfig
func (c *Config) validateSchedule() []ValidationError {
	var errors []ValidationError

	if c.Schedule.DefaultCriterion != "" && !slices.Contains(ValidCriteria(), c.Schedule.DefaultCriterion) {
		errors = append(errors, ValidationError{
			Field:   "schedule.default_criterion",
			Value:   c.Schedule.DefaultCriterion,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidCriteria(), ", ")),
		})
	}

	if c.Schedule.DefaultScale != "" && !slices.Contains(ValidScales(), c.Schedule.DefaultScale) {
		errors = append(errors, ValidationError{
			Field:   "schedule.default_scale",
			Value:   c.Schedule.DefaultScale,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidScales(), ", ")),
		})
	}

	if _, err := c.Schedule.HolidayDates(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "schedule.holidays",
			Value:   c.Schedule.Holidays,
			Message: fmt.Sprintf("dates must use the %s layout: %v", DateLayout, err),
		})
	}

	return errors
}

// validateValidation validates the ValidationConfig
func (c *Config) validateValidation() []ValidationError {
	var errors []ValidationError

	if c.Validation.MaxLagDays < 0 {
		errors = append(errors, ValidationError{
			Field:   "validation.max_lag_days",
			Value:   c.Validation.MaxLagDays,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if strings.ContainsRune(c.Store.DataDir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "store.data_dir",
			Value:   c.Store.DataDir,
			Message: "contains invalid null character",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	const minBarWidth, maxBarWidth = 10, 200
	if c.Output.BarWidth < minBarWidth || c.Output.BarWidth > maxBarWidth {
		errors = append(errors, ValidationError{
			Field:   "output.bar_width",
			Value:   c.Output.BarWidth,
			Message: fmt.Sprintf("must be between %d and %d", minBarWidth, maxBarWidth),
		})
	}

	if c.Output.NameWidth < 4 {
		errors = append(errors, ValidationError{
			Field:   "output.name_width",
			Value:   c.Output.NameWidth,
			Message: "must be at least 4",
		})
	}

	return errors
}

// validateReport validates the ReportConfig
func (c *Config) validateReport() []ValidationError {
	var errors []ValidationError

	if c.Report.MaxParallel < 1 {
		errors = append(errors, ValidationError{
			Field:   "report.max_parallel",
			Value:   c.Report.MaxParallel,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
