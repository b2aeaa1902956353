// Package errors provides centralized error definitions and error handling utilities
// for gantry. It defines sentinel errors for the scheduling core, domain error types
// for structural graph failures, semantic error types, and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures of a scheduling subsystem:
//   - GraphError: an invalid dependency edge or task set (InvalidEdgeError)
//   - CycleError: an operation that requires a DAG was given a cyclic graph (CyclicGraphError)
//   - ScheduleError: a scheduling run could not be set up (bad options, unknown criterion)
//   - StoreError: reading or writing project data failed
//
// Semantic errors represent common error conditions:
//   - NotFoundError: a project or task could not be found
//   - ValidationError: invalid input
//
// Scheduling conflicts and resource overlaps are never errors. They are reported
// in-band by the scheduler and the allocator.
//
// # Usage
//
//	err := errors.NewGraphError("edge references unknown task", errors.ErrUnknownTask).
//	    WithEdge("A", "Z", "finish_to_start")
//
//	if errors.Is(err, errors.ErrUnknownTask) { ... }
//
//	var cycleErr *errors.CycleError
//	if errors.As(err, &cycleErr) { ... }
//
//	if errors.IsStructural(err) { os.Exit(errors.ExitCode(err)) }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Graph-related sentinel errors
var (
	// ErrUnknownTask indicates an edge names a task id absent from the task set.
	ErrUnknownTask = New("unknown task")
	// ErrSelfLoop indicates an edge whose prerequisite and dependent are the same task.
	ErrSelfLoop = New("task depends on itself")
	// ErrDuplicateEdge indicates two edges with the same (from, to, type) triple.
	ErrDuplicateEdge = New("duplicate dependency")
	// ErrDuplicateTask indicates two tasks share an id.
	ErrDuplicateTask = New("duplicate task id")
	// ErrDependencyCycle indicates a circular dependency between tasks.
	ErrDependencyCycle = New("dependency cycle detected")
)

// Project-related sentinel errors
var (
	// ErrProjectNotFound indicates that a project could not be found.
	ErrProjectNotFound = New("project not found")
	// ErrTaskNotFound indicates that a task could not be found.
	ErrTaskNotFound = New("task not found")
	// ErrProjectLocked indicates another process holds the project lock.
	ErrProjectLocked = New("project is locked")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// GantryError is the base interface for all gantry errors.
type GantryError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message[: cause]".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// GraphError is raised while building a dependency graph: an edge names a
// nonexistent task, is a self-loop, or duplicates an existing same-type edge.
// It aborts the whole computation.
//
// Example:
//
//	err := errors.NewGraphError("invalid dependency", errors.ErrSelfLoop).WithEdge("A", "A", "finish_to_start")
//	fmt.Println(err) // "graph error [edge=A->A, type=finish_to_start]: invalid dependency: task depends on itself"
type GraphError struct {
	baseError
	From     string
	To       string
	EdgeType string
	TaskID   string
}

// NewGraphError creates a new GraphError.
func NewGraphError(message string, cause error) *GraphError {
	return &GraphError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithEdge adds the offending edge to the error context.
func (e *GraphError) WithEdge(from, to, edgeType string) *GraphError {
	e.From = from
	e.To = to
	e.EdgeType = edgeType
	return e
}

// WithTaskID adds the offending task id to the error context.
func (e *GraphError) WithTaskID(id string) *GraphError {
	e.TaskID = id
	return e
}

// Error returns the formatted error message.
func (e *GraphError) Error() string {
	var parts []string
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}
	if e.From != "" || e.To != "" {
		parts = append(parts, fmt.Sprintf("edge=%s->%s", e.From, e.To))
	}
	if e.EdgeType != "" {
		parts = append(parts, fmt.Sprintf("type=%s", e.EdgeType))
	}
	return e.format("graph error", parts)
}

// Is checks if this error matches the target.
func (e *GraphError) Is(target error) bool {
	if _, ok := target.(*GraphError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CycleError is raised when an operation that requires an acyclic graph
// (critical path, auto-scheduling) is handed a graph containing a cycle.
// TaskIDs lists the tasks that could not be ordered.
//
// Example:
//
//	err := errors.NewCycleError("critical path", []string{"A", "B", "C"})
//	fmt.Println(err) // "cycle error [op=critical path, tasks=A,B,C]: dependency cycle detected"
type CycleError struct {
	baseError
	Operation string
	TaskIDs   []string
}

// NewCycleError creates a new CycleError. It always wraps ErrDependencyCycle.
func NewCycleError(operation string, taskIDs []string) *CycleError {
	return &CycleError{
		baseError: baseError{
			message:    ErrDependencyCycle.Error(),
			severity:   SeverityError,
			userFacing: true,
		},
		Operation: operation,
		TaskIDs:   taskIDs,
	}
}

// Error returns the formatted error message.
func (e *CycleError) Error() string {
	var parts []string
	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Operation))
	}
	if len(e.TaskIDs) > 0 {
		parts = append(parts, fmt.Sprintf("tasks=%s", strings.Join(e.TaskIDs, ",")))
	}
	return e.format("cycle error", parts)
}

// Is checks if this error matches the target.
func (e *CycleError) Is(target error) bool {
	if _, ok := target.(*CycleError); ok {
		return true
	}
	if target == ErrDependencyCycle {
		return true
	}
	return e.baseError.Is(target)
}

// ScheduleError represents a scheduling run that could not be set up.
//
// Example:
//
//	err := errors.NewScheduleError("unknown optimization criterion", errors.ErrInvalidInput).WithProjectID("tower-b")
type ScheduleError struct {
	baseError
	ProjectID string
	Criterion string
}

// NewScheduleError creates a new ScheduleError.
func NewScheduleError(message string, cause error) *ScheduleError {
	return &ScheduleError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithProjectID adds a project id to the error context.
func (e *ScheduleError) WithProjectID(id string) *ScheduleError {
	e.ProjectID = id
	return e
}

// WithCriterion adds an optimization criterion to the error context.
func (e *ScheduleError) WithCriterion(c string) *ScheduleError {
	e.Criterion = c
	return e
}

// Error returns the formatted error message.
func (e *ScheduleError) Error() string {
	var parts []string
	if e.ProjectID != "" {
		parts = append(parts, fmt.Sprintf("project=%s", e.ProjectID))
	}
	if e.Criterion != "" {
		parts = append(parts, fmt.Sprintf("criterion=%s", e.Criterion))
	}
	return e.format("schedule error", parts)
}

// Is checks if this error matches the target.
func (e *ScheduleError) Is(target error) bool {
	if _, ok := target.(*ScheduleError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StoreError represents a failure reading or writing project data.
// Store errors are internal and not shown verbatim to users.
type StoreError struct {
	baseError
	ProjectID string
	Path      string
}

// NewStoreError creates a new StoreError.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: false,
		},
	}
}

// WithProjectID adds a project id to the error context.
func (e *StoreError) WithProjectID(id string) *StoreError {
	e.ProjectID = id
	return e
}

// WithPath adds a file path to the error context.
func (e *StoreError) WithPath(path string) *StoreError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	var parts []string
	if e.ProjectID != "" {
		parts = append(parts, fmt.Sprintf("project=%s", e.ProjectID))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("store error", parts)
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("project", "tower-b")
//	fmt.Println(err) // "project 'tower-b' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	switch e.ResourceType {
	case "project":
		if target == ErrProjectNotFound {
			return true
		}
	case "task":
		if target == ErrTaskNotFound {
			return true
		}
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("duration must be non-negative").WithField("duration_days").WithValue(-2)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var gantryErr GantryError
	if As(err, &gantryErr) {
		return gantryErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement GantryError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var gantryErr GantryError
	if As(err, &gantryErr) {
		return gantryErr.Severity()
	}
	return SeverityError
}

// IsStructural returns true for errors that make the whole graph unusable:
// invalid edges, duplicate tasks and dependency cycles. No partial result is
// meaningful when one of these occurs.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	var graphErr *GraphError
	var cycleErr *CycleError
	return As(err, &graphErr) || As(err, &cycleErr) || Is(err, ErrDependencyCycle)
}

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2 // structural graph error or invalid input, the 422 class
	ExitNotFound   = 3
)

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsStructural(err), Is(err, ErrInvalidInput):
		return ExitValidation
	case Is(err, ErrProjectNotFound), Is(err, ErrTaskNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike a bare message, this preserves the GantryError chain for As/Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
