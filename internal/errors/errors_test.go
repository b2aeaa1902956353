package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// GraphError Tests
// -----------------------------------------------------------------------------

func TestGraphError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "basic error",
			err:  NewGraphError("invalid dependency", nil),
			want: "graph error: invalid dependency",
		},
		{
			name: "with edge and cause",
			err:  NewGraphError("invalid dependency", ErrSelfLoop).WithEdge("A", "A", "finish_to_start"),
			want: "graph error [edge=A->A, type=finish_to_start]: invalid dependency: task depends on itself",
		},
		{
			name: "with task",
			err:  NewGraphError("task listed twice", ErrDuplicateTask).WithTaskID("T1"),
			want: "graph error [task=T1]: task listed twice: duplicate task id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphError_Is(t *testing.T) {
	err := NewGraphError("invalid dependency", ErrUnknownTask).WithEdge("A", "Z", "start_to_start")

	if !Is(err, &GraphError{}) {
		t.Error("Is(GraphError{}) = false, want true")
	}
	if !Is(err, ErrUnknownTask) {
		t.Error("Is(ErrUnknownTask) = false, want true")
	}
	if Is(err, ErrSelfLoop) {
		t.Error("Is(ErrSelfLoop) = true, want false")
	}

	wrapped := fmt.Errorf("build graph: %w", err)
	var graphErr *GraphError
	if !As(wrapped, &graphErr) {
		t.Fatal("As() failed through wrapping")
	}
	if graphErr.To != "Z" {
		t.Errorf("To = %q, want %q", graphErr.To, "Z")
	}
}

// -----------------------------------------------------------------------------
// CycleError Tests
// -----------------------------------------------------------------------------

func TestCycleError(t *testing.T) {
	err := NewCycleError("critical path", []string{"A", "B", "C"})

	want := "cycle error [op=critical path, tasks=A,B,C]: dependency cycle detected"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrDependencyCycle) {
		t.Error("Is(ErrDependencyCycle) = false, want true")
	}
	if !Is(err, &CycleError{}) {
		t.Error("Is(CycleError{}) = false, want true")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// ScheduleError / StoreError Tests
// -----------------------------------------------------------------------------

func TestScheduleError_Error(t *testing.T) {
	err := NewScheduleError("unknown optimization criterion", ErrInvalidInput).
		WithProjectID("tower-b").
		WithCriterion("speed")

	want := "schedule error [project=tower-b, criterion=speed]: unknown optimization criterion: invalid input"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
}

func TestStoreError_NotUserFacing(t *testing.T) {
	err := NewStoreError("write project file", errors.New("disk full")).WithPath("/tmp/p.yaml")

	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
	want := "store error [path=/tmp/p.yaml]: write project file: disk full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError_Is(t *testing.T) {
	projectErr := NewNotFoundError("project", "tower-b")
	if projectErr.Error() != "project 'tower-b' not found" {
		t.Errorf("Error() = %q", projectErr.Error())
	}
	if !Is(projectErr, ErrProjectNotFound) {
		t.Error("project NotFoundError should match ErrProjectNotFound")
	}
	if Is(projectErr, ErrTaskNotFound) {
		t.Error("project NotFoundError should not match ErrTaskNotFound")
	}

	taskErr := NewNotFoundError("task", "T9")
	if !Is(taskErr, ErrTaskNotFound) {
		t.Error("task NotFoundError should match ErrTaskNotFound")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("duration must be non-negative").
		WithField("duration_days").
		WithValue(-2)

	want := "validation error [field=duration_days, value=-2]: duration must be non-negative"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsStructural(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"graph error", NewGraphError("bad edge", ErrSelfLoop), true},
		{"cycle error", NewCycleError("schedule", []string{"A"}), true},
		{"wrapped cycle sentinel", Wrap(ErrDependencyCycle, "topological order"), true},
		{"validation error", NewValidationError("bad"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStructural(tt.err); got != tt.want {
				t.Errorf("IsStructural() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"graph error", NewGraphError("bad edge", ErrUnknownTask), ExitValidation},
		{"validation", NewValidationError("bad"), ExitValidation},
		{"project not found", NewNotFoundError("project", "x"), ExitNotFound},
		{"wrapped task not found", Wrapf(ErrTaskNotFound, "update %s", "T1"), ExitNotFound},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetSeverityAndUserFacing(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want debug", got)
	}
	if got := GetSeverity(errors.New("x")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want error", got)
	}
	if got := GetSeverity(NewNotFoundError("task", "T1")); got != SeverityWarning {
		t.Errorf("GetSeverity(NotFound) = %v, want warning", got)
	}
	if IsUserFacing(errors.New("x")) {
		t.Error("plain errors are not user facing")
	}
	if !IsUserFacing(Wrap(NewGraphError("bad", nil), "build")) {
		t.Error("wrapped GraphError should be user facing")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
	err := Wrapf(ErrUnknownTask, "edge %s", "A->Z")
	if err.Error() != "edge A->Z: unknown task" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !Is(err, ErrUnknownTask) {
		t.Error("Wrapf should preserve the chain")
	}
}
