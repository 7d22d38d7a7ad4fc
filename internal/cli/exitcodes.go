package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/runner"
)

// Exit codes for peggylint.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitLintErrors indicates lint completed but found errors.
	ExitLintErrors = 1

	// ExitLintWarnings indicates lint completed but found warnings (when strict mode).
	ExitLintWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates that some grammar files could not be read,
	// linted, or written.
	ExitIOError = 74
)

// ErrLintIssuesFound is returned when lint issues are found.
var ErrLintIssuesFound = errors.New("lint issues found")

// ExitError attaches a process exit code to a command failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// withExitCode wraps err so that ExitCode reports code for it.
func withExitCode(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps a command error to the process exit code. Errors without
// an attached code exit with 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitLintErrors
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
// Lint errors win over warnings, which win over files that failed.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errs := result.Stats.DiagnosticsBySeverity[config.SeverityError]
	warnings := result.Stats.DiagnosticsBySeverity[config.SeverityWarning]

	switch {
	case errs > 0:
		return ExitLintErrors
	case strict && warnings > 0:
		return ExitLintWarnings
	case result.HasErrors():
		return ExitIOError
	default:
		return ExitSuccess
	}
}
