package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

// Exit codes for mdlinks.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitIssueErrors indicates the check found error diagnostics.
	ExitIssueErrors = 1

	// ExitIssueWarnings indicates the check found warnings under --strict.
	ExitIssueWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

// ErrIssuesFound signals that diagnostics decided the exit code.
// It is not logged by the entry point.
var ErrIssuesFound = errors.New("issues found")

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitInternalError
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.Stats.DiagnosticsBySeverity[config.SeverityError] > 0 {
		return ExitIssueErrors
	}

	if strict && result.Stats.DiagnosticsBySeverity[config.SeverityWarning] > 0 {
		return ExitIssueWarnings
	}

	return ExitSuccess
}
