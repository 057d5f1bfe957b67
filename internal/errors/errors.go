package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Process exit codes.
const (
	ExitSuccess = 0
	ExitUser    = 1 // bad flags, schema or configuration
	ExitSystem  = 2 // I/O and permissions
	ExitInvalid = 3 // every input was readable but some data failed its schema
)

var (
	// ErrNotFound marks a missing schema, library or data file.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig marks an rx.yaml that failed to parse or validate.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat marks a document that is not JSON, YAML or TOML.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidData marks a check run in which some documents did not
	// conform. The failures have been reported by then.
	ErrInvalidData = errors.New("data does not match schema")
)

// ExitError attaches a process exit code, and optionally a hint for the
// user, to an error.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError wraps err with code and no suggestion.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError wraps err with [ExitUser].
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError wraps err with [ExitSystem].
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError reports a broken rx.yaml and points at rx init.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Run: rx init --force")
}

// NewInvalidError reports that failed documents did not conform.
func NewInvalidError(failed int) *ExitError {
	return NewExitError(errors.Wrapf(ErrInvalidData, "%d document(s) failed", failed), ExitInvalid)
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Code maps err to a process exit code. A nil error is [ExitSuccess]; an
// error with no ExitError in its chain is [ExitUser].
func Code(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}

// Suggestion returns the hint of the outermost ExitError in err's chain
// that carries one.
func Suggestion(err error) string {
	for err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return ""
		}
		if exitErr.Suggestion != "" {
			return exitErr.Suggestion
		}
		err = exitErr.Err
	}
	return ""
}
