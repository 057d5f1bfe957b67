package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/rx/pkg/rx"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError indicates a blocking validation failure.
	SeverityError Severity = iota
	// SeverityWarning indicates a recommended but non-blocking issue.
	SeverityWarning
	// SeverityInfo indicates an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", text)
	}
	return nil
}

// Issue represents a single validation problem.
type Issue struct {
	// Severity indicates the impact of the issue.
	Severity Severity `json:"severity"`
	// File is the schema or data file the issue belongs to (optional).
	File string `json:"file,omitempty"`
	// Field locates the issue inside the file, such as "document 2" (optional).
	Field string `json:"field,omitempty"`
	// Message is a human-readable description of the problem.
	Message string `json:"message"`
	// Value is a short rendering of the offending value (optional).
	Value string `json:"value,omitempty"`
	// Context is additional detail such as the error kind.
	Context map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.File != "" {
		sb.WriteString(i.File)
		sb.WriteString(": ")
	}
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	if i.Value != "" {
		fmt.Fprintf(&sb, " (got %s)", i.Value)
	}
	return sb.String()
}

// Result aggregates validation issues.
type Result struct {
	// Checked counts the documents that were checked against a schema.
	Checked int `json:"checked"`
	// Issues lists every problem found, in discovery order.
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// Add appends an issue to the result.
func (r *Result) Add(i Issue) {
	r.Issues = append(r.Issues, i)
}

// AddError adds an error issue to the result.
func (r *Result) AddError(file, field, message string, value any) {
	r.add(SeverityError, file, field, message, value)
}

// AddWarning adds a warning issue to the result.
func (r *Result) AddWarning(file, field, message string, value any) {
	r.add(SeverityWarning, file, field, message, value)
}

// AddInfo adds an info issue to the result.
func (r *Result) AddInfo(file, field, message string, value any) {
	r.add(SeverityInfo, file, field, message, value)
}

func (r *Result) add(s Severity, file, field, message string, value any) {
	i := Issue{Severity: s, File: file, Field: field, Message: message}
	if value != nil {
		i.Value = Summarize(value)
	}
	r.Issues = append(r.Issues, i)
}

// AddCompileError records a schema that failed to compile or a library
// that failed to load. The rx error kind is kept in the issue context.
func (r *Result) AddCompileError(file, field string, err error) {
	r.Issues = append(r.Issues, Issue{
		Severity: SeverityError,
		File:     file,
		Field:    field,
		Message:  err.Error(),
		Context:  map[string]string{"kind": ErrorKind(err)},
	})
}

// Errors returns a slice of all issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

// Warnings returns a slice of all issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.bySeverity(SeverityWarning)
}

func (r *Result) bySeverity(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}

// ErrorKind names the rx error class of err, or "error" when it carries none.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, rx.ErrConfiguration):
		return "configuration"
	case errors.Is(err, rx.ErrUnknownType):
		return "unknown-type"
	case errors.Is(err, rx.ErrNameSyntax):
		return "name-syntax"
	case errors.Is(err, rx.ErrDuplicateRegistration):
		return "duplicate"
	default:
		return "error"
	}
}

// maxValueLen bounds the rendering of values in issues.
const maxValueLen = 60

// Summarize renders a decoded value on one line for display. JSON is used
// where possible so strings and nested documents read unambiguously.
func Summarize(v any) string {
	var s string
	if data, err := json.Marshal(v); err == nil {
		s = string(data)
	} else {
		s = fmt.Sprintf("%v", v)
	}
	if r := []rune(s); len(r) > maxValueLen {
		s = string(r[:maxValueLen-3]) + "..."
	}
	return s
}
