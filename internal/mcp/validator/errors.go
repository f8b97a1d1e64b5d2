// Package validator checks discovered or user-supplied MCP server entries
// for problems that would stop a client from launching them.
package validator

import (
	"fmt"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Sentinel errors for validation failures.
var (
	// ErrMissingServerName indicates a server has no name.
	ErrMissingServerName = errors.New("server name is required")

	// ErrSuspiciousName indicates a name that is legal JSON but awkward to use.
	ErrSuspiciousName = errors.New("server name contains whitespace or a slash")

	// ErrMissingCommand indicates a stdio server has no command.
	ErrMissingCommand = errors.New("stdio server requires command")

	// ErrCommandNotFound indicates a stdio command does not resolve on PATH.
	ErrCommandNotFound = errors.New("command not found")

	// ErrMissingURL indicates a remote server has no URL.
	ErrMissingURL = errors.New("remote server requires URL")

	// ErrInvalidURL indicates a remote URL that is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnknownTransport indicates an entry whose transport cannot be inferred.
	ErrUnknownTransport = errors.New("transport cannot be determined")

	// ErrInvalidEnvKey indicates an environment variable key that is empty
	// or contains '='.
	ErrInvalidEnvKey = errors.New("invalid environment variable key")

	// ErrEmptyHeaderKey indicates an HTTP header has an empty key.
	ErrEmptyHeaderKey = errors.New("header key is empty")
)

// Severity indicates whether a validation issue is an error or warning.
type Severity int

const (
	// SeverityError indicates an entry no client can launch.
	SeverityError Severity = iota

	// SeverityWarning indicates an entry that may work but looks wrong.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ValidationError represents a single validation issue with context.
type ValidationError struct {
	// ServerName identifies which server has the issue.
	ServerName string

	// Field identifies which field has the issue.
	Field string

	// Message is a human-readable description of the problem.
	Message string

	// Severity indicates whether this is an error or warning.
	Severity Severity

	// Err is the underlying sentinel error, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	prefix := e.Severity.String()

	if e.ServerName != "" && e.Field != "" {
		return fmt.Sprintf("%s: server %q field %q: %s", prefix, e.ServerName, e.Field, e.Message)
	}
	if e.ServerName != "" {
		return fmt.Sprintf("%s: server %q: %s", prefix, e.ServerName, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// HasErrors returns true if any of the issues have error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, err := range errs {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the issues with error severity.
func Errors(errs []*ValidationError) []*ValidationError {
	return filter(errs, SeverityError)
}

// Warnings returns only the issues with warning severity.
func Warnings(errs []*ValidationError) []*ValidationError {
	return filter(errs, SeverityWarning)
}

func filter(errs []*ValidationError, sev Severity) []*ValidationError {
	var result []*ValidationError
	for _, err := range errs {
		if err.Severity == sev {
			result = append(result, err)
		}
	}
	return result
}
