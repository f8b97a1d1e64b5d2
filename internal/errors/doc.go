// Package errors provides error handling conventions for the mcpm CLI.
//
// It re-exports the constructors and inspection helpers of
// github.com/cockroachdb/errors, defines sentinel errors for common failure
// conditions, and an ExitError type for CLI exit code handling.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrMalformedConfig) {
//	    // the target file was not valid JSON; nothing was written
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. The root command unwraps it with [As] to pick the process
// exit status and print the suggestion.
package errors
