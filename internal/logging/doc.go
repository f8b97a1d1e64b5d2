// Package logging provides structured logging for the mcpm CLI using slog.
//
// The package supports text and JSON output formats, verbosity-derived log
// levels, a context carrier, and helpers for testing. All loggers are based
// on the standard library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// The text handler colours output on terminals and masks attribute values
// that look like secrets (see package redact).
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
