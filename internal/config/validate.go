package config

import (
	"fmt"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidClient indicates an unknown or read-only client id.
	ErrInvalidClient = errors.New("invalid default client")

	// ErrInvalidLogFormat indicates a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrNegativeConcurrency indicates probe_concurrency below zero.
	ErrNegativeConcurrency = errors.New("probe_concurrency must be >= 0")
)

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, &FieldError{Value: fmt.Sprint(cfg.Version), Err: ErrUnsupportedVersion})
	}

	for _, id := range cfg.DefaultClients {
		k, ok := client.Parse(id)
		if !ok || !k.Writable() {
			errs = append(errs, &FieldError{Value: id, Err: ErrInvalidClient})
		}
	}

	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, &FieldError{Value: cfg.LogFormat, Err: ErrInvalidLogFormat})
	}

	if cfg.ProbeConcurrency < 0 {
		errs = append(errs, ErrNegativeConcurrency)
	}

	return errs
}

// FieldError names the offending value of a config field.
type FieldError struct {
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
