package validator

import (
	"net/url"
	"strings"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// LookPathFunc resolves a command the way exec.LookPath does.
type LookPathFunc func(file string) (string, error)

// Option configures a Validator.
type Option func(*Validator)

// Validator checks mcp.Server entries.
type Validator struct {
	lookPath LookPathFunc
}

// New creates a new Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithLookPath enables the PATH check for stdio commands.
func WithLookPath(fn LookPathFunc) Option {
	return func(v *Validator) {
		v.lookPath = fn
	}
}

// Validate checks one server. It returns nil when nothing is wrong.
func (v *Validator) Validate(s mcp.Server) []*ValidationError {
	var errs []*ValidationError
	add := func(field, msg string, sev Severity, err error) {
		errs = append(errs, &ValidationError{
			ServerName: s.Name,
			Field:      field,
			Message:    msg,
			Severity:   sev,
			Err:        err,
		})
	}

	switch {
	case strings.TrimSpace(s.Name) == "":
		add("name", "server name is required", SeverityError, ErrMissingServerName)
	case strings.ContainsAny(s.Name, " \t/\\"):
		add("name", "name contains whitespace or a slash", SeverityWarning, ErrSuspiciousName)
	}

	t := s.Transport
	switch t.Kind {
	case mcp.TransportStdio:
		v.validateCommand(t, add)
	case mcp.TransportHTTP, mcp.TransportSSE:
		validateURL(t, add)
	default:
		add("", "entry has neither command nor url", SeverityWarning, ErrUnknownTransport)
	}

	for key := range s.Env {
		if key == "" || strings.Contains(key, "=") {
			add("env", "environment variable key "+quote(key)+" is invalid", SeverityError, ErrInvalidEnvKey)
			break
		}
	}

	for key := range t.Headers {
		if key == "" {
			add("headers", "header key cannot be empty", SeverityError, ErrEmptyHeaderKey)
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateAll validates every server, in order.
func (v *Validator) ValidateAll(servers []mcp.Server) []*ValidationError {
	var errs []*ValidationError
	for _, s := range servers {
		errs = append(errs, v.Validate(s)...)
	}
	return errs
}

func (v *Validator) validateCommand(t mcp.Transport, add func(string, string, Severity, error)) {
	if strings.TrimSpace(t.Command) == "" {
		add("command", "stdio transport requires command", SeverityError, ErrMissingCommand)
		return
	}
	if len(t.Args) == 0 && strings.ContainsAny(strings.TrimSpace(t.Command), " \t") {
		add("command", "command contains spaces; arguments belong in args", SeverityWarning, nil)
	}
	if v.lookPath != nil {
		if _, err := v.lookPath(t.Command); err != nil {
			add("command", t.Command+" is not on PATH", SeverityWarning, ErrCommandNotFound)
		}
	}
}

func validateURL(t mcp.Transport, add func(string, string, Severity, error)) {
	if t.URL == "" {
		add("url", t.Kind.String()+" transport requires URL", SeverityError, ErrMissingURL)
		return
	}
	u, err := url.Parse(t.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("url", "URL must be absolute http or https", SeverityError, ErrInvalidURL)
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
