// Package doctor diagnoses client config files and the servers they
// declare.
package doctor

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a potential issue that doesn't prevent operation.
	SeverityWarning

	// SeverityError indicates a problem that prevents a client from loading its servers.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Status   Severity `json:"status" yaml:"status"`
	Message  string   `json:"message" yaml:"message"`

	// Issues lists per-file or per-server findings behind Status.
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Fixable indicates whether doctor --fix can repair at least one issue.
	Fixable bool   `json:"fixable,omitempty" yaml:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty" yaml:"fix_hint,omitempty"`
}

// Issue is one finding inside a check.
type Issue struct {
	Client   string   `json:"client,omitempty" yaml:"client,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Server   string   `json:"server,omitempty" yaml:"server,omitempty"`
	Problem  string   `json:"problem" yaml:"problem"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed" yaml:"passed"`
	Info     int `json:"info" yaml:"info"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
}

// worst returns the highest severity among issues, or SeverityPass.
func worst(issues []Issue) Severity {
	s := SeverityPass
	for _, i := range issues {
		if i.Severity > s {
			s = i.Severity
		}
	}
	return s
}
