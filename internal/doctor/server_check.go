package doctor

import (
	"fmt"
	"os/exec"

	"github.com/thoreinstein/mcpm/internal/discovery"
	"github.com/thoreinstein/mcpm/internal/mcp/validator"
)

// ServerCheck validates every discovered server entry: commands resolve
// on PATH, remote URLs are absolute, env keys are usable.
type ServerCheck struct {
	cwd       string
	validator *validator.Validator
}

var _ Check = (*ServerCheck)(nil)

// NewServerCheck creates a server check for cwd that resolves commands
// with exec.LookPath.
func NewServerCheck(cwd string, opts ...validator.Option) *ServerCheck {
	opts = append([]validator.Option{validator.WithLookPath(exec.LookPath)}, opts...)
	return &ServerCheck{cwd: cwd, validator: validator.New(opts...)}
}

// Name returns the unique identifier for this check.
func (c *ServerCheck) Name() string { return "server-entries" }

// Category returns the grouping for this check.
func (c *ServerCheck) Category() string { return "servers" }

// Run executes the check.
func (c *ServerCheck) Run() *CheckResult {
	result := discovery.Discover(c.cwd)

	var issues []Issue
	for _, s := range result.Servers {
		for _, ve := range c.validator.Validate(s) {
			sev := SeverityWarning
			if ve.Severity == validator.SeverityError {
				sev = SeverityError
			}
			issues = append(issues, Issue{
				Client:   s.Client.Label(),
				Path:     s.SourcePath,
				Server:   s.Name,
				Problem:  ve.Message,
				Severity: sev,
			})
		}
	}

	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   worst(issues),
		Issues:   issues,
	}
	switch {
	case len(result.Servers) == 0:
		res.Status = SeverityInfo
		res.Message = "no servers discovered"
	case len(issues) == 0:
		res.Message = fmt.Sprintf("%d server(s) look launchable", len(result.Servers))
	default:
		res.Message = fmt.Sprintf("%d issue(s) across %d server(s)", len(issues), len(result.Servers))
	}
	return res
}
