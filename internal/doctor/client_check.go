package doctor

import (
	"fmt"

	"github.com/thoreinstein/mcpm/internal/client"
)

// ClientCheck reports which client config files exist.
type ClientCheck struct {
	cwd string
}

var _ Check = (*ClientCheck)(nil)

// NewClientCheck creates a client presence check for cwd.
func NewClientCheck(cwd string) *ClientCheck {
	return &ClientCheck{cwd: cwd}
}

// Name returns the unique identifier for this check.
func (c *ClientCheck) Name() string { return "client-files" }

// Category returns the grouping for this check.
func (c *ClientCheck) Category() string { return "clients" }

// Run executes the check.
func (c *ClientCheck) Run() *CheckResult {
	files := clientFiles(c.cwd)

	var issues []Issue
	present, plugins := 0, 0
	for _, f := range files {
		switch {
		case f.Kind == client.ClaudeCodePlugin:
			plugins++
		case f.Exists:
			present++
		default:
			issues = append(issues, Issue{
				Client:   f.Kind.Label(),
				Path:     f.Path,
				Problem:  "not configured",
				Severity: SeverityInfo,
			})
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Issues:   issues,
	}
	total := len(files) - plugins
	if present == 0 && plugins == 0 {
		result.Status = SeverityWarning
		result.Message = "no client config files found; mcpm has nothing to manage"
		result.FixHint = "add a server with: mcpm add <name> <command>"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d of %d client config file(s) present", present, total)
	if plugins > 0 {
		result.Message += fmt.Sprintf(", %d plugin file(s)", plugins)
	}
	return result
}
