package doctor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp/parser"
)

// SyntaxCheck parses every existing client file and mcpm's own config.
type SyntaxCheck struct {
	cwd        string
	configPath string
}

var _ Check = (*SyntaxCheck)(nil)

// NewSyntaxCheck creates a syntax check for cwd.
func NewSyntaxCheck(cwd string) *SyntaxCheck {
	return &SyntaxCheck{cwd: cwd, configPath: config.DefaultPath()}
}

// Name returns the unique identifier for this check.
func (c *SyntaxCheck) Name() string { return "config-syntax" }

// Category returns the grouping for this check.
func (c *SyntaxCheck) Category() string { return "config" }

// Run executes the check.
func (c *SyntaxCheck) Run() *CheckResult {
	var issues []Issue
	checked := 0

	for _, f := range existing(clientFiles(c.cwd)) {
		checked++
		issues = append(issues, validateClientFile(f)...)
	}

	if c.configPath != "" {
		if data, err := os.ReadFile(c.configPath); err == nil {
			checked++
			var v map[string]any
			if err := yaml.Unmarshal(data, &v); err != nil {
				issues = append(issues, Issue{
					Client:   "mcpm",
					Path:     c.configPath,
					Problem:  "YAML error: " + err.Error(),
					Severity: SeverityError,
				})
			}
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   worst(issues),
		Issues:   issues,
	}
	switch {
	case checked == 0:
		result.Status = SeverityInfo
		result.Message = "no config files found to validate"
	case len(issues) == 0:
		result.Message = fmt.Sprintf("%d config file(s) parsed successfully", checked)
	default:
		result.Message = fmt.Sprintf("%d problem(s) across %d config file(s)", len(issues), checked)
		result.FixHint = "fix the syntax, or restore the .bak sibling written before mcpm's last change"
	}
	return result
}

// validateClientFile parses f and checks that its servers member, if any,
// is an object.
func validateClientFile(f configFile) []Issue {
	issue := func(sev Severity, problem string) []Issue {
		return []Issue{{Client: f.Kind.Label(), Path: f.Path, Problem: problem, Severity: sev}}
	}

	v, err := parser.ReadFile(f.Path)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return issue(SeverityError, pe.Err.Error())
		}
		return issue(SeverityError, err.Error())
	}

	doc, ok := v.(map[string]any)
	if !ok {
		return issue(SeverityError, "top-level value is not an object")
	}

	keys := []string{f.Kind.ServersKey()}
	if f.Kind.Shape() == client.ShapeVSCode {
		keys = append(keys, client.ServersKey)
	}
	for _, key := range keys {
		if m, present := doc[key]; present {
			if _, isObj := m.(map[string]any); !isObj {
				return issue(SeverityWarning, fmt.Sprintf("%q is not an object; its servers are ignored", key))
			}
		}
	}
	return nil
}
