package doctor

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// maxSecureFilePerm is the widest mode a client file should have. Client
// files hold env values and headers that are often credentials.
const maxSecureFilePerm os.FileMode = 0o644

// PermissionCheck flags client files readable or writable beyond 0644.
type PermissionCheck struct {
	PermissionFixer
	cwd string
}

var (
	_ Check = (*PermissionCheck)(nil)
	_ Fixer = (*PermissionCheck)(nil)
)

// NewPermissionCheck creates a permission check for cwd.
func NewPermissionCheck(cwd string) *PermissionCheck {
	return &PermissionCheck{cwd: cwd}
}

// Name returns the unique identifier for this check.
func (c *PermissionCheck) Name() string { return "file-permissions" }

// Category returns the grouping for this check.
func (c *PermissionCheck) Category() string { return "filesystem" }

// Run executes the check.
func (c *PermissionCheck) Run() *CheckResult {
	files := existing(clientFiles(c.cwd))
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if runtime.GOOS == "windows" {
		result.Status = SeverityInfo
		result.Message = "permission checks are skipped on windows"
		return result
	}

	var found []fileIssue
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			found = append(found, fileIssue{
				Issue: Issue{Client: f.Kind.Label(), Path: f.Path, Problem: "cannot stat file: " + err.Error(), Severity: SeverityError},
			})
			continue
		}
		perm := info.Mode().Perm()
		if perm&^maxSecureFilePerm == 0 {
			continue
		}
		problem := fmt.Sprintf("mode %04o is wider than %04o", perm, maxSecureFilePerm)
		if perm&0o002 != 0 {
			problem = fmt.Sprintf("mode %04o is world-writable", perm)
		}
		found = append(found, fileIssue{
			Issue:   Issue{Client: f.Kind.Label(), Path: f.Path, Problem: problem, Severity: SeverityWarning},
			Mode:    perm,
			Fixable: true,
		})
	}
	c.setIssues(found)

	var hints []string
	for _, fi := range found {
		result.Issues = append(result.Issues, fi.Issue)
		if fi.Fixable {
			hints = append(hints, fmt.Sprintf("chmod %04o %s", fi.target(), fi.Path))
		}
	}
	result.Status = worst(result.Issues)
	result.Fixable = c.CanFix()
	result.FixHint = strings.Join(hints, "; ")

	if len(found) == 0 {
		result.Message = fmt.Sprintf("all %d client file(s) have safe permissions", len(files))
	} else {
		result.Message = fmt.Sprintf("found %d permission issue(s) across %d file(s)", len(found), len(files))
	}
	return result
}
