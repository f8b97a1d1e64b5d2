package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Fixer is implemented by checks that can repair what they found.
// CanFix and Fix are only meaningful after Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	Path        string `json:"path" yaml:"path"`
	Fixed       bool   `json:"fixed" yaml:"fixed"`
	Description string `json:"description" yaml:"description"`
	Error       error  `json:"-" yaml:"-"`
}

// fileIssue is an Issue with what a fixer needs to repair it.
type fileIssue struct {
	Issue
	Mode    os.FileMode
	Fixable bool
}

// target narrows the mode to at most maxSecureFilePerm, keeping tighter
// bits such as 0600 intact.
func (fi fileIssue) target() os.FileMode {
	return fi.Mode & maxSecureFilePerm
}

// PermissionFixer narrows file modes found by PermissionCheck.
type PermissionFixer struct {
	issues []fileIssue
}

func (f *PermissionFixer) setIssues(issues []fileIssue) {
	f.issues = issues
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, i := range f.issues {
		if i.Fixable {
			n++
		}
	}
	return n
}

// Fix chmods every fixable file. Results follow issue order.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if !issue.Fixable {
			continue
		}
		target := issue.target()
		r := FixResult{Path: issue.Path}
		if err := os.Chmod(issue.Path, target); err != nil {
			r.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
			r.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		} else {
			r.Fixed = true
			r.Description = fmt.Sprintf("chmod %04o", target)
		}
		results = append(results, r)
	}
	return results
}
