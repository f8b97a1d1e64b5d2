// Package cmd holds build metadata stamped in via ldflags, e.g.
//
//	go build -ldflags "-X github.com/thoreinstein/mcpm/cmd.Version=v0.3.0"
package cmd

import "fmt"

var (
	// Version is the release tag of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
