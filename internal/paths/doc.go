// Package paths provides home directory and XDG path resolution for mcpm.
//
// Client config files live in well-known, home-relative or project-relative
// locations (see package client). This package only resolves the roots those
// locations hang off and mcpm's own config directory.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg so XDG Base Directory
// locations resolve the same on every platform. mcpm's config file is searched in
// [AppConfigDir], i.e. <XDG config home>/mcpm.
//
// # Error Handling
//
// [Home] and [HomeJoin] return empty strings when the home directory is not
// known; callers treat that as "path undeterminable". Use [ResolveHome] when
// the reason matters.
package paths
