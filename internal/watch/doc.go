// Package watch notices edits to client config files so the dashboard can
// rescan without a keypress.
//
// Parent directories are watched rather than the files themselves: mcpm and
// most editors replace files by renaming a sibling over them, which drops a
// watch held on the old inode.
package watch
