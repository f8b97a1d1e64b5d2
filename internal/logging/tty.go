package logging

import (
	"os"

	"golang.org/x/term"
)

// fder is satisfied by *os.File and wrappers that expose a descriptor.
type fder interface {
	Fd() uintptr
}

// IsTTY reports whether v is backed by a terminal descriptor. Values that
// carry no descriptor (buffers, pipes wrapped in writers) are never a TTY.
func IsTTY(v any) bool {
	f, ok := v.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StdoutIsTTY reports whether stdout is an interactive terminal.
// Commands use it to decide between the dashboard or picker and plain output.
func StdoutIsTTY() bool {
	return IsTTY(os.Stdout)
}

// SupportsColor reports whether log lines written to w may carry ANSI
// escapes: w must be a terminal and the environment must allow colour.
func SupportsColor(w any) bool {
	return colorAllowed(os.LookupEnv) && IsTTY(w)
}

// colorAllowed applies the environment rules: NO_COLOR set to anything,
// even empty, disables colour (https://no-color.org), as does TERM=dumb.
func colorAllowed(lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if t, _ := lookup("TERM"); t == "dumb" {
		return false
	}
	return true
}
