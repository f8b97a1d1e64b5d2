// Package editor launches the user's preferred text editor on a client
// config file.
package editor

import (
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Command builds the editor invocation for path without running it. The
// dashboard hands it to the terminal program so the screen is released
// while the editor runs.
//
// $EDITOR and $VISUAL may carry arguments, e.g. "code --wait".
func Command(path string) *exec.Cmd {
	fields := strings.Fields(detectEditor())
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	args := append(fields[1:len(fields):len(fields)], path)
	return exec.Command(fields[0], args...)
}

// Open runs the editor on path attached to the current terminal and waits
// for it to exit. The file must already exist.
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}

	cmd := Command(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "running editor")
	}
	return nil
}

// detectEditor returns the editor command to use based on environment variables
// and available binaries. Fallback chain: $EDITOR → $VISUAL → nano → vi
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}

	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}

	// nano is easier for people who did not pick an editor.
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	return "vi"
}
