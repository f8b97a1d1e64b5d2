//go:build !windows

package health

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate starts the child in its own process group so that helpers it
// forks die with it.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}
