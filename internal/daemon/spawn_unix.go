//go:build !windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// SpawnDetached re-execs the current binary with the given arguments in
// a new session, fully detached from the caller's terminal. Used by the
// CLI to launch the daemon and the indicator.
func SpawnDetached(args ...string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	return cmd.Start()
}
