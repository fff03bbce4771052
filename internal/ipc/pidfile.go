package ipc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/domain"
)

// WritePID drops the advisory running marker for the current process.
func WritePID(pm domain.ProcessManager) error {
	pid := pm.GetCurrentPID()
	if err := os.WriteFile(config.PIDFile(), []byte(strconv.Itoa(pid)), 0600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// RemovePID clears the running marker on shutdown.
func RemovePID() {
	os.Remove(config.PIDFile())
}

// RunningPID reports the live daemon's PID, if any. A marker naming a
// dead process is stale state from a crash and is deleted on sight so
// the next start is clean.
func RunningPID(pm domain.ProcessManager) (int, bool) {
	data, err := os.ReadFile(config.PIDFile())
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		os.Remove(config.PIDFile())
		return 0, false
	}
	if !pm.IsRunning(pid) {
		os.Remove(config.PIDFile())
		return 0, false
	}
	return pid, true
}
