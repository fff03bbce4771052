//go:build !windows

package infra

import (
	"fmt"

	"github.com/finnvos/voxd/internal/domain"
)

// stubHotkey is used where userspace global hotkey capture is not
// available (Wayland blocks it). Users bind `voxd toggle` to a desktop
// keyboard shortcut instead; the daemon works fine without a listener.
type stubHotkey struct{}

// NewHotkeyListener creates the platform hotkey listener.
func NewHotkeyListener() domain.HotkeyListener {
	return stubHotkey{}
}

func (stubHotkey) Register(combo string, fn func()) error {
	return fmt.Errorf("global hotkeys not supported on this platform; bind `voxd toggle` to a desktop shortcut")
}

func (stubHotkey) Stop() {}
