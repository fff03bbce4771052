//go:build windows

package infra

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unsafe"

	"github.com/finnvos/voxd/internal/domain"
)

// WindowsHotkey implements domain.HotkeyListener via RegisterHotKey.
// The message loop runs on a locked OS thread; the callback therefore
// fires off the daemon loop and must hand off through a channel.
type WindowsHotkey struct {
	quit chan struct{}
}

// NewHotkeyListener creates the platform hotkey listener.
func NewHotkeyListener() domain.HotkeyListener {
	return &WindowsHotkey{quit: make(chan struct{})}
}

const (
	wmHotkey = 0x0312
	hotkeyID = 1
)

// Register installs the global hotkey and starts the message loop.
func (h *WindowsHotkey) Register(combo string, fn func()) error {
	mod, vk, err := parseHotkey(combo)
	if err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", combo, err)
	}

	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		user32 := syscall.NewLazyDLL("user32.dll")
		procRegisterHotKey := user32.NewProc("RegisterHotKey")
		procUnregisterHotKey := user32.NewProc("UnregisterHotKey")
		procPeekMessageW := user32.NewProc("PeekMessageW")

		r, _, _ := procRegisterHotKey.Call(0, uintptr(hotkeyID), uintptr(mod), uintptr(vk))
		if r == 0 {
			errCh <- fmt.Errorf("RegisterHotKey failed for %q", combo)
			return
		}
		defer procUnregisterHotKey.Call(0, uintptr(hotkeyID))
		errCh <- nil

		var msg struct {
			Hwnd    uintptr
			Message uint32
			WParam  uintptr
			LParam  uintptr
			Time    uint32
			PtX     int32
			PtY     int32
		}
		const pmRemove = 0x0001
		for {
			select {
			case <-h.quit:
				return
			default:
			}
			ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
			if ret == 0 {
				time.Sleep(25 * time.Millisecond)
				continue
			}
			if msg.Message == wmHotkey && int(msg.WParam) == hotkeyID {
				fn()
			}
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		return fmt.Errorf("timeout registering hotkey")
	}
}

// Stop terminates the message loop and unregisters the hotkey.
func (h *WindowsHotkey) Stop() {
	close(h.quit)
}

// parseHotkey accepts strings like "ctrl+shift+." or "alt+f2" and
// returns the RegisterHotKey modifier mask and virtual key code.
func parseHotkey(s string) (uint32, uint32, error) {
	if s == "" {
		return 0, 0, fmt.Errorf("empty combo")
	}
	parts := strings.Split(s, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}

	var mod uint32
	keyToken := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "alt", "menu":
			mod |= 0x0001
		case "ctrl", "control":
			mod |= 0x0002
		case "shift":
			mod |= 0x0004
		case "win", "meta", "super", "cmd":
			mod |= 0x0008
		}
	}

	if len(keyToken) == 1 {
		ch := keyToken[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return mod, uint32(ch - 'a' + 'A'), nil
		case ch >= '0' && ch <= '9':
			return mod, uint32(ch), nil
		case ch == '.':
			return mod, 0xBE, nil // VK_OEM_PERIOD
		case ch == ',':
			return mod, 0xBC, nil // VK_OEM_COMMA
		}
	}
	switch keyToken {
	case "space":
		return mod, 0x20, nil
	case "esc", "escape":
		return mod, 0x1B, nil
	}
	if strings.HasPrefix(keyToken, "f") {
		if n, err := strconv.Atoi(strings.TrimPrefix(keyToken, "f")); err == nil && n >= 1 && n <= 24 {
			return mod, 0x70 + uint32(n-1), nil
		}
	}
	return 0, 0, fmt.Errorf("unsupported key token %q", keyToken)
}
