package infra

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"github.com/finnvos/voxd/internal/domain"
)

// SystemClipboard implements domain.Clipboard via atotto/clipboard.
type SystemClipboard struct{}

// NewClipboard creates a system clipboard.
func NewClipboard() domain.Clipboard {
	return &SystemClipboard{}
}

// Copy writes text to the system clipboard.
func (c *SystemClipboard) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// KeystrokePaster implements domain.Paster by injecting a paste
// keystroke into whatever window currently has focus.
type KeystrokePaster struct {
	// CtrlShift selects Ctrl+Shift+V (terminal-friendly paste, the
	// Linux default) instead of plain Ctrl+V.
	CtrlShift bool
}

// NewPaster creates a keystroke paster with the platform default combo.
func NewPaster() domain.Paster {
	return &KeystrokePaster{CtrlShift: defaultCtrlShiftPaste}
}

// Paste sends the paste combo. Best-effort: the clipboard already holds
// the text, so a failed keystroke only means the user pastes manually.
func (p *KeystrokePaster) Paste() bool {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return false
	}
	// Linux uinput needs a moment after device creation before the
	// first event is accepted.
	time.Sleep(50 * time.Millisecond)

	kb.HasCTRL(true)
	if p.CtrlShift {
		kb.HasSHIFT(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	return kb.Launching() == nil
}

var (
	_ domain.Clipboard = (*SystemClipboard)(nil)
	_ domain.Paster    = (*KeystrokePaster)(nil)
)
