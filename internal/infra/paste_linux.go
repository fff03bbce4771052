//go:build linux

package infra

// Ctrl+Shift+V pastes into terminals as well as regular windows.
const defaultCtrlShiftPaste = true
