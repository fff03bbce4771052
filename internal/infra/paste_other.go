//go:build !linux

package infra

const defaultCtrlShiftPaste = false
