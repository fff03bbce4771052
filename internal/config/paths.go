package config

import (
	"os"
	"path/filepath"
)

// Dir returns the app config directory (also holds the journal, the
// encryption key, and the browser profile).
//
//	Linux:   ~/.config/voxd/
//	macOS:   ~/Library/Application Support/voxd/
//	Windows: %APPDATA%/voxd/
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// ProfileDir is the persistent Chromium user-data dir, so the web login
// survives daemon restarts.
func ProfileDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chrome-profile"), nil
}

// LogFile is where the daemon's zap logger writes.
func LogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.log"), nil
}

// PIDFile is the advisory daemon-running marker. Its presence plus a
// live PID is the sole "already running" signal.
func PIDFile() string {
	return filepath.Join(os.TempDir(), appName+".pid")
}

// SocketPath is the Unix IPC endpoint (unused on Windows, which binds a
// fixed loopback port instead).
func SocketPath() string {
	return filepath.Join(os.TempDir(), appName+".sock")
}
