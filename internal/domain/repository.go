package domain

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// Paster simulates a paste keystroke into whatever window currently has
// focus. Best-effort: a false return is logged, never propagated.
type Paster interface {
	Paste() bool
}

// Notifier shows a desktop notification. Failures are swallowed.
type Notifier interface {
	Notify(title, body string)
}

// HotkeyListener registers a global hotkey. The callback fires on the
// listener's own OS thread; callers must hand off to their own loop
// rather than mutate state from it.
type HotkeyListener interface {
	// Register starts listening for combo and invokes fn on each press.
	Register(combo string, fn func()) error

	// Stop unregisters the hotkey and releases the listener.
	Stop()
}

// Journal persists recording events. Implementations must never be
// handed transcript text.
type Journal interface {
	Record(ev RecordingEvent) error
	Recent(limit int) ([]RecordingEvent, error)
	Close() error
}
