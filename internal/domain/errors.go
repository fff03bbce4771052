package domain

import "errors"

// Error taxonomy. These are classification sentinels: callers match with
// errors.Is and convert to outcomes at the dispatch boundary. None of
// them is fatal to the daemon process.
var (
	// ErrSessionDead means the controlled page no longer responds.
	// Triggers recovery, not a crash.
	ErrSessionDead = errors.New("browser session dead")

	// ErrElementNotFound means an expected control is missing. May
	// indicate a login wall or an upstream UI change.
	ErrElementNotFound = errors.New("element not found")

	// ErrRecoveryExhausted means recovery ran its full budget and the
	// page still did not signal readiness. The daemon proceeds degraded.
	ErrRecoveryExhausted = errors.New("session recovery exhausted")

	// ErrDaemonUnreachable is the client-side classification for a
	// refused or missing IPC endpoint: "no daemon", not a failure.
	ErrDaemonUnreachable = errors.New("daemon unreachable")
)
