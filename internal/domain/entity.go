// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// State is the recording state of the daemon. There are exactly two
// observable states; login-required and error are transition outcomes,
// not states.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
)

// Outcome is the result tag of a state-machine transition.
type Outcome string

const (
	OutcomeRecording     Outcome = "recording"
	OutcomeOK            Outcome = "ok"
	OutcomeEmpty         Outcome = "empty"
	OutcomeLoginRequired Outcome = "login_required"
	OutcomeError         Outcome = "error"
	OutcomeIdle          Outcome = "idle"
	OutcomeBye           Outcome = "bye"
	OutcomeUnknown       Outcome = "unknown_command"
)

// Command is one of the closed set of IPC command tokens.
type Command string

const (
	CmdToggle Command = "toggle"
	CmdStatus Command = "status"
	CmdQuit   Command = "quit"
)

// ParseCommand maps a trimmed wire token to a Command. Anything outside
// the closed set dispatches as unknown.
func ParseCommand(token string) (Command, bool) {
	switch Command(token) {
	case CmdToggle, CmdStatus, CmdQuit:
		return Command(token), true
	}
	return Command(token), false
}

// Response is the result of dispatching one command. Text carries the
// captured transcript to in-process callers only: it is tagged out of
// JSON so transcript content never crosses the IPC boundary.
type Response struct {
	Status Outcome `json:"status"`
	Pasted *bool   `json:"pasted,omitempty"`
	Text   string  `json:"-"`
}

// RecordingEvent is one row of the event journal. It carries metadata
// about a transition, never the transcript itself.
type RecordingEvent struct {
	ID       string
	At       time.Time
	Event    string // "start" or "stop"
	Outcome  Outcome
	Duration time.Duration
	Chars    int // length of the captured transcript, 0 if none
}
