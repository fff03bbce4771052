// Package daemon implements the recording state machine and the
// lifecycle controller that runs it.
package daemon

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/domain"
	"github.com/finnvos/voxd/internal/session"
)

// Session is the automation capability the state machine drives. The
// concrete implementation is session.Handle; tests substitute a fake.
type Session interface {
	IsAlive() bool
	Recover(ctx context.Context) error
	InputText(ctx context.Context) (string, error)
	ClearInput(ctx context.Context) error
	ClickDictate(ctx context.Context) error
	ClickStop(ctx context.Context) error
	LoginWallVisible(ctx context.Context) (bool, error)
	CountLabeledButtons(ctx context.Context) int
	ShowWindow()
	Close() error
}

// Machine owns the idle/recording state and the start/stop transition
// logic. It is not safe for concurrent use: the lifecycle controller
// serializes all Dispatch calls onto one goroutine, so the machine
// needs no locking.
type Machine struct {
	cfg       config.Config
	session   Session
	clipboard domain.Clipboard
	paster    domain.Paster
	notifier  domain.Notifier
	journal   domain.Journal
	logger    *zap.Logger

	state     domain.State
	baseline  string
	startedAt time.Time
}

func NewMachine(
	cfg config.Config,
	sess Session,
	clipboard domain.Clipboard,
	paster domain.Paster,
	notifier domain.Notifier,
	journal domain.Journal,
	logger *zap.Logger,
) *Machine {
	return &Machine{
		cfg:       cfg,
		session:   sess,
		clipboard: clipboard,
		paster:    paster,
		notifier:  notifier,
		journal:   journal,
		logger:    logger,
	}
}

// State reports the current recording state.
func (m *Machine) State() domain.State {
	return m.state
}

// Dispatch executes one command. Any panic inside a transition is
// caught here so a page gone sideways can never take the daemon down;
// the machine resets to idle and reports an error outcome.
func (m *Machine) Dispatch(ctx context.Context, cmd domain.Command) (resp domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic during command dispatch",
				zap.String("command", string(cmd)),
				zap.Any("panic", r))
			m.state = domain.StateIdle
			resp = domain.Response{Status: domain.OutcomeError}
		}
	}()

	switch cmd {
	case domain.CmdToggle:
		return m.toggle(ctx)
	case domain.CmdStatus:
		return m.status()
	case domain.CmdQuit:
		return domain.Response{Status: domain.OutcomeBye}
	default:
		return domain.Response{Status: domain.OutcomeUnknown}
	}
}

func (m *Machine) status() domain.Response {
	if m.state == domain.StateRecording {
		return domain.Response{Status: domain.OutcomeRecording}
	}
	return domain.Response{Status: domain.OutcomeIdle}
}

func (m *Machine) toggle(ctx context.Context) domain.Response {
	if m.state == domain.StateRecording {
		return m.stop(ctx)
	}
	return m.start(ctx)
}

// start begins a recording. The machine stays idle unless the dictation
// control was actually invoked.
func (m *Machine) start(ctx context.Context) domain.Response {
	if !m.ensureAlive(ctx) {
		m.notifier.Notify("voxd", "Session is down and could not be recovered")
		m.record("start", domain.OutcomeError, 0, 0)
		return domain.Response{Status: domain.OutcomeError}
	}

	// Leftover composer text would be indistinguishable from fresh
	// dictation, so it is cleared before recording begins.
	baseline, err := m.session.InputText(ctx)
	if err != nil {
		m.logger.Warn("baseline read failed", zap.Error(err))
		baseline = ""
	}
	if baseline != "" {
		if err := m.session.ClearInput(ctx); err != nil {
			m.logger.Warn("baseline clear failed", zap.Error(err))
		} else {
			m.settle(ctx)
			baseline = ""
		}
	}
	m.baseline = baseline

	if err := m.session.ClickDictate(ctx); err != nil {
		return m.startFailed(ctx, err)
	}

	m.state = domain.StateRecording
	m.startedAt = time.Now()
	m.notifier.Notify("voxd", "Recording")
	m.record("start", domain.OutcomeRecording, 0, 0)
	m.logger.Info("recording started")
	return domain.Response{Status: domain.OutcomeRecording}
}

// startFailed classifies a failed dictation-control click: a login wall
// is an expected steady-state event, anything else is an error.
func (m *Machine) startFailed(ctx context.Context, clickErr error) domain.Response {
	if errors.Is(clickErr, domain.ErrElementNotFound) {
		wall, err := m.session.LoginWallVisible(ctx)
		if err != nil {
			m.logger.Warn("login probe failed", zap.Error(err))
		}
		if wall {
			m.session.ShowWindow()
			m.notifier.Notify("voxd", "Please log in, then try again")
			m.record("start", domain.OutcomeLoginRequired, 0, 0)
			m.logger.Info("login wall detected, window surfaced")
			return domain.Response{Status: domain.OutcomeLoginRequired}
		}
	}

	// The count is a diagnostic for UI drift; button labels are never
	// logged.
	m.logger.Error("dictation control not found",
		zap.Error(clickErr),
		zap.Int("visible_buttons", m.session.CountLabeledButtons(ctx)))
	m.notifier.Notify("voxd", "Could not start recording")
	m.record("start", domain.OutcomeError, 0, 0)
	return domain.Response{Status: domain.OutcomeError}
}

// stop ends a recording and relays whatever text the transcription
// engine produced. The machine returns to idle no matter what fails
// here; a stuck recording state would make the hotkey useless.
func (m *Machine) stop(ctx context.Context) domain.Response {
	if !m.ensureAlive(ctx) {
		m.state = domain.StateIdle
		m.record("stop", domain.OutcomeError, m.elapsed(), 0)
		return domain.Response{Status: domain.OutcomeError}
	}

	if err := m.session.ClickStop(ctx); err != nil {
		// Some UIs use the begin control as a toggle.
		if err2 := m.session.ClickDictate(ctx); err2 != nil {
			m.logger.Warn("no stop control found, polling anyway",
				zap.Error(err))
		}
	}

	m.state = domain.StateIdle

	text := session.Poll(ctx, m.session.InputText, m.baseline,
		time.Duration(m.cfg.PollIntervalMs)*time.Millisecond,
		time.Duration(m.cfg.PollTimeoutMs)*time.Millisecond)

	if text == "" || text == m.baseline {
		m.notifier.Notify("voxd", "No speech captured")
		m.record("stop", domain.OutcomeEmpty, m.elapsed(), 0)
		m.logger.Info("recording stopped, no capture")
		return domain.Response{Status: domain.OutcomeEmpty}
	}

	if err := m.clipboard.Copy(text); err != nil {
		m.logger.Error("clipboard copy failed", zap.Error(err))
		m.record("stop", domain.OutcomeError, m.elapsed(), len(text))
		return domain.Response{Status: domain.OutcomeError}
	}

	pasted := m.paster.Paste()
	if !pasted {
		m.logger.Warn("paste simulation failed, transcript is on the clipboard")
	}

	if err := m.session.ClearInput(ctx); err != nil {
		m.logger.Warn("composer clear failed", zap.Error(err))
	}

	m.notifier.Notify("voxd", "Transcript captured")
	m.record("stop", domain.OutcomeOK, m.elapsed(), len(text))
	m.logger.Info("recording stopped",
		zap.Int("chars", len(text)),
		zap.Bool("pasted", pasted))
	return domain.Response{Status: domain.OutcomeOK, Pasted: &pasted, Text: text}
}

// ensureAlive recovers a dead session. Recovery failure is reported,
// not fatal.
func (m *Machine) ensureAlive(ctx context.Context) bool {
	if m.session.IsAlive() {
		return true
	}
	m.logger.Warn("session dead, recovering")
	if err := m.session.Recover(ctx); err != nil {
		m.logger.Error("session recovery failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Machine) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(m.cfg.SettleDelayMs) * time.Millisecond):
	}
}

func (m *Machine) elapsed() time.Duration {
	if m.startedAt.IsZero() {
		return 0
	}
	return time.Since(m.startedAt)
}

// record appends a journal row. The journal is optional and advisory;
// it stores transition metadata only, never transcript text.
func (m *Machine) record(event string, outcome domain.Outcome, d time.Duration, chars int) {
	if m.journal == nil {
		return
	}
	ev := domain.RecordingEvent{
		At:       time.Now(),
		Event:    event,
		Outcome:  outcome,
		Duration: d,
		Chars:    chars,
	}
	if err := m.journal.Record(ev); err != nil {
		m.logger.Warn("journal write failed", zap.Error(err))
	}
}
