package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/domain"
	"github.com/finnvos/voxd/internal/ipc"
)

// request is one command handed to the daemon loop, with a channel the
// loop answers on.
type request struct {
	cmd   domain.Command
	reply chan domain.Response
}

// Controller orchestrates the daemon's lifetime: it binds the IPC
// endpoint, registers the hotkey and signal triggers, and runs the
// single loop that serializes every command into the state machine.
// Hotkey and IPC callbacks never touch machine state directly; they
// enqueue onto this loop, so no two commands are ever dispatched
// concurrently.
type Controller struct {
	cfg     config.Config
	machine *Machine
	sess    Session
	hotkey  domain.HotkeyListener
	pm      domain.ProcessManager
	logger  *zap.Logger

	requests chan request
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewController(
	cfg config.Config,
	machine *Machine,
	sess Session,
	hotkey domain.HotkeyListener,
	pm domain.ProcessManager,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		cfg:      cfg,
		machine:  machine,
		sess:     sess,
		hotkey:   hotkey,
		pm:       pm,
		logger:   logger,
		requests: make(chan request),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until a quit command, an OS signal, or context
// cancellation. Failing to bind the endpoint or write the PID marker
// is fatal; everything after that degrades instead of exiting.
func (c *Controller) Run(ctx context.Context) error {
	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("bind ipc endpoint: %w", err)
	}

	if err := ipc.WritePID(c.pm); err != nil {
		ln.Close()
		return err
	}

	srv := ipc.NewServer(ln, c.dispatch,
		time.Duration(c.cfg.IPCReadTimeoutMs)*time.Millisecond, c.logger)
	go srv.Serve()

	if err := c.hotkey.Register(c.cfg.Hotkey, c.onHotkey); err != nil {
		c.logger.Warn("hotkey unavailable, use the CLI or a desktop shortcut",
			zap.String("hotkey", c.cfg.Hotkey),
			zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	c.logger.Info("daemon running",
		zap.Int("pid", c.pm.GetCurrentPID()),
		zap.String("hotkey", c.cfg.Hotkey))

	c.loop(ctx, sigCh)

	// Teardown order matters: triggers first so nothing new arrives,
	// then the server (draining in-flight connections), then the
	// session, then the advisory markers.
	c.hotkey.Stop()
	srv.Close()
	if err := c.sess.Close(); err != nil {
		c.logger.Warn("session close failed", zap.Error(err))
	}
	ipc.RemovePID()
	ipc.CleanupEndpoint()

	c.logger.Info("daemon stopped")
	return nil
}

// loop is the daemon's single logical thread. All machine mutation
// happens here.
func (c *Controller) loop(ctx context.Context, sigCh <-chan os.Signal) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			c.logger.Info("signal received", zap.String("signal", sig.String()))
			return
		case <-c.stopping:
			return
		case req := <-c.requests:
			resp := c.machine.Dispatch(ctx, req.cmd)
			req.reply <- resp
			if req.cmd == domain.CmdQuit {
				c.Shutdown()
			}
		}
	}
}

// Shutdown requests daemon termination. Safe to call more than once;
// concurrent triggers coalesce onto one close.
func (c *Controller) Shutdown() {
	c.stopOnce.Do(func() {
		close(c.stopping)
	})
}

// dispatch hands one command to the loop and waits for its answer. It
// is the Dispatcher the IPC server calls from connection goroutines.
// Once the loop has exited, late arrivals get a terse response instead
// of blocking forever; a second quit racing shutdown lands here.
func (c *Controller) dispatch(cmd domain.Command) domain.Response {
	req := request{cmd: cmd, reply: make(chan domain.Response, 1)}

	select {
	case c.requests <- req:
	case <-c.done:
		return c.lateResponse(cmd)
	}

	select {
	case resp := <-req.reply:
		return resp
	case <-c.done:
		// The loop may have buffered the reply just before exiting;
		// a command that completed must not be reported as failed.
		select {
		case resp := <-req.reply:
			return resp
		default:
		}
		return c.lateResponse(cmd)
	}
}

func (c *Controller) lateResponse(cmd domain.Command) domain.Response {
	if cmd == domain.CmdQuit {
		return domain.Response{Status: domain.OutcomeBye}
	}
	return domain.Response{Status: domain.OutcomeError}
}

// onHotkey fires on the OS listener's thread; the toggle crosses to
// the daemon loop through the same handoff IPC uses. Fire-and-forget,
// the outcome surfaces via notification.
func (c *Controller) onHotkey() {
	go c.dispatch(domain.CmdToggle)
}
