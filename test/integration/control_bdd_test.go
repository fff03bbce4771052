//go:build integration

package integration

import (
	"context"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/daemon"
	"github.com/finnvos/voxd/internal/domain"
	"github.com/finnvos/voxd/internal/infra"
	"github.com/finnvos/voxd/internal/ipc"
)

// scriptedSession stands in for the browser; dictation "produces" the
// configured transcript when the stop control is clicked.
type scriptedSession struct {
	mu         sync.Mutex
	transcript string
	input      string
	closed     bool
}

func (s *scriptedSession) IsAlive() bool { return true }
func (s *scriptedSession) Recover(context.Context) error { return nil }
func (s *scriptedSession) ShowWindow() {}
func (s *scriptedSession) Close() error { s.closed = true; return nil }
func (s *scriptedSession) ClickDictate(context.Context) error { return nil }

func (s *scriptedSession) ClickStop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = s.transcript
	return nil
}

func (s *scriptedSession) InputText(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input, nil
}

func (s *scriptedSession) ClearInput(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = ""
	return nil
}

func (s *scriptedSession) LoginWallVisible(context.Context) (bool, error) { return false, nil }
func (s *scriptedSession) CountLabeledButtons(context.Context) int { return 0 }

type recordingClipboard struct {
	mu     sync.Mutex
	copied []string
}

func (c *recordingClipboard) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copied = append(c.copied, text)
	return nil
}

type nopPaster struct{}

func (nopPaster) Paste() bool { return true }

type nopHotkey struct{}

func (nopHotkey) Register(string, func()) error { return nil }
func (nopHotkey) Stop() {}

var _ = Describe("Daemon control channel", func() {
	var (
		sess        *scriptedSession
		clipboard   *recordingClipboard
		ctrl        *daemon.Controller
		cancel      context.CancelFunc
		waitStopped func() error
	)

	BeforeEach(func() {
		tmpDir, err := os.MkdirTemp("", "voxd-integration-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })

		// Endpoint and PID marker land under the per-test temp dir.
		prev := os.Getenv("TMPDIR")
		os.Setenv("TMPDIR", tmpDir)
		DeferCleanup(func() { os.Setenv("TMPDIR", prev) })

		cfg := config.Default()
		cfg.PollIntervalMs = 10
		cfg.PollTimeoutMs = 200
		cfg.SettleDelayMs = 1

		sess = &scriptedSession{transcript: "integration transcript"}
		clipboard = &recordingClipboard{}

		logger := zap.NewNop()
		machine := daemon.NewMachine(cfg, sess, clipboard, nopPaster{},
			infra.NopNotifier{}, nil, logger)
		ctrl = daemon.NewController(cfg, machine, sess, nopHotkey{},
			infra.NewProcessManager(), logger)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		runDone := make(chan error, 1)
		go func() { runDone <- ctrl.Run(ctx) }()

		var once sync.Once
		var runErr error
		waitStopped = func() error {
			once.Do(func() { runErr = <-runDone })
			return runErr
		}

		// Wait for the endpoint to come up.
		Eventually(func() error {
			_, err := ipc.Send(domain.CmdStatus)
			return err
		}).Should(Succeed())
	})

	AfterEach(func() {
		cancel()
		waitStopped()
	})

	Describe("status", func() {
		It("reports idle before any recording", func() {
			line, err := ipc.Send(domain.CmdStatus)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"idle"}`))
		})

		It("reports recording after a toggle", func() {
			line, err := ipc.Send(domain.CmdToggle)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"recording"}`))

			line, err = ipc.Send(domain.CmdStatus)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"recording"}`))
		})
	})

	Describe("a full record cycle", func() {
		It("relays the transcript to the clipboard and never to the wire", func() {
			_, err := ipc.Send(domain.CmdToggle)
			Expect(err).NotTo(HaveOccurred())

			line, err := ipc.Send(domain.CmdToggle)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"ok","pasted":true}`))
			Expect(line).NotTo(ContainSubstring("integration transcript"))

			Expect(clipboard.copied).To(ConsistOf("integration transcript"))
		})
	})

	Describe("quit", func() {
		It("answers bye and then tears the endpoint down", func() {
			line, err := ipc.Send(domain.CmdQuit)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"bye"}`))

			Eventually(func() error {
				_, err := ipc.Send(domain.CmdStatus)
				return err
			}).Should(MatchError(domain.ErrDaemonUnreachable))

			Expect(waitStopped()).To(Succeed())
			Expect(sess.closed).To(BeTrue())

			_, running := ipc.RunningPID(infra.NewProcessManager())
			Expect(running).To(BeFalse())
		})

		It("survives concurrent quit commands", func() {
			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ipc.Send(domain.CmdQuit)
				}()
			}
			wg.Wait()
			Expect(waitStopped()).To(Succeed())
		})
	})

	Describe("unknown commands", func() {
		It("answers unknown_command without side effects", func() {
			conn, err := ipc.Send(domain.Command("reboot"))
			Expect(err).NotTo(HaveOccurred())
			Expect(conn).To(MatchJSON(`{"status":"unknown_command"}`))

			line, err := ipc.Send(domain.CmdStatus)
			Expect(err).NotTo(HaveOccurred())
			Expect(line).To(MatchJSON(`{"status":"idle"}`))
		})
	})
})
