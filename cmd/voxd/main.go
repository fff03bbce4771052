// Package main is the CLI entry point for voxd.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/finnvos/voxd/internal/config"
	"github.com/finnvos/voxd/internal/daemon"
	"github.com/finnvos/voxd/internal/domain"
	"github.com/finnvos/voxd/internal/infra"
	"github.com/finnvos/voxd/internal/ipc"
	"github.com/finnvos/voxd/internal/journal"
	"github.com/finnvos/voxd/internal/session"
)

var (
	// Version info (set via ldflags)
	Version   = "0.3.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "voxd",
	Short: "Voice dictation daemon - hold a hotkey, speak, paste anywhere",
	Long: `voxd keeps a hidden browser session on a dictation-capable web page
and toggles voice recording on a hotkey or CLI command. When a recording
stops, the transcribed text is copied to the clipboard and pasted into
whatever window has focus.`,
	Version:      Version,
	SilenceUsage: true,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the background",
	Long: `Launches the daemon as a detached background process. The browser
window stays hidden off-screen. Does nothing if a daemon is already
running.`,
	RunE: runStart,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run in the foreground with a visible window for manual login",
	Long: `Runs the daemon in the foreground with the browser window visible so
you can log in to the dictation page. The web login persists in the
browser profile, so this is normally needed once. Press Ctrl-C when
done, then use 'voxd start'.`,
	RunE: runLogin,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is idle or recording",
	RunE:  runStatus,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Start or stop a recording",
	Long: `Toggles recording in the running daemon. Bind this command to a
desktop shortcut on platforms without the built-in hotkey.`,
	RunE: runToggle,
}

var indicatorCmd = &cobra.Command{
	Use:   "indicator",
	Short: "Show a live recording indicator in the terminal",
	Long: `Polls the daemon's status and renders a one-line indicator. Exits
when the daemon stops.`,
	RunE: runIndicator,
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent recording events",
	Long: `Prints recent recording transitions from the local event journal.
The journal stores timing metadata only; transcript text is never
persisted.`,
	RunE: runJournal,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

// Hidden run command - the detached daemon process started by 'start'
var runCmd = &cobra.Command{
	Use:    "run",
	Hidden: true,
	RunE:   runDaemon,
}

var (
	jsonOutput    bool
	journalLimit  int
	withIndicator bool
)

func init() {
	startCmd.Flags().BoolVar(&withIndicator, "indicator", false, "Show the recording indicator after starting")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Number of events to show")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(indicatorCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	pm := infra.NewProcessManager()
	if pid, ok := ipc.RunningPID(pm); ok {
		fmt.Printf("voxd is already running (pid %d)\n", pid)
		return nil
	}

	if err := daemon.SpawnDetached("run"); err != nil {
		return fmt.Errorf("failed to launch daemon: %w", err)
	}

	// Give the child a moment to bind its endpoint, then confirm.
	for i := 0; i < 10; i++ {
		time.Sleep(300 * time.Millisecond)
		if _, ok := ipc.RunningPID(pm); ok {
			fmt.Println("voxd started")
			if withIndicator {
				return runIndicator(cmd, args)
			}
			return nil
		}
	}

	logPath, _ := config.LogFile()
	return fmt.Errorf("daemon did not come up, check %s", logPath)
}

func runLogin(cmd *cobra.Command, args []string) error {
	pm := infra.NewProcessManager()
	if pid, ok := ipc.RunningPID(pm); ok {
		return fmt.Errorf("voxd is already running (pid %d), stop it first", pid)
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	fmt.Println("Opening a visible browser window. Log in, then press Ctrl-C.")
	return runForeground(logger, true)
}

func runStop(cmd *cobra.Command, args []string) error {
	line, err := ipc.Send(domain.CmdQuit)
	if err != nil {
		fmt.Println("voxd is not running")
		return nil
	}
	fmt.Println(line)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	line, err := ipc.Send(domain.CmdStatus)
	if err != nil {
		fmt.Println("voxd is not running")
		return nil
	}
	fmt.Println(line)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	line, err := ipc.Send(domain.CmdToggle)
	if err != nil {
		return fmt.Errorf("voxd is not running, start it with 'voxd start'")
	}
	fmt.Println(line)
	return nil
}

func runIndicator(cmd *cobra.Command, args []string) error {
	for {
		line, err := ipc.Send(domain.CmdStatus)
		if err != nil {
			fmt.Println("\nvoxd stopped")
			return nil
		}
		wr, err := ipc.Decode(line)
		if err != nil {
			return err
		}
		if wr.Status == domain.OutcomeRecording {
			fmt.Print("\r\033[31m● recording\033[0m   ")
		} else {
			fmt.Print("\r○ idle        ")
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	events, err := j.Recent(journalLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No recorded events.")
		return nil
	}

	for _, ev := range events {
		fmt.Printf("%s  %-5s  %-15s", ev.At.Format("2006-01-02 15:04:05"), ev.Event, ev.Outcome)
		if ev.Event == "stop" {
			fmt.Printf("  %6s  %d chars", ev.Duration.Round(100*time.Millisecond), ev.Chars)
		}
		fmt.Println()
	}
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	pm := infra.NewProcessManager()
	if pid, ok := ipc.RunningPID(pm); ok {
		logger.Warn("another daemon is already running", zap.Int("pid", pid))
		return fmt.Errorf("already running (pid %d)", pid)
	}

	return runForeground(logger, false)
}

// runForeground wires the daemon together and blocks until shutdown.
// visible controls whether the browser window is on-screen (login mode)
// or parked off-screen (normal operation).
func runForeground(logger *zap.Logger, visible bool) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}

	dataDir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	profileDir, err := config.ProfileDir()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := session.Open(ctx, cfg, profileDir, visible, logger)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}

	var notifier domain.Notifier = infra.NewNotifier(logger)
	if visible {
		notifier = infra.NopNotifier{}
	}

	// The journal is best-effort; the daemon runs without it.
	var j domain.Journal
	if opened, err := openJournal(); err != nil {
		logger.Warn("journal unavailable", zap.Error(err))
	} else {
		j = opened
		defer opened.Close()
	}

	pm := infra.NewProcessManager()
	machine := daemon.NewMachine(cfg, sess,
		infra.NewClipboard(), infra.NewPaster(), notifier, j, logger)
	controller := daemon.NewController(cfg, machine, sess,
		infra.NewHotkeyListener(), pm, logger)

	return controller.Run(ctx)
}

func openJournal() (*journal.Encrypted, error) {
	dataDir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}
	key, err := journal.LoadOrCreateKey(dataDir)
	if err != nil {
		return nil, err
	}
	return journal.Open(dataDir, key)
}

func createLogger() *zap.Logger {
	logPath, err := config.LogFile()
	if err != nil {
		logger, _ := zap.NewProduction()
		return logger
	}
	_ = os.MkdirAll(filepath.Dir(logPath), 0700)

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("voxd %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
