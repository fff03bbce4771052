// Package config loads daemon configuration from a JSON file merged
// over compiled defaults, and resolves the app's filesystem paths.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const appName = "voxd"

// Selectors holds the ordered locator lists for the controlled page.
// Each list is tried in priority order: label-substring matching first,
// then the raw CSS selectors as structural fallback.
type Selectors struct {
	DictateButton []string `json:"dictate_button"`
	StopButton    []string `json:"stop_button"`
	InputArea     []string `json:"input_area"`
	LoginMarkers  []string `json:"login_markers"`
}

// Config holds all tunable daemon settings.
type Config struct {
	TargetURL string    `json:"target_url"`
	Hotkey    string    `json:"hotkey"`
	Selectors Selectors `json:"selectors"`

	// Transcription poll after stop-recording.
	PollIntervalMs int `json:"post_stop_poll_interval_ms"`
	PollTimeoutMs  int `json:"post_stop_poll_timeout_ms"`

	// Settle delay after clearing leftover input before recording starts.
	SettleDelayMs int `json:"settle_delay_ms"`

	// Per-connection IPC read deadline.
	IPCReadTimeoutMs int `json:"ipc_read_timeout_ms"`

	// One-second iterations to wait for the composer during recovery.
	ReadinessPollSeconds int `json:"readiness_poll_seconds"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		TargetURL: "https://chatgpt.com/",
		Hotkey:    "ctrl+shift+.",
		Selectors: Selectors{
			DictateButton: []string{
				`button[aria-label="Dictate button" i]`,
				`button[aria-label*="Dictate" i]:not([aria-label*="Stop" i]):not([aria-label*="Submit" i])`,
			},
			StopButton: []string{
				`button[aria-label="Submit dictation" i]`,
				`button[aria-label="Stop dictation" i]`,
			},
			InputArea: []string{
				`#prompt-textarea`,
				`[id="prompt-textarea"]`,
				`div[contenteditable="true"]`,
			},
			LoginMarkers: []string{
				`[data-testid="login-button"]`,
				`button[data-action="click:login"]`,
			},
		},
		PollIntervalMs:       200,
		PollTimeoutMs:        10000,
		SettleDelayMs:        300,
		IPCReadTimeoutMs:     5000,
		ReadinessPollSeconds: 20,
	}
}

// Load reads config.json from the app config dir, merging user values
// over defaults. The file is created with defaults on first run.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Default(), fmt.Errorf("create config dir: %w", err)
	}
	return LoadFrom(filepath.Join(dir, "config.json"))
}

// LoadFrom reads a specific config file path (for testing).
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		out, merr := json.MarshalIndent(cfg, "", "  ")
		if merr == nil {
			_ = os.WriteFile(path, out, 0600)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Unmarshal over the defaults so absent fields keep their values.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}

	// An explicitly empty selector list falls back to the default list
	// rather than leaving the daemon unable to locate anything.
	def := Default().Selectors
	if len(cfg.Selectors.DictateButton) == 0 {
		cfg.Selectors.DictateButton = def.DictateButton
	}
	if len(cfg.Selectors.StopButton) == 0 {
		cfg.Selectors.StopButton = def.StopButton
	}
	if len(cfg.Selectors.InputArea) == 0 {
		cfg.Selectors.InputArea = def.InputArea
	}
	if len(cfg.Selectors.LoginMarkers) == 0 {
		cfg.Selectors.LoginMarkers = def.LoginMarkers
	}
	return cfg, nil
}
