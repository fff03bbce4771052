package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PollSettings(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 200, cfg.PollIntervalMs)
	assert.Equal(t, 10000, cfg.PollTimeoutMs)
	assert.Equal(t, 300, cfg.SettleDelayMs)
	assert.Equal(t, 5000, cfg.IPCReadTimeoutMs)
	assert.Equal(t, 20, cfg.ReadinessPollSeconds)
	assert.NotEmpty(t, cfg.Selectors.DictateButton)
	assert.NotEmpty(t, cfg.Selectors.InputArea)
}

func TestLoadFrom_WritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// First load creates the file so users have something to edit.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadFrom_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	user := `{"hotkey": "ctrl+alt+d", "post_stop_poll_timeout_ms": 5000}`
	require.NoError(t, os.WriteFile(path, []byte(user), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "ctrl+alt+d", cfg.Hotkey)
	assert.Equal(t, 5000, cfg.PollTimeoutMs)
	// Untouched fields keep defaults.
	assert.Equal(t, 200, cfg.PollIntervalMs)
	assert.Equal(t, Default().TargetURL, cfg.TargetURL)
}

func TestLoadFrom_EmptySelectorListFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	user := `{"selectors": {"dictate_button": [], "input_area": ["#composer"]}}`
	require.NoError(t, os.WriteFile(path, []byte(user), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, Default().Selectors.DictateButton, cfg.Selectors.DictateButton)
	assert.Equal(t, []string{"#composer"}, cfg.Selectors.InputArea)
}

func TestLoadFrom_BadJSONReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	cfg, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}
