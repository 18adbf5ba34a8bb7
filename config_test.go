package tfa_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/tfa"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	config := tfa.DefaultConfig()

	assert.Equal(t, uint(0), config.Card)
	assert.Equal(t, uint(47), config.PCMDevice)
	assert.Equal(t, "QUAT_MI2S_RX_DL_HL Switch", config.MixerCtl)
	assert.Equal(t, "/dev/tfa9888", config.ControlPath)
	assert.Equal(t, uint32(1), config.Channels)
	assert.Equal(t, uint32(48000), config.Rate)
	assert.Equal(t, 1000, config.PowerRetries)
	assert.Equal(t, time.Millisecond, config.PollInterval)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tfa.yaml")
	writeFile(t, path, `
pcm_device: 12
poll_interval: 5ms
firmware:
  sets: [/vendor/firmware/tfa/1, /vendor/firmware/tfa/2]
  distinct_bank_tables: true
`)

	config, err := tfa.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint(12), config.PCMDevice)
	assert.Equal(t, 5*time.Millisecond, config.PollInterval)
	assert.Equal(t, []string{"/vendor/firmware/tfa/1", "/vendor/firmware/tfa/2"}, config.Firmware.Sets)
	assert.True(t, config.Firmware.DistinctBankTables)

	// Untouched keys keep their defaults.
	assert.Equal(t, "/dev/tfa9888", config.ControlPath)
	assert.Equal(t, 1000, config.PowerRetries)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := tfa.LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	tests := map[string]string{
		"syntax":      "card: [",
		"retries":     "power_retries: -1",
		"no channels": "channels: 0",
		"no rate":     "rate: 0",
		"many tables": "firmware:\n  sets: [a, b, c, d, e]",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			writeFile(t, path, content)

			_, err := tfa.LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
