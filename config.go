package tfa

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the platform wiring of the amplifier.
type Config struct {
	Card         uint           `yaml:"card"`
	PCMDevice    uint           `yaml:"pcm_device"`
	MixerCtl     string         `yaml:"mixer_ctl"`
	ControlPath  string         `yaml:"control_path"`
	Channels     uint32         `yaml:"channels"`
	Rate         uint32         `yaml:"rate"`
	PowerRetries int            `yaml:"power_retries"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	Firmware     FirmwareConfig `yaml:"firmware"`
}

// FirmwareConfig names the directories of up to four patch tables, in table order.
type FirmwareConfig struct {
	Sets               []string `yaml:"sets"`
	DistinctBankTables bool     `yaml:"distinct_bank_tables"`
}

// DefaultConfig returns the msm8996 wiring: card 0, PCM device 47, the
// QUAT_MI2S_RX_DL_HL switch and /dev/tfa9888, with 1000 clock polls 1 ms apart.
func DefaultConfig() *Config {
	return &Config{
		Card:         0,
		PCMDevice:    47,
		MixerCtl:     "QUAT_MI2S_RX_DL_HL Switch",
		ControlPath:  "/dev/tfa9888",
		Channels:     1,
		Rate:         48000,
		PowerRetries: 1000,
		PollInterval: time.Millisecond,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if config.Channels == 0 {
		return nil, fmt.Errorf("invalid channels %d", config.Channels)
	}

	if config.Rate == 0 {
		return nil, fmt.Errorf("invalid rate %d", config.Rate)
	}

	if config.PowerRetries < 0 {
		return nil, fmt.Errorf("invalid power_retries %d", config.PowerRetries)
	}

	if len(config.Firmware.Sets) > patchTables {
		return nil, fmt.Errorf("too many patch tables: %d", len(config.Firmware.Sets))
	}

	return config, nil
}
