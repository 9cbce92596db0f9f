package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"edrive/protocol"
	"edrive/serialport"
)

// Config holds tool settings for talking to the drive. Timings live
// here rather than as constants: the stock firmware answers well inside
// half a second, but a slower device needs a wider window and there is
// no way to detect that at runtime.
type Config struct {
	// Device is the serial port path (e.g. "/dev/ttyACM0", "COM9").
	Device string `yaml:"device"`

	// Baud is the serial speed. The stock firmware runs at 9600.
	Baud int `yaml:"baud"`

	// ReadWindowMS is how long each exchange listens for a response,
	// in milliseconds.
	ReadWindowMS int `yaml:"read_window_ms"`

	// SettleDelayMS is the pause after opening the port, in
	// milliseconds, while the board resets.
	SettleDelayMS int `yaml:"settle_delay_ms"`

	// SlotCount is the number of storage slots the firmware exposes.
	SlotCount int `yaml:"slot_count"`
}

// Load reads a YAML configuration file and fills in defaults for any
// value left unset. An empty path skips the file and returns pure
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills in missing configuration values with the stock
// firmware's parameters.
func applyDefaults(cfg *Config) {
	if cfg.Baud == 0 {
		cfg.Baud = serialport.DefaultBaud
	}
	if cfg.ReadWindowMS == 0 {
		cfg.ReadWindowMS = 500
	}
	if cfg.SettleDelayMS == 0 {
		cfg.SettleDelayMS = 150
	}
	if cfg.SlotCount == 0 {
		cfg.SlotCount = protocol.DefaultSlotCount
	}
}

// ReadWindow returns the per-exchange read window as a duration.
func (c *Config) ReadWindow() time.Duration {
	return time.Duration(c.ReadWindowMS) * time.Millisecond
}

// SettleDelay returns the post-connect settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}
