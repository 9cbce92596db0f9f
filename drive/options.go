package drive

import (
	"time"

	"github.com/rs/zerolog"

	"edrive/protocol"
	"edrive/serialport"
)

// Config holds the client configuration.
type Config struct {
	// Baud is the serial speed used by Connect.
	Baud int

	// ReadWindow is how long each exchange listens for a response.
	// The device must answer well inside this window; anything arriving
	// later is discarded by the next exchange's input flush.
	ReadWindow time.Duration

	// SettleDelay is the pause after opening the port. USB serial
	// boards reset when the host opens the connection and need a
	// moment before they accept commands.
	SettleDelay time.Duration

	// SlotCount is the number of storage slots the firmware exposes.
	SlotCount int

	// Logger receives connection and exchange events.
	Logger zerolog.Logger
}

func defaultConfig() Config {
	return Config{
		Baud:        serialport.DefaultBaud,
		ReadWindow:  500 * time.Millisecond,
		SettleDelay: 150 * time.Millisecond,
		SlotCount:   protocol.DefaultSlotCount,
		Logger:      zerolog.Nop(),
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithBaud sets the serial speed. Default is 9600.
func WithBaud(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.Baud = baud
		}
	}
}

// WithReadWindow sets how long each exchange collects response bytes.
// Default is 500ms; raise it for a device that answers slowly.
func WithReadWindow(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ReadWindow = d
		}
	}
}

// WithSettleDelay sets the pause between opening the port and the first
// command. Default is 150ms.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}

// WithSlotCount sets the number of slots expected in listings.
// Default is 3, matching the stock firmware.
func WithSlotCount(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.SlotCount = n
		}
	}
}

// WithLogger sets the logger for client operations.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
