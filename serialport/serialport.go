package serialport

import (
	"io"
	"time"
)

// Port represents a serial connection to the drive.
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Fake ports for testing
type Port interface {
	io.ReadWriteCloser

	// Flush discards any data pending on the line, most importantly
	// unread input left over from a previous exchange.
	Flush() error

	// ReadWindow accumulates whatever the device sends within d and
	// returns it. The drive's protocol has no framing, so the only way
	// to know a response is "done" is to stop listening. An empty
	// result is not an error; a quiet device is a normal outcome.
	ReadWindow(d time.Duration) ([]byte, error)
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM9")
	Device string

	// Baud rate. The stock drive firmware runs at 9600.
	Baud int

	// PollInterval bounds each read inside a ReadWindow loop, so the
	// loop can keep checking the deadline while the device is quiet.
	PollInterval time.Duration
}

const (
	// DefaultBaud matches the drive firmware's serial speed.
	DefaultBaud = 9600

	// DefaultPollInterval is the ReadWindow polling granularity.
	DefaultPollInterval = 10 * time.Millisecond
)

// DefaultConfig returns a configuration for the stock drive firmware.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:       device,
		Baud:         DefaultBaud,
		PollInterval: DefaultPollInterval,
	}
}
