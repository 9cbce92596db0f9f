package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// NativePort wraps the tarm/serial implementation.
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens a native serial port. The underlying read timeout is set
// to the poll interval so ReadWindow can loop without ever blocking
// past its deadline.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	poll := cfg.PollInterval
	if poll == 0 {
		poll = DefaultPollInterval
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: poll,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{port: port, cfg: cfg}, nil
}

// Read reads data from the serial port.
func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write writes data to the serial port.
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port.
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards bytes buffered on the line in both directions.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}

// ReadWindow polls the port until the deadline elapses and returns
// everything that arrived. Each iteration blocks for at most the
// configured poll interval; a timed-out read surfaces as a zero-byte
// result (io.EOF on some platforms) and simply means "nothing yet".
func (p *NativePort) ReadWindow(d time.Duration) ([]byte, error) {
	var out []byte
	buf := make([]byte, 256)
	deadline := time.Now().Add(d)

	for time.Now().Before(deadline) {
		n, err := p.port.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil && err != io.EOF {
			return out, fmt.Errorf("serial read: %w", err)
		}
	}

	return out, nil
}
