package drive

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"edrive/protocol"
	"edrive/serialport"
)

// Client talks the drive's line protocol over a serial port. It owns at
// most one open connection; Connect closes any previous one before
// opening the next.
//
// All operations are synchronous and may block for up to the configured
// read window. Client is not safe for concurrent use - the wire
// protocol cannot interleave exchanges, so callers must serialize.
//
// File operations called without an open connection quietly return
// empty results instead of failing. Callers that need to tell "no data"
// from "not connected" check IsOpen themselves. Connect is the only
// operation that reports errors.
type Client struct {
	cfg  Config
	port serialport.Port
	log  zerolog.Logger

	// openPort is swapped out by tests.
	openPort func(*serialport.Config) (serialport.Port, error)
}

// New creates a Client with the given options. No connection is opened
// until Connect is called.
func New(opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		cfg:      cfg,
		log:      cfg.Logger,
		openPort: serialport.Open,
	}
}

// Connect opens the given serial device at the configured baud rate.
func (c *Client) Connect(device string) error {
	cfg := serialport.DefaultConfig(device)
	cfg.Baud = c.cfg.Baud
	return c.ConnectWithConfig(cfg)
}

// ConnectWithConfig opens a serial connection with an explicit port
// configuration. An already open connection is closed first. After
// opening, the client waits out the settle delay (the board resets when
// the port opens) and discards whatever the device printed while
// booting.
func (c *Client) ConnectWithConfig(cfg *serialport.Config) error {
	if c.port != nil {
		c.Close()
	}

	port, err := c.openPort(cfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Device, err)
	}
	c.port = port

	time.Sleep(c.cfg.SettleDelay)
	if err := port.Flush(); err != nil {
		c.log.Debug().Err(err).Msg("post-connect flush failed")
	}

	c.log.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("connected")
	return nil
}

// Close releases the serial port. Safe to call repeatedly or when no
// connection is open.
func (c *Client) Close() error {
	if c.port == nil {
		return nil
	}

	err := c.port.Close()
	c.port = nil
	c.log.Info().Msg("disconnected")
	return err
}

// IsOpen reports whether a connection is currently open. It has no side
// effects and does not probe the device.
func (c *Client) IsOpen() bool {
	return c.port != nil
}

// SendLine writes one command line and collects the device's answer for
// the full read window. Unread input from a previous exchange is
// discarded before writing so a late reply cannot bleed into this one.
// Returns nil when not connected; an unresponsive device yields an
// empty result, never an error.
func (c *Client) SendLine(line string) []byte {
	if c.port == nil {
		return nil
	}

	if err := c.port.Flush(); err != nil {
		c.log.Debug().Err(err).Msg("pre-write flush failed")
	}

	line = sanitizeLine(line)
	if _, err := c.port.Write([]byte(line + "\n")); err != nil {
		c.log.Error().Err(err).Str("cmd", line).Msg("serial write failed")
		return nil
	}

	raw, err := c.port.ReadWindow(c.cfg.ReadWindow)
	if err != nil {
		c.log.Debug().Err(err).Str("cmd", line).Msg("read window ended with error")
	}
	c.log.Debug().Str("cmd", line).Int("response_bytes", len(raw)).Msg("exchange complete")
	return raw
}

// sanitizeLine drops raw CR and LF so a command can never span lines.
// Payload text reaches this point already escaped; anything else that
// still carries a line break is silently trimmed rather than rejected.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\r' && s[i] != '\n' {
			out.WriteByte(s[i])
		}
	}
	return out.String()
}

// ListFiles queries the device and returns one entry per slot, in slot
// order. Slots the device did not report come back named "(empty)" with
// size zero. Returns nil when not connected.
func (c *Client) ListFiles() []protocol.FileEntry {
	if c.port == nil {
		return nil
	}

	raw := c.SendLine(protocol.ListCommand())
	return protocol.ParseListing(protocol.Printable(raw), c.cfg.SlotCount)
}

// ReadFile returns the text stored in the given slot, with transport
// escapes undone. An empty slot, an unresponsive device and a closed
// connection all read as "".
func (c *Client) ReadFile(slot int) string {
	raw := c.SendLine(protocol.ReadCommand(slot))
	return protocol.Unescape(protocol.Printable(raw))
}

// WriteFile stores text in the given slot. Fire and forget: the
// device's acknowledgement is drained off the line but not interpreted.
// Call ListFiles afterwards to observe the new state.
func (c *Client) WriteFile(slot int, text string) {
	c.SendLine(protocol.WriteCommand(slot, text))
}

// RenameFile sets the slot's display name, truncated to the device's
// 9-character limit. Fire and forget, like WriteFile.
func (c *Client) RenameFile(slot int, name string) {
	c.SendLine(protocol.RenameCommand(slot, name))
}

// DeleteFile clears the given slot. Fire and forget, like WriteFile.
func (c *Client) DeleteFile(slot int) {
	c.SendLine(protocol.DeleteCommand(slot))
}
