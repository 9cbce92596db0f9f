package drive

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edrive/protocol"
	"edrive/serialport"
)

// fakeDevice emulates the firmware's slot store so exchanges can be
// tested end to end, including the escape cycle.
type fakeDevice struct {
	slots []deviceSlot
}

type deviceSlot struct {
	name string
	data string
}

func newFakeDevice(slots int) *fakeDevice {
	return &fakeDevice{slots: make([]deviceSlot, slots)}
}

func (d *fakeDevice) handle(line string) string {
	fields := strings.SplitN(line, " ", 3)
	verb := fields[0]

	slotNum := 0
	if len(fields) > 1 {
		slotNum, _ = strconv.Atoi(fields[1])
	}
	arg := ""
	if len(fields) > 2 {
		arg = fields[2]
	}

	idx := slotNum - 1
	inRange := idx >= 0 && idx < len(d.slots)

	switch verb {
	case protocol.CmdList:
		var b strings.Builder
		for i, s := range d.slots {
			if s.name == "" && s.data == "" {
				continue
			}
			fmt.Fprintf(&b, "%d: %s (%d bytes)\n", i+1, s.name, len(s.data))
		}
		return b.String()
	case protocol.CmdRead:
		if !inRange {
			return "ERR bad slot\n"
		}
		return protocol.Escape(d.slots[idx].data)
	case protocol.CmdWrite:
		if !inRange {
			return "ERR bad slot\n"
		}
		d.slots[idx].data = protocol.Unescape(arg)
		return "OK\n"
	case protocol.CmdWriteName:
		if !inRange {
			return "ERR bad slot\n"
		}
		d.slots[idx].name = arg
		return "OK\n"
	case protocol.CmdDelete:
		if !inRange {
			return "ERR bad slot\n"
		}
		d.slots[idx] = deviceSlot{}
		return "OK\n"
	}

	return "ERR unknown command\n"
}

// fakePort plugs a fakeDevice into the Port interface. Writes are
// answered immediately; ReadWindow hands back whatever is pending.
type fakePort struct {
	device  *fakeDevice
	written []string
	pending []byte
	flushes int
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	line := strings.TrimSuffix(string(b), "\n")
	p.written = append(p.written, line)
	if p.device != nil {
		p.pending = append(p.pending, p.device.handle(line)...)
	}
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) Flush() error {
	p.flushes++
	p.pending = nil
	return nil
}

func (p *fakePort) ReadWindow(time.Duration) ([]byte, error) {
	out := p.pending
	p.pending = nil
	return out, nil
}

func newTestClient(t *testing.T, device *fakeDevice, opts ...Option) (*Client, *fakePort) {
	t.Helper()

	opts = append([]Option{WithSettleDelay(0)}, opts...)
	c := New(opts...)
	port := &fakePort{device: device}
	c.openPort = func(*serialport.Config) (serialport.Port, error) {
		return port, nil
	}

	require.NoError(t, c.Connect("fake0"))
	return c, port
}

func TestNoConnectionNoOp(t *testing.T) {
	c := New()

	assert.False(t, c.IsOpen())
	assert.Nil(t, c.ListFiles())
	assert.Empty(t, c.ReadFile(1))
	assert.Nil(t, c.SendLine("LIST"))

	// Mutating operations must not panic or touch any transport.
	c.WriteFile(1, "text")
	c.RenameFile(1, "name")
	c.DeleteFile(1)
	assert.NoError(t, c.Close())
}

func TestConnectOpenFailure(t *testing.T) {
	c := New(WithSettleDelay(0))
	c.openPort = func(cfg *serialport.Config) (serialport.Port, error) {
		return nil, fmt.Errorf("no such device %s", cfg.Device)
	}

	err := c.Connect("/dev/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/nope")
	assert.False(t, c.IsOpen())
}

func TestConnectReplacesPreviousConnection(t *testing.T) {
	c := New(WithSettleDelay(0))

	first := &fakePort{}
	second := &fakePort{}
	ports := []*fakePort{first, second}
	c.openPort = func(*serialport.Config) (serialport.Port, error) {
		p := ports[0]
		ports = ports[1:]
		return p, nil
	}

	require.NoError(t, c.Connect("fake0"))
	require.NoError(t, c.Connect("fake1"))

	assert.True(t, first.closed, "first port should be closed by the second Connect")
	assert.False(t, second.closed)
	assert.True(t, c.IsOpen())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close must be idempotent")
	assert.False(t, c.IsOpen())
}

func TestConnectFlushesBootNoise(t *testing.T) {
	device := newFakeDevice(3)
	_, port := newTestClient(t, device)

	assert.GreaterOrEqual(t, port.flushes, 1, "stale boot output should be discarded on connect")
}

func TestListFiles(t *testing.T) {
	device := newFakeDevice(3)
	device.slots[0] = deviceSlot{name: "notes", data: "hello my dear"}
	device.slots[2] = deviceSlot{name: "todo", data: "12345"}

	c, _ := newTestClient(t, device)
	entries := c.ListFiles()

	require.Len(t, entries, 3)
	assert.Equal(t, protocol.FileEntry{Index: 1, Name: "notes", Size: 13}, entries[0])
	assert.Equal(t, protocol.FileEntry{Index: 2, Name: protocol.EmptyName, Size: 0}, entries[1])
	assert.Equal(t, protocol.FileEntry{Index: 3, Name: "todo", Size: 5}, entries[2])
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	device := newFakeDevice(3)
	c, _ := newTestClient(t, device)

	text := "first line\nsecond \\ line with backslash\na \\n that is literal"
	c.WriteFile(2, text)

	assert.Equal(t, text, device.slots[1].data, "device should hold the unescaped text")
	assert.Equal(t, text, c.ReadFile(2))
}

func TestRenameFileTruncatesName(t *testing.T) {
	device := newFakeDevice(3)
	c, port := newTestClient(t, device)

	c.RenameFile(1, "verylongfilename")

	last := port.written[len(port.written)-1]
	assert.Equal(t, "WRITE_NAME 1 verylongf", last)
	assert.Equal(t, "verylongf", device.slots[0].name)
}

func TestDeleteFile(t *testing.T) {
	device := newFakeDevice(3)
	device.slots[0] = deviceSlot{name: "junk", data: "x"}

	c, _ := newTestClient(t, device)
	c.DeleteFile(1)

	entries := c.ListFiles()
	require.Len(t, entries, 3)
	assert.Equal(t, protocol.EmptyName, entries[0].Name)
	assert.Empty(t, c.ReadFile(1))
}

func TestSendLineClearsStaleInput(t *testing.T) {
	device := newFakeDevice(3)
	device.slots[0] = deviceSlot{name: "notes", data: "abc"}
	c, port := newTestClient(t, device)

	// A late reply from a previous exchange is still sitting on the
	// line; the next exchange must not see it.
	port.pending = []byte("9: leftover (99 bytes)\n")

	entries := c.ListFiles()
	require.Len(t, entries, 3)
	assert.Equal(t, "notes", entries[0].Name)
	for _, e := range entries {
		assert.NotEqual(t, "leftover", e.Name)
	}
}

func TestSendLineStripsEmbeddedLineBreaks(t *testing.T) {
	device := newFakeDevice(3)
	c, port := newTestClient(t, device)

	c.SendLine("WRITE_NAME 1 bad\nname")

	last := port.written[len(port.written)-1]
	assert.Equal(t, "WRITE_NAME 1 badname", last, "a command must stay on one line")
}

func TestSilentDeviceYieldsEmptyResults(t *testing.T) {
	// No fakeDevice attached: every exchange gets an empty answer.
	c, _ := newTestClient(t, nil)

	entries := c.ListFiles()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, protocol.EmptyName, e.Name)
		assert.Zero(t, e.Size)
	}
	assert.Empty(t, c.ReadFile(1))
}
