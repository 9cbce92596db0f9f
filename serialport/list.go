package serialport

import (
	"fmt"

	"go.bug.st/serial"
)

// List enumerates the serial ports visible on this machine, so an
// operator does not have to guess device names. Ordering follows
// whatever the OS reports.
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	return ports, nil
}
