package protocol

import "fmt"

// Command verbs understood by the drive firmware.
const (
	CmdList      = "LIST"
	CmdRead      = "READ"
	CmdWrite     = "WRITE"
	CmdWriteName = "WRITE_NAME"
	CmdDelete    = "DELETE"
)

const (
	// NameMaxLen is the longest slot name the device stores. Longer
	// names are truncated before they go on the wire.
	NameMaxLen = 9

	// DefaultSlotCount is the number of storage slots the stock
	// firmware exposes. Fixed by convention, not negotiated.
	DefaultSlotCount = 3
)

// ListCommand builds the command line that asks for the slot listing.
func ListCommand() string {
	return CmdList
}

// ReadCommand builds the command line that reads one slot's content.
func ReadCommand(slot int) string {
	return fmt.Sprintf("%s %d", CmdRead, slot)
}

// WriteCommand builds the command line that stores text in a slot.
// The text is escaped here, so the returned command is always a single
// line regardless of what the payload contains.
func WriteCommand(slot int, text string) string {
	return fmt.Sprintf("%s %d %s", CmdWrite, slot, Escape(text))
}

// RenameCommand builds the command line that renames a slot. The name
// is truncated to NameMaxLen characters, matching what the device would
// do anyway.
func RenameCommand(slot int, name string) string {
	if r := []rune(name); len(r) > NameMaxLen {
		name = string(r[:NameMaxLen])
	}
	return fmt.Sprintf("%s %d %s", CmdWriteName, slot, name)
}

// DeleteCommand builds the command line that clears a slot.
func DeleteCommand(slot int) string {
	return fmt.Sprintf("%s %d", CmdDelete, slot)
}
