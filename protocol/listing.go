package protocol

import (
	"strconv"
	"strings"
)

// EmptyName is reported for slots the device listing did not describe.
const EmptyName = "(empty)"

// FileEntry is one slot in the drive's listing.
type FileEntry struct {
	// Index is the 1-based slot number.
	Index int

	// Name is the stored display name, or EmptyName for a free slot.
	Name string

	// Size is the content size in bytes as reported by the device.
	Size int
}

// ParseListing turns the device's LIST response into one FileEntry per
// slot, 1 through slots. The device reports occupied slots as lines of
// the form
//
//	<index>: <name> (<size> bytes)
//
// Parsing is best effort: unrelated lines are ignored, a malformed line
// for a slot leaves that slot at its empty default, and nothing here
// ever fails. The firmware's output format is terse and not entirely
// trustworthy, so leniency is the point.
func ParseListing(text string, slots int) []FileEntry {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	entries := make([]FileEntry, 0, slots)
	for i := 1; i <= slots; i++ {
		entry := FileEntry{Index: i, Name: EmptyName}
		prefix := strconv.Itoa(i) + ":"
		for _, ln := range lines {
			if !strings.HasPrefix(ln, prefix) {
				continue
			}
			if parsed, ok := parseListingLine(ln, i); ok {
				entry = parsed
			}
			// First line claiming this index wins, parseable or not.
			break
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseListingLine parses a single listing line already known to start
// with "<index>:". It returns false for anything it cannot make sense
// of; the caller keeps the slot's empty default in that case.
func parseListingLine(line string, index int) (FileEntry, bool) {
	rest := line[strings.IndexByte(line, ':')+1:]

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return FileEntry{}, false
	}
	name := strings.TrimSpace(rest[:open])

	fields := strings.Fields(rest[open+1:])
	if len(fields) == 0 {
		return FileEntry{}, false
	}
	size, err := strconv.Atoi(fields[0])
	if err != nil || size < 0 {
		return FileEntry{}, false
	}

	return FileEntry{Index: index, Name: name, Size: size}, true
}
