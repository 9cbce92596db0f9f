package protocol

import "strings"

// Escape makes arbitrary text safe to travel as a single protocol line.
// Backslashes are doubled first, then line feeds become the two-character
// sequence \n and carriage returns become \r. Escaping the backslash
// first keeps the sequences introduced for LF/CR from being escaped a
// second time.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return s
}

// Unescape reverses Escape. It scans left to right: a backslash followed
// by n, r or another backslash produces LF, CR or a literal backslash.
// Any other character after a backslash passes through unchanged, and a
// lone trailing backslash is kept literally - the device side is not
// trusted to only emit escapes we know about.
func Unescape(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}

		i++
		switch s[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case '\\':
			out.WriteByte('\\')
		default:
			out.WriteByte(s[i])
		}
	}

	return out.String()
}

// Printable filters a raw device response down to printable ASCII plus
// line feed. Carriage returns, NULs, high-bit bytes and other control
// characters are dropped. Every response goes through this filter before
// any parsing or unescaping, so escape sequences must only ever resolve
// to bytes inside the kept range.
func Printable(raw []byte) string {
	var out strings.Builder
	out.Grow(len(raw))

	for _, b := range raw {
		if (b >= 0x20 && b <= 0x7E) || b == '\n' {
			out.WriteByte(b)
		}
	}

	return out.String()
}
