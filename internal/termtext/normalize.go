// Package termtext cleans terminal output before it is parsed.
package termtext

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const esc = "\x1b"

// Normalize removes terminal control sequences (colors, cursor movement,
// screen and line clears, cursor show/hide, charset selection) and any stray
// ESC byte. Printable text, tabs and newlines are kept as-is.
//
// Sequences never span lines. An ESC that does not open a complete sequence
// on its own line is dropped alone, and the text after it is kept.
//
// Output never contains ESC, and text without ESC is returned unchanged, so
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if !strings.Contains(s, esc) {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Contains(line, esc) {
			lines[i] = strings.ReplaceAll(ansi.Strip(dropBareEscapes(line)), esc, "")
		}
	}
	return strings.Join(lines, "\n")
}

// Lines normalizes s and splits it into lines, dropping a trailing "\r" from
// each line.
func Lines(s string) []string {
	lines := strings.Split(Normalize(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// dropBareEscapes removes every ESC in line that does not start a complete
// sequence, so that ansi.Strip only ever sees terminated sequences.
func dropBareEscapes(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); {
		if line[i] != esc[0] {
			b.WriteByte(line[i])
			i++
			continue
		}
		n := sequenceLen(line[i:])
		if n == 0 {
			i++
			continue
		}
		b.WriteString(line[i : i+n])
		i += n
	}
	return b.String()
}

// sequenceLen returns the length of the escape sequence at the start of s,
// or 0 when the ESC at s[0] does not start a complete one.
func sequenceLen(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch c := s[1]; {
	case c == '[':
		// CSI: parameters, intermediates, final byte.
		i := 2
		for i < len(s) && s[i] >= 0x30 && s[i] <= 0x3f {
			i++
		}
		for i < len(s) && s[i] >= 0x20 && s[i] <= 0x2f {
			i++
		}
		if i < len(s) && s[i] >= 0x40 && s[i] <= 0x7e {
			return i + 1
		}
	case c == ']':
		// OSC ends with BEL or ST.
		return stringLen(s, true)
	case c == 'P':
		// DCS needs a parameter, intermediate or final byte before ST.
		if len(s) > 2 && s[2] >= 0x20 && s[2] <= 0x7e {
			return stringLen(s, false)
		}
	case c == 'X', c == '^', c == '_':
		// SOS, PM and APC end with ST.
		return stringLen(s, false)
	case strings.IndexByte("()*+-./", c) >= 0:
		if len(s) > 2 && s[2] >= 0x30 && s[2] <= 0x7e {
			return 3
		}
	case c >= '0' && c <= '?':
		// Private two-byte escapes such as save/restore cursor.
		return 2
	}
	return 0
}

// stringLen finds the terminator of a control string that starts at s[2].
func stringLen(s string, bel bool) int {
	for i := 2; i < len(s); i++ {
		switch {
		case bel && s[i] == '\a':
			return i + 1
		case s[i] == esc[0]:
			if i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
			return 0
		}
	}
	return 0
}
