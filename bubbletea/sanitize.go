package bubbletea

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes streamed model text safe to print: escape sequences and
// control characters other than tab and newline are removed, CRLF becomes
// LF and a lone CR rewrites its line from the first column, as a terminal
// would.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || (r > 0x1f && r != 0x7f) {
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = overwrite(line)
		}
	}
	return strings.Join(lines, "\n")
}

func overwrite(line string) string {
	segs := strings.Split(line, "\r")
	buf := []rune(segs[0])
	for _, seg := range segs[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}

// tail keeps the last maxLines lines of s, cut further to at most maxBytes
// bytes on a rune boundary. It reports whether anything was dropped.
func tail(s string, maxLines, maxBytes int) (string, bool) {
	cut := false
	if n := strings.Count(s, "\n"); n >= maxLines {
		idx := len(s)
		for range maxLines {
			idx = strings.LastIndexByte(s[:idx], '\n')
		}
		s = s[idx+1:]
		cut = true
	}
	if len(s) > maxBytes {
		s = s[len(s)-maxBytes:]
		for len(s) > 0 && !utf8.RuneStart(s[0]) {
			s = s[1:]
		}
		cut = true
	}
	return s, cut
}
