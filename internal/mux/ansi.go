package mux

import "regexp"

// Escape sequences that may leak into captured pane text: CSI (cursor and
// color controls), OSC (titles, hyperlinks) and the remaining two-byte
// escapes. Captured text is consumed by scripts, so everything must go.
var (
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	escPattern = regexp.MustCompile(`\x1b[@-_]`)
)

// StripANSI removes ANSI/VT escape sequences and carriage returns from s,
// leaving plain text with newlines and tabs intact.
func StripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	s = escPattern.ReplaceAllString(s, "")

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
