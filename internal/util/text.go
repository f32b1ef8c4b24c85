package util

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Truncate shortens a string to n bytes, appending "..." when content was cut.
// Cuts land on rune boundaries.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		lastValid := 0
		for i := range s {
			if i > n {
				break
			}
			lastValid = i
		}
		return s[:lastValid]
	}
	target := n - 3
	prev := 0
	for i := range s {
		if i > target {
			return s[:prev] + "..."
		}
		prev = i
	}
	return s[:prev] + "..."
}

// SanitizeFilename makes a string safe for use as a single filename component.
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		" ", "_",
	)
	safe := replacer.Replace(strings.TrimSpace(name))
	if len(safe) > 80 {
		for i := 80; i >= 0; i-- {
			if utf8.RuneStart(safe[i]) {
				return safe[:i]
			}
		}
	}
	return safe
}

// CanonicalPath resolves symlinks in p, falling back to the cleaned absolute
// path when resolution fails (e.g. the path no longer exists).
func CanonicalPath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// PathWithin reports whether child equals parent or lives underneath it.
// Both arguments must already be canonical.
func PathWithin(child, parent string) bool {
	if child == parent {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(child, strings.TrimSuffix(parent, sep)+sep)
}
