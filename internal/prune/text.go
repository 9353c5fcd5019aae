package prune

import (
	"strings"
	"unicode/utf8"
)

const Ellipsis = "..."

// Truncate trims s and cuts it to at most maxBytes bytes on a rune boundary,
// appending Ellipsis when anything was dropped.
func Truncate(s string, maxBytes int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxBytes {
		return s
	}
	return safeUTF8Prefix(s, maxBytes) + Ellipsis
}

// FirstLines keeps at most maxLines lines of s.
func FirstLines(s string, maxLines int) string {
	if maxLines <= 0 || s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

func safeUTF8Prefix(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) == 0 {
		return ""
	}
	if maxBytes >= len(s) {
		return s
	}
	cut := maxBytes
	for cut > 0 && cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut <= 0 {
		return ""
	}
	return s[:cut]
}
