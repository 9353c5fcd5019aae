package prune

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "  padded  ", max: 6, want: "padded"},
		{in: "abcdefgh", max: 4, want: "abcd..."},
		{in: "héllo", max: 2, want: "h..."},
		{in: "abc", max: 0, want: "..."},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("日本語", 100)
	for max := 1; max < 20; max++ {
		if got := Truncate(s, max); !utf8.ValidString(got) {
			t.Fatalf("max=%d produced invalid utf-8: %q", max, got)
		}
	}
}

func TestFirstLines(t *testing.T) {
	if got := FirstLines("a\nb\nc", 2); got != "a\nb" {
		t.Fatalf("FirstLines = %q", got)
	}
	if got := FirstLines("single", 1); got != "single" {
		t.Fatalf("FirstLines = %q", got)
	}
}
