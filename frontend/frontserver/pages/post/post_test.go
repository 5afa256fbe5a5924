package post

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEllipsize(t *testing.T) {
	var tests = []struct {
		in    string
		runes int
	}{
		{"short", 5},
		{strings.Repeat("a", 127), 127},
		{strings.Repeat("a", 128), 128},
		{strings.Repeat("é", 200), 128},
		{strings.Repeat("日本", 100), 128},
		{strings.Repeat("a", 124) + "🙂🙂🙂🙂", 128},
	}

	for _, test := range tests {
		out := ellipsize(test.in)

		if !utf8.ValidString(out) {
			t.Fatalf("Invalid UTF-8 from %q: %q", test.in, out)
		}

		if n := utf8.RuneCountInString(out); n != test.runes {
			t.Fatalf("Unexpected rune count for %q: %d != %d", test.in, n, test.runes)
		}

		if utf8.RuneCountInString(test.in) >= 128 && !strings.HasSuffix(out, "...") {
			t.Fatalf("Long string %q not ellipsized: %q", test.in, out)
		}
	}
}
