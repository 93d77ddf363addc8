package view

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapTextRespectsWordBoundaries(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 15 {
			t.Fatalf("line over width: %q", line)
		}
		if strings.HasPrefix(line, " ") || strings.HasSuffix(line, " ") {
			t.Fatalf("line has edge spaces: %q", line)
		}
	}
	if got := strings.Join(lines, " "); got != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("words lost or reordered: %q", got)
	}
}

func TestWrapTextCountsRunesNotBytes(t *testing.T) {
	// Accented words take more bytes than runes in UTF-8.
	lines := wrapText("grâce résumé naïve café über", 13)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > 13 {
			t.Fatalf("line %q is %d runes, want <= 13", line, n)
		}
	}
	// "grâce résumé" is 12 runes but 15 bytes; byte counting would push the
	// second word onto its own line.
	if lines[0] != "grâce résumé" {
		t.Fatalf("multibyte words split too early: %q", lines[0])
	}
}

func TestWrapTextEmptyAndSingleWord(t *testing.T) {
	if got := wrapText("", 10); len(got) != 0 {
		t.Fatalf("empty input produced lines: %v", got)
	}
	got := wrapText("verdantis", 10)
	if len(got) != 1 || got[0] != "verdantis" {
		t.Fatalf("single word mangled: %v", got)
	}
}
