package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentences splits text into sentence candidates.
//
// A candidate ends at '.', '!' or '?' when the mark is followed by whitespace
// or the end of the text, so "3.14" and "e.g.," stay intact while "Really?!"
// ends after the last mark. A trailing fragment without terminal punctuation
// is a candidate too. Candidates are trimmed and blank ones are dropped.
func Sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if !isTerminal(r) {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) {
			nr, _ := utf8.DecodeRuneInString(text[next:])
			if !unicode.IsSpace(nr) {
				continue
			}
		}
		out = appendCandidate(out, text[start:next])
		start = next
	}
	if start < len(text) {
		out = appendCandidate(out, text[start:])
	}
	return out
}

func appendCandidate(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// length counts characters as Unicode code points.
func length(s string) int {
	return utf8.RuneCountInString(s)
}
