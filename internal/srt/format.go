package srt

import (
	"fmt"
	"strings"
	"time"
)

// Format renders segments as an SRT document.
//
// Entries are numbered from 1 and separated by a blank line. Timestamps are
// HH:MM:SS,mmm with milliseconds truncated, never rounded up. An empty
// sequence yields an empty string.
func Format(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, Timestamp(s.Start), Timestamp(s.End), cleanContent(s.Content))
	}
	return b.String()
}

// cleanContent drops blank lines, which would end an SRT entry early.
func cleanContent(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Timestamp formats d as HH:MM:SS,mmm. Negative durations render as zero.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
