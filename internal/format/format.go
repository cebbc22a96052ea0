// Package format renders durations, sizes and counts for terminal output.
package format

import (
	"fmt"
	"time"
)

// Clock formats d as MM:SS, or HH:MM:SS from one hour up.
// Rounds to the nearest second; negative durations render as zero.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	h := total / 3600
	m := (total / 60) % 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Size formats a byte count with one decimal: "512 B", "1.5 KB", "24.0 MB".
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Count pairs n with noun, adding "s" unless n is exactly one.
// Example: Count(3, "chunk") -> "3 chunks"
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
