// Package srt times translated text into subtitle segments and reads and
// writes the SubRip (.srt) format.
package srt

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/alnah/go-subtitler/internal/transcript"
)

// targetSegmentDuration is the length a segment grows to before it is closed.
const targetSegmentDuration = 5 * time.Second

// ErrInvalidDuration indicates a zero or negative total duration.
var ErrInvalidDuration = errors.New("total duration must be positive")

// Segment is a timed span of subtitle text.
type Segment struct {
	Content string
	Start   time.Duration
	End     time.Duration
}

// Duration returns End - Start.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Seconds converts fractional seconds to a Duration, rounded to the nanosecond.
// Rounding keeps values such as 1.234 from landing one nanosecond short.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// SplitIntoSegments divides text into contiguous segments of about five seconds
// covering exactly [0, total].
//
// Time is distributed by character density: rate = len(text) / total. Sentences
// accumulate into a segment until the next one would push it past the target.
// The last segment always ends at total, absorbing estimate drift. Text with no
// internal sentence breaks yields a single segment. Blank text yields none.
func SplitIntoSegments(text string, total time.Duration) ([]Segment, error) {
	if total <= 0 {
		return nil, ErrInvalidDuration
	}

	sentences := transcript.Sentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	charsPerSecond := float64(len([]rune(text))) / total.Seconds()
	durationOf := func(chars int) time.Duration {
		return Seconds(float64(chars) / charsPerSecond)
	}

	var segments []Segment
	var current []string
	currentLen := 0
	var start time.Duration

	for _, sentence := range sentences {
		n := len([]rune(sentence))
		projected := currentLen + n
		if currentLen > 0 {
			projected++
		}

		if currentLen > 0 && durationOf(projected) > targetSegmentDuration {
			end := min(start+durationOf(currentLen), total)
			segments = append(segments, Segment{
				Content: strings.Join(current, " "),
				Start:   start,
				End:     end,
			})
			start = end
			current = current[:0]
			currentLen = 0
		}

		if currentLen > 0 {
			currentLen++
		}
		current = append(current, sentence)
		currentLen += n
	}

	segments = append(segments, Segment{
		Content: strings.Join(current, " "),
		Start:   start,
		End:     total,
	})

	return segments, nil
}

// Shift returns a copy of segments moved later by offset.
func Shift(segments []Segment, offset time.Duration) []Segment {
	out := make([]Segment, len(segments))
	for i, s := range segments {
		out[i] = Segment{Content: s.Content, Start: s.Start + offset, End: s.End + offset}
	}
	return out
}
