package srt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed indicates input that is not a valid SRT document.
var ErrMalformed = errors.New("malformed srt")

// Both ',' and '.' are accepted as the millisecond separator on input.
var timeLineRe = regexp.MustCompile(
	`^(\d{1,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,}):(\d{2}):(\d{2})[,.](\d{3})`)

// Parse reads an SRT document. Entry numbers are validated but not kept;
// segments come back in document order. Multi-line text is joined with '\n'.
func Parse(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var segments []Segment
	lineNum := 0
	const (
		wantNumber = iota
		wantTime
		wantText
	)
	state := wantNumber
	var current Segment
	var text []string

	flush := func() {
		current.Content = strings.Join(text, "\n")
		segments = append(segments, current)
		current = Segment{}
		text = nil
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		switch state {
		case wantNumber:
			if trimmed == "" {
				continue
			}
			if _, err := strconv.Atoi(trimmed); err != nil {
				return nil, fmt.Errorf("line %d: invalid entry number %q: %w", lineNum, trimmed, ErrMalformed)
			}
			state = wantTime
		case wantTime:
			start, end, err := parseTimeLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			current.Start, current.End = start, end
			state = wantText
		case wantText:
			if trimmed == "" {
				flush()
				state = wantNumber
				continue
			}
			text = append(text, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	switch state {
	case wantTime:
		return nil, fmt.Errorf("line %d: missing time line: %w", lineNum, ErrMalformed)
	case wantText:
		flush()
	}

	return segments, nil
}

func parseTimeLine(line string) (time.Duration, time.Duration, error) {
	m := timeLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time line %q: %w", line, ErrMalformed)
	}
	start := clock(m[1], m[2], m[3], m[4])
	end := clock(m[5], m[6], m[7], m[8])
	if end < start {
		return 0, 0, fmt.Errorf("end before start in %q: %w", line, ErrMalformed)
	}
	return start, end, nil
}

// clock assembles a duration from regexp-validated digit groups.
func clock(h, m, s, ms string) time.Duration {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	mss, _ := strconv.Atoi(ms)
	return time.Duration(hh)*time.Hour +
		time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second +
		time.Duration(mss)*time.Millisecond
}

// Text joins segment contents into one transcript, one space between entries.
func Text(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if c := strings.Join(strings.Fields(s.Content), " "); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// End returns the latest end time among segments.
func End(segments []Segment) time.Duration {
	var last time.Duration
	for _, s := range segments {
		last = max(last, s.End)
	}
	return last
}
