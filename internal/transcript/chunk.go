// Package transcript sizes transcript text and splits it into
// sentence-aligned chunks for translation.
package transcript

import (
	"math"
	"strings"
	"time"
)

// Chunking configuration.
const (
	// charsPerUnit converts a budget (roughly tokens) into a character ceiling.
	charsPerUnit = 4

	// charsPerSecond is the speech rate used for per-chunk duration estimates.
	charsPerSecond = 10

	// DefaultRechunkFactor is the number of parts a failed chunk is split into.
	DefaultRechunkFactor = 2
)

// Chunk is a sentence-aligned slice of transcript submitted as one translation unit.
// Chunks are values: re-chunking builds a new sequence and never mutates its input.
type Chunk struct {
	Index             int    // 1-based position among its siblings
	Total             int    // sibling count when the chunk was created
	Content           string // non-empty, sentence-aligned
	EstimatedDuration time.Duration
}

// estimateDuration returns ceil(chars / charsPerSecond) seconds.
func estimateDuration(content string) time.Duration {
	secs := math.Ceil(float64(length(content)) / charsPerSecond)
	return time.Duration(secs) * time.Second
}

// Split divides text into sentence-aligned chunks of at most maxBudget size units.
// When maxBudget <= 0 the budget comes from Estimate(text).
//
// A sentence longer than the ceiling is never cut: it becomes its own oversized
// chunk. Returns nil when text holds no sentence candidates.
func Split(text string, maxBudget int) []Chunk {
	if maxBudget <= 0 {
		maxBudget = Estimate(text).RecommendedChunkSize
	}
	ceiling := maxBudget * charsPerUnit

	var contents []string
	var current strings.Builder
	currentLen := 0

	for _, sentence := range Sentences(text) {
		n := length(sentence)
		projected := currentLen + n
		if currentLen > 0 {
			projected++ // joining space
		}

		if projected > ceiling && currentLen > 0 {
			contents = append(contents, current.String())
			current.Reset()
			currentLen = 0
		}

		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += n
	}

	if currentLen > 0 {
		contents = append(contents, current.String())
	}

	return newChunks(contents)
}

// Rechunk splits a chunk that failed downstream into about factor smaller chunks.
// Grouping is by sentence count, ceil(sentences/factor) per chunk, since the
// character budget already underestimated this input. A single-sentence chunk
// comes back as a one-element sequence. factor < 2 uses DefaultRechunkFactor.
func Rechunk(c Chunk, factor int) []Chunk {
	if factor < 2 {
		factor = DefaultRechunkFactor
	}

	sentences := Sentences(c.Content)
	if len(sentences) == 0 {
		return nil
	}

	size := (len(sentences) + factor - 1) / factor

	contents := make([]string, 0, factor)
	for start := 0; start < len(sentences); start += size {
		end := min(start+size, len(sentences))
		contents = append(contents, strings.Join(sentences[start:end], " "))
	}

	return newChunks(contents)
}

// newChunks numbers contents 1..n once the final count is known.
func newChunks(contents []string) []Chunk {
	if len(contents) == 0 {
		return nil
	}
	chunks := make([]Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = Chunk{
			Index:             i + 1,
			Total:             len(contents),
			Content:           content,
			EstimatedDuration: estimateDuration(content),
		}
	}
	return chunks
}

// FitDuration returns a copy of chunks whose durations are proportional to
// their content length and add up exactly to total. Use it when the transcript
// source knows the real duration. Non-positive totals return the input copy.
func FitDuration(chunks []Chunk, total time.Duration) []Chunk {
	out := make([]Chunk, len(chunks))
	copy(out, chunks)
	if total <= 0 || len(out) == 0 {
		return out
	}

	chars := 0
	for _, c := range out {
		chars += length(c.Content)
	}
	if chars == 0 {
		return out
	}

	var assigned time.Duration
	for i := range out {
		if i == len(out)-1 {
			out[i].EstimatedDuration = total - assigned
			break
		}
		share := time.Duration(float64(total) * float64(length(out[i].Content)) / float64(chars))
		out[i].EstimatedDuration = share
		assigned += share
	}
	return out
}

// Join concatenates chunk contents with single spaces, in slice order.
func Join(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, " ")
}
