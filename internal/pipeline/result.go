package pipeline

import (
	"github.com/alnah/go-subtitler/internal/srt"
	"github.com/alnah/go-subtitler/internal/transcript"
)

// Stats are the counters of one translation run.
// Successful + Failed always equals TotalChunks; both count top-level chunks.
type Stats struct {
	RunID       string
	TotalChunks int
	Successful  int
	Failed      int
	// Retried counts chunk translations (sub-chunks included) that needed at
	// least one retry. A chunk retried three times counts once.
	Retried int
	// Rechunked counts chunks split after a size-limit rejection.
	Rechunked         int
	UsedAudioFallback bool
}

// ChunkResult is the outcome of one top-level chunk.
type ChunkResult struct {
	Chunk transcript.Chunk
	// Text is the translation, or a placeholder when Failed.
	Text   string
	Failed bool
}

// Result is the output of a translation run.
type Result struct {
	SRT      string
	Segments []srt.Segment
	Chunks   []ChunkResult
	Stats    Stats
}
