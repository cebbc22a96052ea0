// Package pipeline drives a transcript through chunking, translation and
// subtitle assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-subtitler/internal/apierr"
	"github.com/alnah/go-subtitler/internal/lang"
	"github.com/alnah/go-subtitler/internal/srt"
	"github.com/alnah/go-subtitler/internal/transcript"
	"github.com/alnah/go-subtitler/internal/translate"
)

// Orchestrator defaults.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second

	// DefaultMaxDepth bounds size-limit splitting: a chunk is halved at most
	// this many times before it is marked failed.
	DefaultMaxDepth = 3

	// placeholderLength is how much source text a failed chunk echoes.
	placeholderLength = 100
	placeholderPrefix = "[Translation failed] "
)

// Orchestrator translates chunks sequentially and assembles the subtitles.
// An Orchestrator holds no per-run state and may be reused across runs.
type Orchestrator struct {
	provider   translate.Provider
	target     lang.Language
	logger     logrus.FieldLogger
	retry      apierr.RetryConfig
	maxDepth   int
	onProgress func(current, total int)
	newRunID   func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRetry sets the retry policy for transient provider errors.
// OnRetry is owned by the orchestrator and ignored here.
func WithRetry(cfg apierr.RetryConfig) Option {
	return func(o *Orchestrator) {
		o.retry = apierr.RetryConfig{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
			MaxDelay:   cfg.MaxDelay,
		}
	}
}

// WithMaxDepth sets how many times a chunk may be re-split after size-limit
// errors. Zero disables re-chunking.
func WithMaxDepth(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxDepth = n
		}
	}
}

// WithProgress sets a callback invoked as each top-level chunk starts.
func WithProgress(fn func(current, total int)) Option {
	return func(o *Orchestrator) {
		o.onProgress = fn
	}
}

// withRunID overrides run ID generation (for testing).
func withRunID(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newRunID = fn
	}
}

// NewOrchestrator creates an Orchestrator translating into target through provider.
func NewOrchestrator(provider translate.Provider, target lang.Language, opts ...Option) *Orchestrator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := &Orchestrator{
		provider: provider,
		target:   target,
		logger:   discard,
		retry: apierr.RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
		maxDepth: DefaultMaxDepth,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the mutable state of a single TranslateAll call.
type run struct {
	prompt translate.Prompt
	stats  Stats
	log    logrus.FieldLogger
}

// TranslateAll translates chunks in index order and formats the result as SRT.
//
// Chunk failures never abort the run: a failed chunk is replaced by a
// placeholder and counted in Stats. Only context cancellation and a chunk
// without a positive duration stop the run with an error.
func (o *Orchestrator) TranslateAll(ctx context.Context, chunks []transcript.Chunk, video translate.VideoContext) (Result, error) {
	ordered := slices.Clone(chunks)
	slices.SortStableFunc(ordered, func(a, b transcript.Chunk) int { return a.Index - b.Index })

	runID := o.newRunID()
	r := &run{
		stats: Stats{RunID: runID, TotalChunks: len(ordered)},
		log:   o.logger.WithField("run_id", runID),
	}
	if len(ordered) == 0 {
		return Result{Stats: r.stats}, nil
	}
	r.prompt = translate.NewPrompt(o.target, video, ordered[0].Content)

	results := make([]ChunkResult, 0, len(ordered))
	for i, c := range ordered {
		if o.onProgress != nil {
			o.onProgress(i+1, len(ordered))
		}

		text, ok, err := o.translateChunk(ctx, r, c, 0)
		if err != nil {
			return Result{Chunks: results, Stats: r.stats}, err
		}
		if ok {
			r.stats.Successful++
		} else {
			r.stats.Failed++
			text = Placeholder(c.Content)
		}
		results = append(results, ChunkResult{Chunk: c, Text: text, Failed: !ok})
	}

	segments, err := assemble(results)
	if err != nil {
		return Result{Chunks: results, Stats: r.stats}, err
	}

	r.log.WithFields(logrus.Fields{
		"total":      r.stats.TotalChunks,
		"successful": r.stats.Successful,
		"failed":     r.stats.Failed,
		"retried":    r.stats.Retried,
		"rechunked":  r.stats.Rechunked,
	}).Info("translation run complete")

	return Result{
		SRT:      srt.Format(segments),
		Segments: segments,
		Chunks:   results,
		Stats:    r.stats,
	}, nil
}

// translateChunk runs the chunk-level procedure: call the provider with
// retries, split and recurse on size-limit errors, give up otherwise.
// ok is false when the chunk failed. err is only set when ctx is done.
func (o *Orchestrator) translateChunk(ctx context.Context, r *run, c transcript.Chunk, depth int) (text string, ok bool, err error) {
	log := r.log.WithFields(logrus.Fields{"chunk": c.Index, "total": c.Total, "depth": depth})

	cfg := o.retry
	retried := false
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		if !retried {
			retried = true
			r.stats.Retried++
		}
		log.WithError(err).WithFields(logrus.Fields{
			"attempts": attempt,
			"delay":    delay,
		}).Warn("retrying chunk translation")
	}

	messages := r.prompt.Messages(c.Content)
	text, err = apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		return o.provider.Complete(ctx, messages)
	}, apierr.IsRetryable)
	if err == nil {
		log.Debug("chunk translated")
		return text, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}

	if errors.Is(err, apierr.ErrSizeLimit) {
		return o.splitAndRetry(ctx, r, c, depth, log)
	}

	log.WithError(err).Warn("chunk translation failed")
	return "", false, nil
}

// splitAndRetry re-chunks c and translates the parts. The parent succeeds
// with the space-joined successful parts, or fails when none succeed.
func (o *Orchestrator) splitAndRetry(ctx context.Context, r *run, c transcript.Chunk, depth int, log logrus.FieldLogger) (string, bool, error) {
	if depth >= o.maxDepth {
		log.Warn("size limit at maximum re-chunk depth")
		return "", false, nil
	}

	parts := transcript.Rechunk(c, transcript.DefaultRechunkFactor)
	if len(parts) < 2 {
		log.Warn("size limit on a chunk that cannot be split")
		return "", false, nil
	}

	r.stats.Rechunked++
	log.WithField("parts", len(parts)).Info("size limit, re-chunking")

	var translated []string
	for _, part := range parts {
		text, ok, err := o.translateChunk(ctx, r, part, depth+1)
		if err != nil {
			return "", false, err
		}
		if ok {
			translated = append(translated, text)
		}
	}

	if len(translated) == 0 {
		log.Warn("no re-chunked part translated")
		return "", false, nil
	}
	return strings.Join(translated, " "), true, nil
}

// assemble times each chunk's text over its estimated duration and lays the
// chunks end to end.
func assemble(results []ChunkResult) ([]srt.Segment, error) {
	var segments []srt.Segment
	var offset time.Duration

	for _, res := range results {
		d := res.Chunk.EstimatedDuration
		if d <= 0 {
			return nil, fmt.Errorf("chunk %d: %w", res.Chunk.Index, srt.ErrInvalidDuration)
		}

		chunkSegments, err := srt.SplitIntoSegments(res.Text, d)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", res.Chunk.Index, err)
		}
		segments = append(segments, srt.Shift(chunkSegments, offset)...)
		offset += d
	}

	return segments, nil
}

// Placeholder returns the text standing in for a chunk that failed to
// translate: a marker followed by the start of the source text.
func Placeholder(source string) string {
	return placeholderPrefix + translate.Excerpt(source, placeholderLength)
}
