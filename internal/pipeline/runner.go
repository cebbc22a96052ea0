package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-subtitler/internal/transcribe"
	"github.com/alnah/go-subtitler/internal/transcript"
	"github.com/alnah/go-subtitler/internal/translate"
)

// Input is everything a run starts from. Text wins over Audio when both are set.
type Input struct {
	// Text is the transcript from captions or a file.
	Text string
	// Audio is transcribed when Text is blank.
	Audio []transcribe.Audio
	// Duration is the real video length when known. Chunk durations are
	// fitted to it; zero keeps the character-rate estimates.
	Duration time.Duration
	// MaxBudget overrides the estimator's chunk budget when positive.
	MaxBudget int
	Video     translate.VideoContext
}

// Plan is a transcript sized and split, ready for translation.
type Plan struct {
	Text              string
	Estimate          transcript.SizeEstimate
	Chunks            []transcript.Chunk
	UsedAudioFallback bool
}

// Runner acquires the transcript for a run and hands it to an Orchestrator.
type Runner struct {
	orchestrator *Orchestrator
	transcriber  transcribe.Transcriber
	maxParallel  int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTranscriber enables the audio fallback.
func WithTranscriber(t transcribe.Transcriber, maxParallel int) RunnerOption {
	return func(r *Runner) {
		r.transcriber = t
		r.maxParallel = maxParallel
	}
}

// NewRunner creates a Runner around o.
func NewRunner(o *Orchestrator, opts ...RunnerOption) *Runner {
	r := &Runner{orchestrator: o, maxParallel: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare acquires, sizes and splits the transcript without translating it.
// Returns ErrInputUnavailable when neither text nor transcribable audio is given.
func (r *Runner) Prepare(ctx context.Context, in Input) (Plan, error) {
	log := r.orchestrator.logger

	text := strings.TrimSpace(in.Text)
	fromAudio := false
	duration := in.Duration

	if text == "" {
		if len(in.Audio) == 0 {
			return Plan{}, ErrInputUnavailable
		}
		if r.transcriber == nil {
			return Plan{}, fmt.Errorf("%w: audio given but no transcriber configured", ErrInputUnavailable)
		}

		log.WithField("parts", len(in.Audio)).Info("no transcript, transcribing audio")
		texts, err := transcribe.TranscribeAll(ctx, in.Audio, r.transcriber,
			transcribe.Options{Prompt: in.Video.Title}, r.maxParallel)
		if err != nil {
			if ctx.Err() != nil {
				return Plan{}, ctx.Err()
			}
			return Plan{}, fmt.Errorf("%w: audio transcription: %w", ErrInputUnavailable, err)
		}

		text = transcribe.Join(texts)
		if text == "" {
			return Plan{}, fmt.Errorf("%w: audio transcribed to nothing", ErrInputUnavailable)
		}
		fromAudio = true
		if duration <= 0 {
			duration = transcribe.TotalDuration(in.Audio)
		}
	}

	plan := NewPlan(text, duration, in.MaxBudget, log)
	plan.UsedAudioFallback = fromAudio
	return plan, nil
}

// NewPlan sizes and splits text without acquiring or translating anything.
// A positive maxBudget overrides the estimator; a positive duration is used to
// fit chunk durations when every chunk keeps a positive share of it.
func NewPlan(text string, duration time.Duration, maxBudget int, log logrus.FieldLogger) Plan {
	plan := Plan{Text: text, Estimate: transcript.Estimate(text)}
	if plan.Estimate.HasWarning() {
		log.WithField("minutes", plan.Estimate.EstimatedMinutes).Warn(plan.Estimate.WarningMessage)
	}

	budget := plan.Estimate.RecommendedChunkSize
	if maxBudget > 0 {
		budget = maxBudget
	}
	plan.Chunks = transcript.Split(text, budget)

	if duration > 0 {
		fitted := transcript.FitDuration(plan.Chunks, duration)
		if allPositive(fitted) {
			plan.Chunks = fitted
		} else {
			log.WithField("duration", duration).Warn("duration too short for chunk count, keeping estimates")
		}
	}

	log.WithFields(logrus.Fields{
		"chunks": len(plan.Chunks),
		"budget": budget,
	}).Debug("transcript split")

	return plan
}

// Run prepares the input and translates it.
func (r *Runner) Run(ctx context.Context, in Input) (Result, error) {
	plan, err := r.Prepare(ctx, in)
	if err != nil {
		return Result{}, err
	}

	res, err := r.orchestrator.TranslateAll(ctx, plan.Chunks, in.Video)
	res.Stats.UsedAudioFallback = plan.UsedAudioFallback
	return res, err
}

func allPositive(chunks []transcript.Chunk) bool {
	for _, c := range chunks {
		if c.EstimatedDuration <= 0 {
			return false
		}
	}
	return true
}
