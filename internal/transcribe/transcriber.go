// Package transcribe turns audio into transcript text. It is the fallback
// transcript source when a video has no captions.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-subtitler/internal/apierr"
	"github.com/alnah/go-subtitler/internal/lang"
)

// ModelGPT4oMiniTranscribe is the cost-effective transcription model.
const ModelGPT4oMiniTranscribe = "gpt-4o-mini-transcribe"

// Parallelism configuration.
const (
	// MaxRecommendedParallel is the recommended upper limit for concurrent API requests.
	// Higher values may trigger rate limiting.
	MaxRecommendedParallel = 10
)

// Default retry configuration.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second

	defaultHTTPTimeout = 5 * time.Minute
)

// Audio is one part of a video's audio track, held in memory.
type Audio struct {
	// Name is the file name sent to the API; its extension tells the format
	// (mp3, mp4, mpeg, mpga, m4a, wav, webm, ogg).
	Name string
	Data []byte
	// Duration is the part's length when known, zero otherwise.
	Duration time.Duration
}

// TotalDuration sums the known durations of parts.
func TotalDuration(parts []Audio) time.Duration {
	var total time.Duration
	for _, p := range parts {
		total += p.Duration
	}
	return total
}

// Options configures transcription behavior.
type Options struct {
	// Prompt provides context to improve transcription accuracy, such as the
	// video title or domain vocabulary.
	Prompt string

	// Language specifies the audio language.
	// Zero value means auto-detect.
	Language lang.Language
}

// Transcriber transcribes audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio, opts Options) (string, error)
}

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio using OpenAI's transcription API.
// It retries transient errors with exponential backoff.
type OpenAITranscriber struct {
	client     audioTranscriber
	baseURL    string
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithModel sets the transcription model.
func WithModel(model string) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithBaseURL sets a custom base URL, including the "/v1" path.
func WithBaseURL(url string) TranscriberOption {
	return func(t *OpenAITranscriber) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// withClient sets a custom transcription client (for testing).
func withClient(c audioTranscriber) TranscriberOption {
	return func(t *OpenAITranscriber) {
		t.client = c
	}
}

// NewOpenAITranscriber creates a new OpenAITranscriber.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewOpenAITranscriber(apiKey string, opts ...TranscriberOption) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	t := &OpenAITranscriber{
		model:      ModelGPT4oMiniTranscribe,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		cfg := openai.DefaultConfig(apiKey)
		if t.baseURL != "" {
			cfg.BaseURL = t.baseURL
		}
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
		t.client = openai.NewClientWithConfig(cfg)
	}
	return t, nil
}

// Transcribe transcribes one audio part.
// It automatically retries on transient errors (rate limits, timeouts, server errors).
func (t *OpenAITranscriber) Transcribe(ctx context.Context, a Audio, opts Options) (string, error) {
	if len(a.Data) == 0 {
		return "", fmt.Errorf("%s: %w", a.Name, ErrEmptyAudio)
	}

	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		// The reader is consumed by each attempt.
		req := openai.AudioRequest{
			Model:    t.model,
			FilePath: a.Name,
			Reader:   bytes.NewReader(a.Data),
			Format:   openai.AudioResponseFormatJSON,
			Prompt:   opts.Prompt,
			Language: opts.Language.BaseCode(), // OpenAI only accepts ISO 639-1 base codes
		}
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", classifyError(err)
		}
		return strings.TrimSpace(resp.Text), nil
	}, isRetryableError)
}

// classifyError maps OpenAI API errors to apierr sentinel errors.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Quota exceeded should not be retried; it requires user action.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout,
			http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusRequestEntityTooLarge:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrSizeLimit)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	// Check for context timeout/deadline exceeded.
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

// isRetryableError reports whether a transcription error is transient.
// Unlike chat translation, unclassified errors are not retried: audio uploads
// are expensive and an unknown failure is unlikely to clear by itself.
func isRetryableError(err error) bool {
	return errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout)
}

// TranscribeAll transcribes multiple audio parts in parallel.
// Results are returned in the same order as the input parts.
// If any part fails, the entire operation is aborted and the error is returned.
// maxParallel limits the number of concurrent API requests (1-MaxRecommendedParallel recommended).
func TranscribeAll(
	ctx context.Context,
	parts []Audio,
	t Transcriber,
	opts Options,
	maxParallel int,
) ([]string, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	if maxParallel < 1 {
		maxParallel = 1
	}

	results := make([]string, len(parts))
	sem := make(chan struct{}, maxParallel)

	g, ctx := errgroup.WithContext(ctx)

	for i, part := range parts {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			text, err := t.Transcribe(ctx, part, opts)
			if err != nil {
				return fmt.Errorf("part %d (%s): %w", i+1, part.Name, err)
			}
			results[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Join concatenates transcribed parts, skipping blank ones.
func Join(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
