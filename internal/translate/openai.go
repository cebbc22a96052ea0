package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-subtitler/internal/apierr"
)

// Provider defaults.
const (
	defaultOpenAIModel   = openai.GPT4oMini
	defaultDeepSeekModel = "deepseek-chat"

	// DeepSeek exposes an OpenAI-compatible API under this base URL.
	deepSeekBaseURL = "https://api.deepseek.com/v1"

	defaultHTTPTimeout = 2 * time.Minute
)

// chatCompleter abstracts the go-openai client for testing.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider completes chats through an OpenAI-compatible API.
// The same type serves DeepSeek, which speaks the same protocol.
type OpenAIProvider struct {
	name        Name
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	httpTimeout time.Duration
	client      chatCompleter
}

// Option configures an OpenAIProvider.
type Option func(*OpenAIProvider)

// WithModel sets the chat model. Empty keeps the provider default.
func WithModel(model string) Option {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL (for testing or proxies).
// The URL includes the API version path, e.g. "https://api.openai.com/v1".
func WithBaseURL(url string) Option {
	return func(p *OpenAIProvider) {
		p.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(p *OpenAIProvider) {
		if t >= 0 {
			p.temperature = t
		}
	}
}

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(p *OpenAIProvider) {
		if timeout > 0 {
			p.httpTimeout = timeout
		}
	}
}

// withClient sets a custom chat client (for testing).
func withClient(c chatCompleter) Option {
	return func(p *OpenAIProvider) {
		p.client = c
	}
}

// NewOpenAIProvider creates a provider for the OpenAI API.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewOpenAIProvider(apiKey string, opts ...Option) (*OpenAIProvider, error) {
	return newProvider(OpenAI, apiKey, "", defaultOpenAIModel, opts)
}

// NewDeepSeekProvider creates a provider for the DeepSeek API.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewDeepSeekProvider(apiKey string, opts ...Option) (*OpenAIProvider, error) {
	return newProvider(DeepSeek, apiKey, deepSeekBaseURL, defaultDeepSeekModel, opts)
}

// New creates the provider identified by name.
func New(name Name, apiKey string, opts ...Option) (*OpenAIProvider, error) {
	switch name {
	case OpenAI, "":
		return NewOpenAIProvider(apiKey, opts...)
	case DeepSeek:
		return NewDeepSeekProvider(apiKey, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownProvider)
	}
}

func newProvider(name Name, apiKey, baseURL, model string, opts []Option) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	p := &OpenAIProvider{
		name:        name,
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		temperature: 0.3,
		httpTimeout: defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	// Create client after options are applied (base URL and timeout may be customized).
	if p.client == nil {
		cfg := openai.DefaultConfig(p.apiKey)
		if p.baseURL != "" {
			cfg.BaseURL = p.baseURL
		}
		cfg.HTTPClient = &http.Client{Timeout: p.httpTimeout}
		p.client = openai.NewClientWithConfig(cfg)
	}
	return p, nil
}

// Name returns the provider identity.
func (p *OpenAIProvider) Name() Name {
	return p.name
}

// Model returns the configured chat model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends messages and returns the first choice's content.
// Errors are classified into apierr sentinels. No retry is attempted here.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices: %w", p.name, ErrEmptyCompletion)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s returned blank content: %w", p.name, ErrEmptyCompletion)
	}
	return content, nil
}

// classifyError maps go-openai errors to apierr sentinel errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	// Check for typed API errors first (most reliable).
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, code)
	}

	// Non-JSON error bodies surface as request errors carrying only the status.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), "")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	// Fallback: some gateways report the context limit without a typed error.
	if isContextLengthMessage(err.Error(), "") {
		return fmt.Errorf("API rejected: %w", apierr.ErrSizeLimit)
	}

	return err
}

// classifyStatus maps an HTTP status and provider message to a sentinel.
func classifyStatus(status int, msg, code string) error {
	switch {
	case status == http.StatusTooManyRequests:
		// Distinguish between temporary rate limit and quota exceeded (billing issue).
		if code == "insufficient_quota" || strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
			return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case status == http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case status == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%s: %w", msg, apierr.ErrSizeLimit)
	case status == http.StatusRequestTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case status >= 500:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout) // Retryable server error
	case status >= 400:
		if isContextLengthMessage(msg, code) {
			return fmt.Errorf("%s: %w", msg, apierr.ErrSizeLimit)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	}
	return fmt.Errorf("unexpected status %d: %s", status, msg)
}

func isContextLengthMessage(msg, code string) bool {
	return code == "context_length_exceeded" ||
		strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "maximum context length")
}
