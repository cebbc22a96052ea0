package translate_test

// Notes:
// - Uses httptest.Server so the real go-openai client builds and parses requests
// - Base URL must include the "/v1" version path, as with the public APIs
// - ClassifyError is also tested directly with go-openai error values

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-subtitler/internal/apierr"
	"github.com/alnah/go-subtitler/internal/translate"
)

// ---------------------------------------------------------------------------
// Helpers - mock chat completion server
// ---------------------------------------------------------------------------

type chatCall struct {
	Path     string
	Auth     string
	Model    string
	Messages []openai.ChatCompletionMessage
}

type mockChatServer struct {
	*httptest.Server
	mu     sync.Mutex
	calls  []chatCall
	status int
	body   any
}

func newMockChatServer(t *testing.T, status int, body any) *mockChatServer {
	t.Helper()

	m := &mockChatServer{status: status, body: body}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.calls = append(m.calls, chatCall{
			Path:     r.URL.Path,
			Auth:     r.Header.Get("Authorization"),
			Model:    req.Model,
			Messages: req.Messages,
		})
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.status)
		switch b := m.body.(type) {
		case string:
			fmt.Fprint(w, b)
		default:
			_ = json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockChatServer) Calls() []chatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]chatCall(nil), m.calls...)
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func errorResponse(message, code string) map[string]any {
	return map[string]any{
		"error": map[string]any{"message": message, "type": "invalid_request_error", "code": code},
	}
}

func newTestProvider(t *testing.T, server *mockChatServer, opts ...translate.Option) *translate.OpenAIProvider {
	t.Helper()

	opts = append([]translate.Option{translate.WithBaseURL(server.URL + "/v1")}, opts...)
	p, err := translate.NewOpenAIProvider("sk-test", opts...)
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p
}

var testMessages = []translate.Message{
	{Role: translate.RoleSystem, Content: "Translate into French."},
	{Role: translate.RoleUser, Content: "Hello."},
}

// ---------------------------------------------------------------------------
// TestOpenAIProvider_Complete - HTTP round trips
// ---------------------------------------------------------------------------

func TestOpenAIProvider_Complete(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		server := newMockChatServer(t, http.StatusOK, chatResponse("  Bonjour.\n"))
		p := newTestProvider(t, server, translate.WithModel("gpt-4o"))

		got, err := p.Complete(context.Background(), testMessages)
		if err != nil {
			t.Fatalf("Complete() unexpected error: %v", err)
		}
		if got != "Bonjour." {
			t.Errorf("Complete() = %q, want %q", got, "Bonjour.")
		}

		calls := server.Calls()
		if len(calls) != 1 {
			t.Fatalf("got %d calls, want 1", len(calls))
		}
		call := calls[0]
		if call.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", call.Path)
		}
		if call.Auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", call.Auth)
		}
		if call.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", call.Model)
		}
		if len(call.Messages) != 2 ||
			call.Messages[0].Role != "system" || call.Messages[1].Content != "Hello." {
			t.Errorf("messages = %+v", call.Messages)
		}
	})

	t.Run("deepseek uses same protocol", func(t *testing.T) {
		t.Parallel()

		server := newMockChatServer(t, http.StatusOK, chatResponse("Hola."))
		p, err := translate.NewDeepSeekProvider("ds-test", translate.WithBaseURL(server.URL+"/v1"))
		if err != nil {
			t.Fatalf("NewDeepSeekProvider: %v", err)
		}

		got, err := p.Complete(context.Background(), testMessages)
		if err != nil || got != "Hola." {
			t.Fatalf("Complete() = %q, %v", got, err)
		}
		if calls := server.Calls(); calls[0].Model != "deepseek-chat" || calls[0].Auth != "Bearer ds-test" {
			t.Errorf("call = %+v", calls[0])
		}
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()

		server := newMockChatServer(t, http.StatusOK, chatResponse("   "))
		_, err := newTestProvider(t, server).Complete(context.Background(), testMessages)
		if !errors.Is(err, translate.ErrEmptyCompletion) {
			t.Errorf("error = %v, want ErrEmptyCompletion", err)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		t.Parallel()

		server := newMockChatServer(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}})
		_, err := newTestProvider(t, server).Complete(context.Background(), testMessages)
		if !errors.Is(err, translate.ErrEmptyCompletion) {
			t.Errorf("error = %v, want ErrEmptyCompletion", err)
		}
	})

	errorTests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"rate limit", http.StatusTooManyRequests, errorResponse("Rate limit reached", "rate_limit_exceeded"), apierr.ErrRateLimit},
		{"quota", http.StatusTooManyRequests, errorResponse("You exceeded your current quota", "insufficient_quota"), apierr.ErrQuotaExceeded},
		{"auth", http.StatusUnauthorized, errorResponse("Incorrect API key", "invalid_api_key"), apierr.ErrAuthFailed},
		{"context length", http.StatusBadRequest, errorResponse("This model's maximum context length is 8192 tokens", "context_length_exceeded"), apierr.ErrSizeLimit},
		{"payload too large", http.StatusRequestEntityTooLarge, errorResponse("Request too large", ""), apierr.ErrSizeLimit},
		{"bad request", http.StatusBadRequest, errorResponse("Invalid model", "model_not_found"), apierr.ErrBadRequest},
		{"server error", http.StatusBadGateway, errorResponse("Upstream failure", ""), apierr.ErrTimeout},
		{"non-json server error", http.StatusServiceUnavailable, "<html>down</html>", apierr.ErrTimeout},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newMockChatServer(t, tt.status, tt.body)
			_, err := newTestProvider(t, server).Complete(context.Background(), testMessages)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if n := len(server.Calls()); n != 1 {
				t.Errorf("got %d calls, want 1 (no retry inside provider)", n)
			}
		})
	}
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	p, err := translate.NewOpenAIProvider("sk-test", translate.WithBaseURL(server.URL+"/v1"))
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Complete(ctx, testMessages)
	if !errors.Is(err, apierr.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

// ---------------------------------------------------------------------------
// TestOpenAIProvider_MockClient - client seam
// ---------------------------------------------------------------------------

type mockChatCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (m *mockChatCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.got = req
	return m.resp, m.err
}

var _ translate.ChatCompleter = (*mockChatCompleter)(nil)

func TestOpenAIProvider_MockClient(t *testing.T) {
	t.Parallel()

	mock := &mockChatCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "Salut."}}},
	}}
	p, err := translate.NewOpenAIProvider("sk-test", translate.WithClient(mock), translate.WithTemperature(0))
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	got, err := p.Complete(context.Background(), testMessages)
	if err != nil || got != "Salut." {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
	if mock.got.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", mock.got.Temperature)
	}
	if mock.got.Messages[0].Role != openai.ChatMessageRoleSystem || mock.got.Messages[1].Role != openai.ChatMessageRoleUser {
		t.Errorf("roles = %q, %q", mock.got.Messages[0].Role, mock.got.Messages[1].Role)
	}
}

// ---------------------------------------------------------------------------
// TestClassifyError - go-openai error mapping
// ---------------------------------------------------------------------------

func TestClassifyError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"api 429", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, apierr.ErrRateLimit},
		{"api 429 billing", &openai.APIError{HTTPStatusCode: 429, Message: "check your billing details"}, apierr.ErrQuotaExceeded},
		{"api 402", &openai.APIError{HTTPStatusCode: 402, Message: "pay"}, apierr.ErrQuotaExceeded},
		{"api 401", &openai.APIError{HTTPStatusCode: 401, Message: "no"}, apierr.ErrAuthFailed},
		{"api 408", &openai.APIError{HTTPStatusCode: 408, Message: "slow"}, apierr.ErrTimeout},
		{"api 500", &openai.APIError{HTTPStatusCode: 500, Message: "oops"}, apierr.ErrTimeout},
		{"api 413", &openai.APIError{HTTPStatusCode: 413, Message: "big"}, apierr.ErrSizeLimit},
		{"api 400 context code", &openai.APIError{HTTPStatusCode: 400, Message: "too long", Code: "context_length_exceeded"}, apierr.ErrSizeLimit},
		{"api 404", &openai.APIError{HTTPStatusCode: 404, Message: "no model"}, apierr.ErrBadRequest},
		{"request error 502", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, apierr.ErrTimeout},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), apierr.ErrTimeout},
		{"untyped context length", errors.New("maximum context length exceeded"), apierr.ErrSizeLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := translate.ClassifyError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		if translate.ClassifyError(nil) != nil {
			t.Error("ClassifyError(nil) should be nil")
		}
	})

	t.Run("unclassified passes through", func(t *testing.T) {
		t.Parallel()
		if got := translate.ClassifyError(plain); got != plain {
			t.Errorf("ClassifyError() = %v, want original error", got)
		}
	})

	t.Run("canceled passes through", func(t *testing.T) {
		t.Parallel()
		if got := translate.ClassifyError(context.Canceled); !errors.Is(got, context.Canceled) {
			t.Errorf("ClassifyError() = %v, want context.Canceled", got)
		}
	})
}
