package cli

import (
	"context"
	"strings"
	"sync"

	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/transcribe"
	"github.com/alnah/go-subtitler/internal/translate"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock ProviderFactory
// ---------------------------------------------------------------------------

type providerCall struct {
	Name   translate.Name
	APIKey string
	Model  string
}

type mockProviderFactory struct {
	// CompleteFunc answers every completion; defaults to prefixing the user message.
	CompleteFunc func(ctx context.Context, messages []translate.Message) (string, error)
	NewErr       error

	mu    sync.Mutex
	calls []providerCall
}

func (m *mockProviderFactory) NewProvider(name translate.Name, apiKey, model string) (translate.Provider, error) {
	m.mu.Lock()
	m.calls = append(m.calls, providerCall{Name: name, APIKey: apiKey, Model: model})
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	if m.CompleteFunc != nil {
		return translate.ProviderFunc(m.CompleteFunc), nil
	}
	return translate.ProviderFunc(prefixTranslation), nil
}

func (m *mockProviderFactory) Calls() []providerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]providerCall(nil), m.calls...)
}

// prefixTranslation "translates" by tagging the user message.
func prefixTranslation(_ context.Context, messages []translate.Message) (string, error) {
	last := messages[len(messages)-1]
	return "[fr] " + strings.TrimSpace(last.Content), nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	NewErr      error
	transcriber *mockTranscriber

	mu                  sync.Mutex
	newTranscriberCalls []string // API keys passed
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.newTranscriberCalls = append(m.newTranscriberCalls, apiKey)
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	if m.transcriber != nil {
		return m.transcriber, nil
	}
	return &mockTranscriber{}, nil
}

func (m *mockTranscriberFactory) NewTranscriberCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newTranscriberCalls...)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, a transcribe.Audio, opts transcribe.Options) (string, error)

	mu    sync.Mutex
	names []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, a transcribe.Audio, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	m.names = append(m.names, a.Name)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, a, opts)
	}
	return "Transcribed speech.", nil
}

func (m *mockTranscriber) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}
