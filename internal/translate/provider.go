// Package translate sends transcript chunks to chat-completion providers and
// builds the prompts that keep their translations consistent across a video.
package translate

import (
	"context"
	"fmt"
	"strings"
)

// Role tags a chat message.
type Role string

// Chat roles understood by the providers.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// Provider completes a chat conversation and returns the assistant text.
// Implementations classify transport failures into apierr sentinels and
// make a single attempt; retry policy belongs to the caller.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, messages []Message) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// Name identifies a supported provider.
type Name string

// Supported providers.
const (
	OpenAI   Name = "openai"
	DeepSeek Name = "deepseek"
)

// ParseName validates a provider name. Empty defaults to OpenAI.
func ParseName(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case "":
		return OpenAI, nil
	case OpenAI, DeepSeek:
		return n, nil
	default:
		return "", fmt.Errorf("%q (expected %s or %s): %w", s, OpenAI, DeepSeek, ErrUnknownProvider)
	}
}

// EnvKey returns the environment variable holding the provider's API key.
func (n Name) EnvKey() string {
	if n == DeepSeek {
		return "DEEPSEEK_API_KEY"
	}
	return "OPENAI_API_KEY"
}
