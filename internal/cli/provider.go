package cli

import (
	"fmt"

	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/translate"
)

// Environment variables holding API keys.
const (
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
)

// providerChoice is a validated provider selection.
type providerChoice struct {
	name  translate.Name
	model string
}

// resolveProvider picks the provider and model: flag, then config, then default.
func resolveProvider(flagName, flagModel string, cfg config.Config) (providerChoice, error) {
	raw := flagName
	if raw == "" {
		raw = cfg.Provider
	}
	name, err := translate.ParseName(raw)
	if err != nil {
		return providerChoice{}, err
	}

	model := flagModel
	if model == "" {
		model = cfg.Model
	}
	return providerChoice{name: name, model: model}, nil
}

// requireAPIKey reads the key for name from the environment.
func requireAPIKey(env *Env, name translate.Name) (string, error) {
	envKey := name.EnvKey()
	key := env.Getenv(envKey)
	if key == "" {
		return "", fmt.Errorf("%w: %s (set it with: export %s=sk-...)", ErrAPIKeyMissing, envKey, envKey)
	}
	return key, nil
}

// newProvider creates the translation provider for choice.
func newProvider(env *Env, choice providerChoice) (translate.Provider, error) {
	key, err := requireAPIKey(env, choice.name)
	if err != nil {
		return nil, err
	}
	return env.ProviderFactory.NewProvider(choice.name, key, choice.model)
}
