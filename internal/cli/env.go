package cli

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/transcribe"
	"github.com/alnah/go-subtitler/internal/translate"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	ProviderFactory    ProviderFactory
	TranscriberFactory TranscriberFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ProviderFactory creates translation providers.
type ProviderFactory interface {
	// NewProvider creates a provider; an empty model keeps the provider default.
	NewProvider(name translate.Name, apiKey, model string) (translate.Provider, error)
}

// TranscriberFactory creates transcribers for the audio fallback.
type TranscriberFactory interface {
	NewTranscriber(apiKey string) (transcribe.Transcriber, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithProviderFactory sets the translation provider factory.
func WithProviderFactory(f ProviderFactory) EnvOption {
	return func(e *Env) {
		e.ProviderFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:              os.Stdin,
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		Now:                time.Now,
		ConfigLoader:       &defaultConfigLoader{},
		ProviderFactory:    &defaultProviderFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// newLogger builds the structured logger for a command run.
// Logs go to stderr next to the progress lines; verbose enables debug output.
func (e *Env) newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(e.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultProviderFactory implements ProviderFactory over go-openai.
type defaultProviderFactory struct{}

func (defaultProviderFactory) NewProvider(name translate.Name, apiKey, model string) (translate.Provider, error) {
	var opts []translate.Option
	if model != "" {
		opts = append(opts, translate.WithModel(model))
	}
	p, err := translate.New(name, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// defaultTranscriberFactory implements TranscriberFactory using OpenAI.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string) (transcribe.Transcriber, error) {
	t, err := transcribe.NewOpenAITranscriber(apiKey)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ ProviderFactory    = (*defaultProviderFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
)
