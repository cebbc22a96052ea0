package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitler/internal/config"
	"github.com/alnah/go-subtitler/internal/lang"
	"github.com/alnah/go-subtitler/internal/translate"
)

// configEnvVars maps each config key to its environment fallback.
var configEnvVars = map[string]string{
	config.KeyOutputDir:  config.EnvOutputDir,
	config.KeyTargetLang: config.EnvTargetLang,
	config.KeyProvider:   config.EnvProvider,
	config.KeyModel:      config.EnvModel,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-subtitler/config.
Settings can also be provided via environment variables.

Supported settings:
  output-dir    Default directory for subtitle files (env: SUBTITLER_OUTPUT_DIR)
  target-lang   Default target language           (env: SUBTITLER_TARGET_LANG)
  provider      Default provider: openai, deepseek (env: SUBTITLER_PROVIDER)
  model         Default model name                (env: SUBTITLER_MODEL)`,
		Example: `  subtitler config set output-dir ~/Videos/subtitles
  subtitler config set target-lang fr
  subtitler config get provider
  subtitler config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated before saving: output-dir is created if missing,
target-lang must be a known language code, provider must be supported.`,
		Example: `  subtitler config set output-dir ~/Videos/subtitles
  subtitler config set provider deepseek`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  subtitler config get target-lang`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows values from the config file and environment variable fallbacks.`,
		Example: `  subtitler config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// normalizeConfigValue validates value for key and returns the form to store.
func normalizeConfigValue(key, value string) (string, error) {
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.ValidOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil
	case config.KeyTargetLang:
		l, err := lang.Parse(value)
		if err != nil {
			return "", err
		}
		if l.IsZero() {
			return "", fmt.Errorf("target-lang cannot be empty: %w", lang.ErrInvalid)
		}
		return l.String(), nil
	case config.KeyProvider:
		name, err := translate.ParseName(value)
		if err != nil {
			return "", err
		}
		return string(name), nil
	default:
		return value, nil
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys)
	}

	value, err := normalizeConfigValue(key, value)
	if err != nil {
		return err
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(configEnvVars[key])
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for _, key := range config.Keys {
		if data[key] != "" {
			continue
		}
		if envVal := env.Getenv(configEnvVars[key]); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	printed := 0
	for _, key := range config.Keys {
		if value := data[key]; value != "" {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
			printed++
		}
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}
