package cli

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/tts"
)

// validConfigKeys lists all supported configuration keys.
var validConfigKeys = []string{
	config.KeyOutputDir,
	config.KeyVoicesFile,
	config.KeyUploadCapMB,
	config.KeyOpenAIKey,
	config.KeyDeepLKey,
}

// configKeyEnvVars maps configuration keys to their environment variable
// fallbacks, for "config get" and "config list".
var configKeyEnvVars = map[string]string{
	config.KeyOutputDir:   config.EnvOutputDir,
	config.KeyVoicesFile:  config.EnvVoicesFile,
	config.KeyUploadCapMB: config.EnvUploadCapMB,
	config.KeyOpenAIKey:   config.EnvOpenAIKey,
	config.KeyDeepLKey:    config.EnvDeepLKey,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/dubline/config.
Settings can also be overridden via environment variables.

Supported settings:
  output-dir      Default directory for outputs (env: DUBLINE_OUTPUT_DIR)
  voices-file     TOML file overriding speech voice preferences (env: DUBLINE_VOICES_FILE)
  upload-cap-mb   Transcription upload size cap in MB (env: DUBLINE_UPLOAD_CAP_MB)
  openai-api-key  OpenAI API key (env: OPENAI_API_KEY)
  deepl-api-key   DeepL API key (env: DEEPL_API_KEY)`,
		Example: `  dubline config set output-dir ~/Videos/dubs
  dubline config get output-dir
  dubline config list`,
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
		Example: `  dubline config set output-dir ~/Videos/dubs
  dubline config set upload-cap-mb 24`,
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
		Example: `  dubline config get output-dir`,
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

Shows both values from the config file and environment variable overrides.`,
		Example: `  dubline config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	// Key-specific validation.
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.ValidOutputDir(expanded); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
		// Store the expanded path for consistency.
		value = expanded
	case config.KeyVoicesFile:
		expanded := config.ExpandPath(value)
		if _, err := tts.LoadVoiceTable(expanded); err != nil {
			return fmt.Errorf("invalid voices-file: %w", err)
		}
		value = expanded
	case config.KeyUploadCapMB:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid upload-cap-mb %q: must be a positive integer", value)
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Check environment variable fallback.
	if value == "" {
		value = env.Getenv(configKeyEnvVars[key])
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

	// Add environment variable values for completeness.
	for key, envVar := range configKeyEnvVars {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(envVar); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range validConfigKeys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s = %s\n", key, data[key])
	}
	return nil
}

// isValidConfigKey reports whether key is a supported configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(validConfigKeys, key)
}
