package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader reads configuration from files and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configured Viper-backed loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REVLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return &Loader{v: v}
}

// Load resolves and reads the configuration.
//
// A missing config file is not an error; defaults and environment overrides
// still apply. An unreadable or malformed file is.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv("REVLOOP_CONFIG_PATH"); path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("revloop")
		if dir, err := os.UserConfigDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(dir, "revloop"))
		}
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// APIKey resolves the provider API key from the configured environment
// variable, defaulting to the provider's conventional variable name.
func (c *Config) APIKey() string {
	env := c.Provider.APIKeyEnv
	if env == "" {
		switch c.Provider.Name {
		case "openai":
			env = "OPENAI_API_KEY"
		default:
			env = "ANTHROPIC_API_KEY"
		}
	}
	return os.Getenv(env)
}

// Workflow returns the overrides for a workflow name, zero-valued when none
// are configured.
func (c *Config) Workflow(name string) WorkflowConfig {
	return c.Workflows[name]
}

// setDefaults registers every default value so environment overrides bind
// even without a config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.max_tokens", d.Provider.MaxTokens)
	v.SetDefault("provider.api_key_env", d.Provider.APIKeyEnv)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)

	v.SetDefault("engine.pass_ceiling", d.Engine.PassCeiling)
	v.SetDefault("engine.excerpt_length", d.Engine.ExcerptLength)

	v.SetDefault("score.on_miss", d.Score.OnMiss)
	v.SetDefault("score.default", d.Score.Default)
	v.SetDefault("score.revision_threshold", d.Score.RevisionThreshold)

	v.SetDefault("output.truncate_lines", d.Output.TruncateLines)
	v.SetDefault("output.truncate_length", d.Output.TruncateLength)

	for name, wf := range d.Workflows {
		v.SetDefault("workflows."+name+".output_dir", wf.OutputDir)
		for stage, max := range wf.MaxRevisions {
			v.SetDefault(fmt.Sprintf("workflows.%s.max_revisions.%s", name, stage), max)
		}
	}
}
