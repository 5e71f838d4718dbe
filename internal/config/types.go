// Package config provides configuration loading and management for revloop.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The defaults work out of the box; a config
// file only needs to name what it changes.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [ProviderConfig] selects and parameterizes the model provider
//   - [WorkflowConfig] carries per-workflow overrides
//
// Configuration priority (highest to lowest):
//  1. Environment variables (REVLOOP_ prefix)
//  2. Config file specified by REVLOOP_CONFIG_PATH
//  3. User config directory (e.g., ~/.config/revloop/config.yaml)
//  4. ./revloop.yaml in the working directory
//  5. [DefaultConfig] defaults
package config

// Config represents the root configuration structure.
type Config struct {
	// Provider selects and parameterizes the hosted model provider.
	Provider ProviderConfig `mapstructure:"provider"`

	// Engine contains run-loop settings shared by all workflows.
	Engine EngineConfig `mapstructure:"engine"`

	// Score controls numeric score extraction from assessment output.
	Score ScoreConfig `mapstructure:"score"`

	// Output contains terminal output formatting configuration.
	Output OutputConfig `mapstructure:"output"`

	// Workflows maps workflow names ("translate", "design") to their
	// overrides.
	Workflows map[string]WorkflowConfig `mapstructure:"workflows"`
}

// ProviderConfig selects the backing LLM provider.
type ProviderConfig struct {
	// Name is "anthropic" or "openai".
	Name string `mapstructure:"name"`

	// Model is the provider model identifier.
	Model string `mapstructure:"model"`

	// MaxTokens is the completion budget per request.
	MaxTokens int `mapstructure:"max_tokens"`

	// APIKeyEnv names the environment variable holding the API key.
	// Defaults to ANTHROPIC_API_KEY or OPENAI_API_KEY per provider.
	APIKeyEnv string `mapstructure:"api_key_env"`

	// BaseURL overrides the provider endpoint (proxies, gateways).
	BaseURL string `mapstructure:"base_url"`
}

// EngineConfig contains run-loop settings.
type EngineConfig struct {
	// PassCeiling is the hard safety ceiling on loop passes, independent of
	// per-stage revision maxima.
	PassCeiling int `mapstructure:"pass_ceiling"`

	// ExcerptLength bounds artifact excerpts in supervisor prompts.
	ExcerptLength int `mapstructure:"excerpt_length"`
}

// ScoreConfig controls score extraction behavior.
//
// The original tooling shipped two contradictory policies (fail on a missing
// score vs. silently assuming 5.0); here the choice is explicit
// configuration, strict by default.
type ScoreConfig struct {
	// OnMiss is "fail" (default) or "assume".
	OnMiss string `mapstructure:"on_miss"`

	// Default is the score substituted under "assume".
	Default float64 `mapstructure:"default"`

	// RevisionThreshold is the readability score below which a translation
	// is revised.
	RevisionThreshold float64 `mapstructure:"revision_threshold"`
}

// OutputConfig contains terminal output formatting configuration.
type OutputConfig struct {
	// TruncateLines is the maximum number of artifact preview lines shown.
	TruncateLines int `mapstructure:"truncate_lines"`

	// TruncateLength is the maximum length of each displayed line.
	TruncateLength int `mapstructure:"truncate_length"`
}

// WorkflowConfig carries per-workflow overrides.
type WorkflowConfig struct {
	// MaxRevisions overrides the per-stage revision maxima. Keys are stage
	// names.
	MaxRevisions map[string]int `mapstructure:"max_revisions"`

	// OutputDir is where run artifacts and reports are written.
	OutputDir string `mapstructure:"output_dir"`

	// Manifest is an optional stage-manifest CSV path that replaces the
	// built-in stage set.
	Manifest string `mapstructure:"manifest"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:      "anthropic",
			Model:     "claude-sonnet-4-5-20250901",
			MaxTokens: 4096,
		},
		Engine: EngineConfig{
			PassCeiling:   50,
			ExcerptLength: 500,
		},
		Score: ScoreConfig{
			OnMiss:            "fail",
			Default:           5.0,
			RevisionThreshold: 7.0,
		},
		Output: OutputConfig{
			TruncateLines:  20,
			TruncateLength: 100,
		},
		Workflows: map[string]WorkflowConfig{
			"translate": {
				MaxRevisions: map[string]int{"revise": 3},
				OutputDir:    "translations",
			},
			"design": {
				MaxRevisions: map[string]int{
					"mechanic_design": 3,
					"playtest":        3,
					"fact_check":      2,
				},
				OutputDir: "game_designs",
			},
		},
	}
}
