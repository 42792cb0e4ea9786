// Package config loads SafetyMesh runtime configuration from YAML: model
// endpoint and sampling settings, runner limits and logging. Values merge
// over defaults, so a config file only states what differs.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML support for strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ModelConfig selects and parameterizes the model backend.
type ModelConfig struct {
	// Provider is one of "openai", "anthropic" or "mock".
	Provider string `yaml:"provider"`
	// Name is the provider model identifier.
	Name string `yaml:"name"`
	// BaseURL points the OpenAI provider at a compatible endpoint such as
	// an NVIDIA NIM deployment. Ignored by other providers.
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key. Empty
	// means the provider SDK's conventional variable.
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// APIKey resolves the configured API key from the environment. Empty when
// APIKeyEnv is unset or the variable is absent.
func (m ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

// RunnerConfig carries the execution limits and timeouts.
type RunnerConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	MaxHandoffs   int      `yaml:"max_handoffs"`
	MaxRetries    int      `yaml:"max_retries"`
	ModelTimeout  Duration `yaml:"model_timeout"`
	ToolTimeout   Duration `yaml:"tool_timeout"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration document.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Runner  RunnerConfig  `yaml:"runner"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Runner: RunnerConfig{
			MaxIterations: 10,
			MaxHandoffs:   5,
			MaxRetries:    2,
			ModelTimeout:  Duration(60 * time.Second),
			ToolTimeout:   Duration(15 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file and merges it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes and merges them over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency and rejects values the runtime
// cannot honor.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("config: unknown model provider %q", c.Model.Provider)
	}
	if c.Runner.MaxIterations < 1 {
		return fmt.Errorf("config: runner.max_iterations must be >= 1, got %d", c.Runner.MaxIterations)
	}
	if c.Runner.MaxHandoffs < 0 {
		return fmt.Errorf("config: runner.max_handoffs must be >= 0, got %d", c.Runner.MaxHandoffs)
	}
	if c.Runner.MaxRetries < 0 {
		return fmt.Errorf("config: runner.max_retries must be >= 0, got %d", c.Runner.MaxRetries)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}
