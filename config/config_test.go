package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 10, cfg.Runner.MaxIterations)
	assert.Equal(t, 5, cfg.Runner.MaxHandoffs)
	assert.Equal(t, 60*time.Second, cfg.Runner.ModelTimeout.Std())
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
model:
  provider: anthropic
  name: claude-3-5-sonnet-20241022
  temperature: 0.2
runner:
  max_handoffs: 3
  model_timeout: 30s
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model.Name)
	assert.Equal(t, 0.2, cfg.Model.Temperature)
	assert.Equal(t, 3, cfg.Runner.MaxHandoffs)
	assert.Equal(t, 30*time.Second, cfg.Runner.ModelTimeout.Std())

	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.Runner.MaxIterations)
	assert.Equal(t, 15*time.Second, cfg.Runner.ToolTimeout.Std())
}

func TestParse_RejectsUnknownProvider(t *testing.T) {
	_, err := Parse([]byte("model:\n  provider: cohere\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func TestParse_RejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("runner:\n  model_timeout: fast\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestParse_RejectsBadLimits(t *testing.T) {
	_, err := Parse([]byte("runner:\n  max_iterations: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_iterations")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LoggingConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LoggingConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LoggingConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LoggingConfig{Level: "error"}.SlogLevel())
}
