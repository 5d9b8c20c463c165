package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "snipcast:connections", cfg.ConnectionsKey)
	assert.Equal(t, "amazon.nova-pro-v1:0", cfg.ModelID)
	assert.Equal(t, 1024, cfg.ModelMaxTokens)
	assert.Equal(t, 0.5, cfg.ModelTemperature)
	assert.False(t, cfg.EvaluationEnabled())
}

func TestLoad_EvaluationEnabled(t *testing.T) {
	t.Setenv("MODEL_ENDPOINT", "https://bedrock.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.EvaluationEnabled())
}

func TestLoad_InvalidMaxTokens(t *testing.T) {
	t.Setenv("MODEL_MAX_TOKENS", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_MAX_TOKENS")
}

func TestLoad_NegativeMaxTokens(t *testing.T) {
	t.Setenv("MODEL_MAX_TOKENS", "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestLoad_TemperatureOutOfRange(t *testing.T) {
	t.Setenv("MODEL_TEMPERATURE", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TEMPERATURE")
}
