package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv           string
	Port             string
	RedisURL         string
	ConnectionsKey   string
	ModelEndpoint    string
	ModelID          string
	ModelMaxTokens   int
	ModelTemperature float64
	LogLevel         string
	LogFormat        string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		RedisURL:       getEnv("REDIS_URL", ""),
		ConnectionsKey: getEnv("CONNECTIONS_KEY", "snipcast:connections"),
		ModelEndpoint:  getEnv("MODEL_ENDPOINT", ""),
		ModelID:        getEnv("MODEL_ID", "amazon.nova-pro-v1:0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	maxTokens, err := strconv.Atoi(getEnv("MODEL_MAX_TOKENS", "1024"))
	if err != nil {
		return nil, fmt.Errorf("MODEL_MAX_TOKENS must be an integer: %w", err)
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("MODEL_MAX_TOKENS must be positive, got %d", maxTokens)
	}
	cfg.ModelMaxTokens = maxTokens

	temperature, err := strconv.ParseFloat(getEnv("MODEL_TEMPERATURE", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("MODEL_TEMPERATURE must be a float: %w", err)
	}
	if temperature < 0 || temperature > 1 {
		return nil, fmt.Errorf("MODEL_TEMPERATURE must be between 0.0 and 1.0, got %g", temperature)
	}
	cfg.ModelTemperature = temperature

	if cfg.ConnectionsKey == "" {
		return nil, fmt.Errorf("CONNECTIONS_KEY cannot be empty")
	}

	// MODEL_ENDPOINT and MODEL_ID must be set together; evaluation is
	// disabled entirely when the endpoint is absent.
	if cfg.ModelEndpoint != "" && cfg.ModelID == "" {
		return nil, fmt.Errorf("MODEL_ID is required when MODEL_ENDPOINT is set")
	}

	return cfg, nil
}

// EvaluationEnabled reports whether the model evaluation path is configured.
func (c *Config) EvaluationEnabled() bool {
	return c.ModelEndpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
