// Package config loads service configuration from the environment. A .env
// file is honored when present so local development does not need exported
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider names for the speech service backend.
const (
	ProviderAzure  = "azure"
	ProviderGoogle = "google"
	ProviderMock   = "mock"
)

// Config holds the full service configuration.
type Config struct {
	Port     string
	Provider string

	AzureSpeechKey    string
	AzureSpeechRegion string
	Language          string

	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	UpstreamTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults and
// validating the result.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments export variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Provider:          getEnv("SPEECH_PROVIDER", ProviderAzure),
		AzureSpeechKey:    os.Getenv("AZURE_SPEECH_KEY"),
		AzureSpeechRegion: getEnv("AZURE_SPEECH_REGION", "eastus"),
		Language:          getEnv("SPEECH_LANGUAGE", "en-US"),
	}

	var err error
	if cfg.RateLimitMaxRequests, err = getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10); err != nil {
		return nil, err
	}

	windowSeconds, err := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second

	timeoutSeconds, err := getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = time.Duration(timeoutSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.AzureSpeechKey == "" {
			return fmt.Errorf("AZURE_SPEECH_KEY is required for the azure provider")
		}
		if c.AzureSpeechRegion == "" {
			return fmt.Errorf("AZURE_SPEECH_REGION is required for the azure provider")
		}
	case ProviderGoogle, ProviderMock:
	default:
		return fmt.Errorf("unknown speech provider %q", c.Provider)
	}

	if c.RateLimitMaxRequests <= 0 {
		return fmt.Errorf("rate limit max requests must be positive, got %d", c.RateLimitMaxRequests)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimitWindow)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
