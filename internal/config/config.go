package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabaseURL string

	// Fireworks AI (matching and analysis)
	FireworksAPIKey string
	FireworksModel  string

	// Perplexity (research)
	PerplexityAPIKey string
	PerplexityModel  string

	// Polymarket Gamma API
	GammaBaseURL string

	// Matching pipeline
	MaxCandidates int
	ChunkSize     int
	ScoreWorkers  int
	ScoreTimeout  time.Duration

	// Reply composition
	CharBudget int

	// HTTP API
	ListenAddr   string
	RateInterval time.Duration // minimum gap between requests per user
	RateBurst    int

	// LLM client-side throttling
	LLMRequestsPerMinute int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		FireworksAPIKey:  getEnv("FIREWORKS_API_KEY", ""),
		FireworksModel:   getEnv("FIREWORKS_MODEL", ""),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", ""),
		GammaBaseURL:     getEnv("GAMMA_BASE_URL", "https://gamma-api.polymarket.com"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8001"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.MaxCandidates, err = getEnvInt("MAX_CANDIDATES", 30)
	if err != nil {
		return nil, err
	}
	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 10)
	if err != nil {
		return nil, err
	}
	cfg.ScoreWorkers, err = getEnvInt("SCORE_WORKERS", 3)
	if err != nil {
		return nil, err
	}
	cfg.CharBudget, err = getEnvInt("CHAR_BUDGET", 280)
	if err != nil {
		return nil, err
	}
	cfg.RateBurst, err = getEnvInt("RATE_BURST", 1)
	if err != nil {
		return nil, err
	}
	cfg.LLMRequestsPerMinute, err = getEnvInt("LLM_REQUESTS_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}

	cfg.ScoreTimeout, err = time.ParseDuration(getEnv("SCORE_TIMEOUT", "45s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCORE_TIMEOUT: %w", err)
	}
	cfg.RateInterval, err = time.ParseDuration(getEnv("RATE_LIMIT_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_INTERVAL: %w", err)
	}

	return cfg, nil
}

// ValidateForMatching checks configuration needed to run the matcher.
func (c *Config) ValidateForMatching() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.FireworksAPIKey == "" {
		return fmt.Errorf("FIREWORKS_API_KEY is required for matching")
	}
	return nil
}

// ValidateForAnalysis checks configuration needed for the full pipeline.
// Perplexity is optional; research degrades to a stub without it.
func (c *Config) ValidateForAnalysis() error {
	return c.ValidateForMatching()
}

// ValidateForSync checks configuration needed for catalog sync.
func (c *Config) ValidateForSync() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.GammaBaseURL == "" {
		return fmt.Errorf("GAMMA_BASE_URL is required for sync")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForAnalysis(); err != nil {
		return err
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required for serve")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
