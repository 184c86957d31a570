package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"harvester/models"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Conversion rate regimes (sand per melange)
	SandPerMelange      models.Rate // normal regime
	BonusSandPerMelange models.Rate // discounted regime while a bonus event is active

	// Economy defaults
	DefaultGuildCutPercent int64

	// Session acquisition retry (connection pool exhaustion only,
	// never business-logic retries)
	SessionMaxRetries   int
	SessionRetryBackoff time.Duration

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Economy defaults
		DefaultGuildCutPercent: 10,

		// Retry defaults
		SessionMaxRetries:   3,
		SessionRetryBackoff: 200 * time.Millisecond,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	config.SandPerMelange, err = parseRateEnv("SAND_PER_MELANGE", "50")
	if err != nil {
		return nil, err
	}
	config.BonusSandPerMelange, err = parseRateEnv("BONUS_SAND_PER_MELANGE", "37.5")
	if err != nil {
		return nil, err
	}

	// Override defaults if environment variables are set
	if cut := os.Getenv("DEFAULT_GUILD_CUT_PERCENT"); cut != "" {
		if parsedCut, err := strconv.ParseInt(cut, 10, 64); err == nil && parsedCut >= 0 && parsedCut <= 100 {
			config.DefaultGuildCutPercent = parsedCut
		}
	}
	if retries := os.Getenv("SESSION_MAX_RETRIES"); retries != "" {
		if parsedRetries, err := strconv.Atoi(retries); err == nil && parsedRetries >= 0 {
			config.SessionMaxRetries = parsedRetries
		}
	}
	if backoff := os.Getenv("SESSION_RETRY_BACKOFF_MS"); backoff != "" {
		if parsedBackoff, err := strconv.Atoi(backoff); err == nil && parsedBackoff > 0 {
			config.SessionRetryBackoff = time.Duration(parsedBackoff) * time.Millisecond
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func parseRateEnv(key, fallback string) (models.Rate, error) {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	rate, err := models.ParseRate(value)
	if err != nil {
		return models.Rate{}, fmt.Errorf("%s: %w", key, err)
	}
	return rate, nil
}
