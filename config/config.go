package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	Port string

	// Draw engine configuration
	ClaimGracePeriod   time.Duration // how long winners have to redeem a claim
	ClaimSweepInterval time.Duration // how often overdue pending claims are expired

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
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
		Port:        os.Getenv("PORT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Environment: os.Getenv("ENVIRONMENT"),

		// Engine settings with defaults
		ClaimGracePeriod:   30 * 24 * time.Hour,
		ClaimSweepInterval: time.Hour,
	}

	// Override defaults if environment variables are set
	if days := os.Getenv("CLAIM_GRACE_PERIOD_DAYS"); days != "" {
		if parsedDays, err := strconv.Atoi(days); err == nil && parsedDays > 0 {
			config.ClaimGracePeriod = time.Duration(parsedDays) * 24 * time.Hour
		}
	}
	if interval := os.Getenv("CLAIM_SWEEP_INTERVAL"); interval != "" {
		if parsedInterval, err := time.ParseDuration(interval); err == nil && parsedInterval > 0 {
			config.ClaimSweepInterval = parsedInterval
		}
	}

	// Set defaults if not specified
	if config.Port == "" {
		config.Port = "8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
