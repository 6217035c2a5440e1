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

	// Report execution configuration
	ReportTimeout time.Duration // Default bound for a single report round trip

	// Inactivity sweep configuration
	InactivityDays int // Days without a login before a user is considered stale
	SweepHourUTC   int // Hour in UTC when the nightly sweep runs (0-23)

	// Signup trend configuration
	SignupTrendMonths int // Months of history the periodic signup trend covers

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
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		ReportTimeout:     30 * time.Second,
		InactivityDays:    90,
		SweepHourUTC:      2, // 02:00 UTC default
		SignupTrendMonths: 12,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if timeout := os.Getenv("REPORT_TIMEOUT_SECONDS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil && parsed > 0 {
			config.ReportTimeout = time.Duration(parsed) * time.Second
		}
	}
	if days := os.Getenv("INACTIVITY_DAYS"); days != "" {
		if parsed, err := strconv.Atoi(days); err == nil && parsed > 0 {
			config.InactivityDays = parsed
		}
	}
	if hour := os.Getenv("SWEEP_HOUR_UTC"); hour != "" {
		if parsed, err := strconv.Atoi(hour); err == nil && parsed >= 0 && parsed <= 23 {
			config.SweepHourUTC = parsed
		}
	}
	if months := os.Getenv("SIGNUP_TREND_MONTHS"); months != "" {
		if parsed, err := strconv.Atoi(months); err == nil && parsed > 0 {
			config.SignupTrendMonths = parsed
		}
	}

	// Set default environment if not specified
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
