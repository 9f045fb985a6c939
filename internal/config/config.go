// Package config provides configuration loading for the ingestion
// engine: environment variables for engine settings and a yaml run
// profile describing which operations to execute.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds engine configuration. Values come from NBA_INGEST_*
// environment variables with defaults suitable for a local run.
type Config struct {
	// Store settings
	StoreDriver string // "sqlite" or "postgres"
	StorePath   string // sqlite file path
	StoreDSN    string // postgres connection string

	// Provider settings
	BaseURL string
	Timeout time.Duration

	// Engine settings
	PaceInterval time.Duration
	ErrorBudget  int
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		StoreDriver:  getEnv("NBA_INGEST_STORE_DRIVER", "sqlite"),
		StorePath:    getEnv("NBA_INGEST_STORE_PATH", "data/raw/nba.sqlite"),
		StoreDSN:     getEnv("NBA_INGEST_STORE_DSN", ""),
		BaseURL:      getEnv("NBA_INGEST_BASE_URL", ""),
		Timeout:      time.Duration(getEnvInt("NBA_INGEST_TIMEOUT_SECS", 30)) * time.Second,
		PaceInterval: time.Duration(getEnvInt("NBA_INGEST_PACE_INTERVAL_MS", 1000)) * time.Millisecond,
		ErrorBudget:  getEnvInt("NBA_INGEST_ERROR_BUDGET", 5),
	}
}

// Validate rejects invalid configuration before any remote call is made.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "sqlite":
		if c.StorePath == "" {
			return fmt.Errorf("config: store path is required for sqlite")
		}
	case "postgres":
		if c.StoreDSN == "" {
			return fmt.Errorf("config: store dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.StoreDriver)
	}
	if c.ErrorBudget < 1 {
		return fmt.Errorf("config: error budget must be at least 1, got %d", c.ErrorBudget)
	}
	if c.PaceInterval < 0 {
		return fmt.Errorf("config: pace interval must not be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
