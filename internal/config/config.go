// Package config loads client settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding variable is unset.
const (
	DefaultAPIURL  = "https://shmr-finance.ru/api/v1"
	DefaultDBPath  = "finsync.db"
	DefaultTimeout = 4 * time.Second
)

// Config carries everything the client needs to run.
type Config struct {
	// APIURL is the base URL of the finance API.
	APIURL string
	// Token is the bearer token sent with every request.
	Token string
	// DBPath is the SQLite file backing the local store and backup queue.
	DBPath string
	// Timeout bounds every remote request.
	Timeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present and ignored otherwise.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:  envOr("FINSYNC_API_URL", DefaultAPIURL),
		Token:   os.Getenv("FINSYNC_TOKEN"),
		DBPath:  envOr("FINSYNC_DB", DefaultDBPath),
		Timeout: DefaultTimeout,
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("FINSYNC_TOKEN is not set")
	}

	if raw := os.Getenv("FINSYNC_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FINSYNC_TIMEOUT %q: %w", raw, err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
