package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	Port string
	Env  string

	// Postgres connection string for the statement history store.
	DatabaseURL string

	// GCS bucket holding generated statement documents.
	DocumentBucket string

	// Secret used to verify bearer tokens issued by the auth service.
	JWTSecret string
}

// Load reads configuration from the environment, after loading .env when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8084"),
		Env:            getEnv("ENV", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DocumentBucket: getEnv("DOCUMENT_BUCKET", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures required configuration is present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DocumentBucket == "" {
		return fmt.Errorf("DOCUMENT_BUCKET is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
