package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Skufu/ousia/internal/engine"
)

type Config struct {
	Port             string
	GinMode          string
	DatabaseURL      string
	EnableDB         bool
	LogLevel         string
	LogFormat        string
	DefaultMode      engine.Mode
	MaxBatchSize     int
	BatchConcurrency int
}

// Load reads the environment, after merging a local .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	mode, err := engine.ParseMode(getEnv("OUSIA_MODE", string(engine.ModeClinical)))
	if err != nil {
		return nil, fmt.Errorf("OUSIA_MODE: %w", err)
	}
	cfg.DefaultMode = mode

	if cfg.MaxBatchSize, err = positiveInt("MAX_BATCH_SIZE", 32); err != nil {
		return nil, err
	}
	if cfg.BatchConcurrency, err = positiveInt("BATCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
