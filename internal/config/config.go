package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port        string
	Environment string

	GroqAPIKey  string
	GroqAPIBase string
	GroqModel   string

	GCSBucket string

	AudioQueueDir        string
	BatchDurationSeconds int
	MaxBatchSizeMB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqAPIBase: getEnv("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "whisper-large-v3-turbo"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		AudioQueueDir:        getEnv("AUDIO_QUEUE_DIR", filepath.Join("data", "audio_queue")),
		BatchDurationSeconds: getEnvInt("BATCH_DURATION_SECONDS", 120),
		MaxBatchSizeMB:       getEnvInt("MAX_BATCH_SIZE_MB", 20),
	}

	// Validate required environment variables
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	// Bucket defaults per environment when not set explicitly
	if cfg.GCSBucket == "" {
		if cfg.Environment == "dev" || cfg.Environment == "development" {
			cfg.GCSBucket = "omi-dev"
		} else {
			cfg.GCSBucket = "omi"
		}
	}

	if cfg.BatchDurationSeconds <= 0 {
		return nil, fmt.Errorf("BATCH_DURATION_SECONDS must be positive")
	}
	if cfg.MaxBatchSizeMB <= 0 {
		return nil, fmt.Errorf("MAX_BATCH_SIZE_MB must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
