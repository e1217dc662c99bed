package config

import "testing"

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when GROQ_API_KEY is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("GCS_BUCKET", "")
	t.Setenv("BATCH_DURATION_SECONDS", "")
	t.Setenv("MAX_BATCH_SIZE_MB", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Environment != "dev" {
		t.Errorf("Expected default environment dev, got %q", cfg.Environment)
	}
	if cfg.GCSBucket != "omi-dev" {
		t.Errorf("Expected dev bucket omi-dev, got %q", cfg.GCSBucket)
	}
	if cfg.BatchDurationSeconds != 120 {
		t.Errorf("Expected default batch duration 120, got %d", cfg.BatchDurationSeconds)
	}
	if cfg.MaxBatchSizeMB != 20 {
		t.Errorf("Expected default size ceiling 20, got %d", cfg.MaxBatchSizeMB)
	}
	if cfg.GroqModel != "whisper-large-v3-turbo" {
		t.Errorf("Expected default model, got %q", cfg.GroqModel)
	}
}

func TestLoadProdBucket(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("GCS_BUCKET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GCSBucket != "omi" {
		t.Errorf("Expected prod bucket omi, got %q", cfg.GCSBucket)
	}
}

func TestLoadExplicitOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("GCS_BUCKET", "custom-bucket")
	t.Setenv("BATCH_DURATION_SECONDS", "30")
	t.Setenv("MAX_BATCH_SIZE_MB", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GCSBucket != "custom-bucket" {
		t.Errorf("Expected explicit bucket, got %q", cfg.GCSBucket)
	}
	if cfg.BatchDurationSeconds != 30 {
		t.Errorf("Expected batch duration 30, got %d", cfg.BatchDurationSeconds)
	}
	if cfg.MaxBatchSizeMB != 5 {
		t.Errorf("Expected size ceiling 5, got %d", cfg.MaxBatchSizeMB)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("BATCH_DURATION_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero batch duration")
	}
}
