package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperflow/internal/config"
)

func TestDefaultsAreSane(t *testing.T) {
	cfg := config.Default()
	if cfg.Transcription.ChunkSeconds != 300 {
		t.Fatalf("chunk seconds default = %d", cfg.Transcription.ChunkSeconds)
	}
	if cfg.Transcription.MaxWorkers != 20 {
		t.Fatalf("transcription workers default = %d", cfg.Transcription.MaxWorkers)
	}
	if cfg.Transcription.PacingSeconds != 4 {
		t.Fatalf("pacing default = %d", cfg.Transcription.PacingSeconds)
	}
	if cfg.Translation.TokenBudget != 1000 {
		t.Fatalf("token budget default = %d", cfg.Translation.TokenBudget)
	}
	if cfg.Translation.MaxWorkers != 10 {
		t.Fatalf("translation workers default = %d", cfg.Translation.MaxWorkers)
	}
	if cfg.Quota.FreeLimit != 3 {
		t.Fatalf("free limit default = %d", cfg.Quota.FreeLimit)
	}
}

func TestValidateRequiresTranscriptionKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error without api key")
	}
	if !strings.Contains(err.Error(), "transcription.api_key") {
		t.Fatalf("error should name the missing key: %v", err)
	}

	cfg.Transcription.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed with key set: %v", err)
	}
}

func TestValidateStorageOnlyWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "key"

	cfg.Storage.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled storage without settings")
	}

	cfg.Storage.BaseURL = "https://project.supabase.co"
	cfg.Storage.APIKey = "service-key"
	cfg.Storage.Bucket = "subtitles"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed with storage configured: %v", err)
	}
}

func TestLoadReadsTOMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
work_dir = "` + dir + `/work"
output_dir = "` + dir + `/output"
log_dir = "` + dir + `/logs"

[transcription]
api_key = "groq-key"
max_workers = 8

[translation]
api_key = "openai-key"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolvedPath, created, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if created {
		t.Fatal("existing file reported as created")
	}
	if resolvedPath != path {
		t.Fatalf("resolved path = %q, want %q", resolvedPath, path)
	}
	if cfg.Transcription.APIKey != "groq-key" {
		t.Fatalf("api key = %q", cfg.Transcription.APIKey)
	}
	if cfg.Transcription.MaxWorkers != 8 {
		t.Fatalf("max workers override lost: %d", cfg.Transcription.MaxWorkers)
	}
	// Unset fields keep defaults.
	if cfg.Transcription.ChunkSeconds != 300 {
		t.Fatalf("chunk seconds default lost: %d", cfg.Transcription.ChunkSeconds)
	}
	if cfg.Translation.Model != "gpt-3.5-turbo" {
		t.Fatalf("translation model default lost: %q", cfg.Translation.Model)
	}
}

func TestLoadEnvFallbackForAPIKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
work_dir = "` + dir + `/work"
output_dir = "` + dir + `/output"
log_dir = "` + dir + `/logs"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WHISPERFLOW_TRANSCRIPTION_API_KEY", "env-groq")
	t.Setenv("WHISPERFLOW_TRANSLATION_API_KEY", "env-openai")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Transcription.APIKey != "env-groq" || cfg.Translation.APIKey != "env-openai" {
		t.Fatalf("env fallback not applied: %q %q", cfg.Transcription.APIKey, cfg.Translation.APIKey)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatalf("sample config missing transcription section:\n%s", data)
	}
}
