// Package testsupport holds shared helpers for package tests.
package testsupport

import (
	"testing"

	"whisperflow/internal/config"
	"whisperflow/internal/queue"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory, with placeholder credentials so stages construct cleanly.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.WorkDir = base + "/work"
	cfg.Paths.OutputDir = base + "/output"
	cfg.Paths.LogDir = base + "/logs"
	cfg.Transcription.APIKey = "test-transcription-key"
	cfg.Translation.APIKey = "test-translation-key"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return &cfg
}

// MustOpenStore opens the queue database under the test config and closes it
// with the test.
func MustOpenStore(t *testing.T, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("store.Close: %v", err)
		}
	})
	return store
}
