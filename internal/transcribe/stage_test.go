package transcribe_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperflow/internal/testsupport"
	"whisperflow/internal/transcribe"
)

func TestTranscriberExecuteWritesMergedOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "lecture.mp4")
	if err := os.WriteFile(source, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	item, err := store.NewJob(ctx, source, "", "lecture", "", "user@example.com")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	workDir := filepath.Join(cfg.Paths.WorkDir, "job-stage")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for i := 0; i < 3; i++ {
		path := filepath.Join(workDir, fmt.Sprintf("part_%d.wav", i))
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
	}
	item.WorkDir = workDir
	item.ChunkCount = 3

	transcriber := transcribe.NewTranscriber(cfg, store, nil)
	transcriber.WithDispatcher(transcribe.NewDispatcher(&slowFakeClient{}, 300, 3, 0, nil))

	if err := transcriber.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.SubtitleFile == "" || item.TranscriptFile == "" {
		t.Fatalf("output paths not recorded: %#v", item)
	}
	srt, err := os.ReadFile(item.SubtitleFile)
	if err != nil {
		t.Fatalf("read subtitle: %v", err)
	}
	content := string(srt)
	for i := 0; i < 3; i++ {
		if !strings.Contains(content, fmt.Sprintf("chunk %d speech", i)) {
			t.Fatalf("merged subtitle missing chunk %d:\n%s", i, content)
		}
	}
	// Global renumbering across the three single-cue fragments.
	if !strings.HasPrefix(content, "1\n") || !strings.Contains(content, "\n\n3\n") {
		t.Fatalf("cues not renumbered globally:\n%s", content)
	}

	// One completed transcription counted against the submitter.
	count, err := store.UsageCount(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("UsageCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected usage count 1, got %d", count)
	}

	txt, err := os.ReadFile(item.TranscriptFile)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(txt), "00:05:00: chunk 1 speech") {
		t.Fatalf("transcript missing offset line:\n%s", txt)
	}
}

func TestTranscriberExecuteFailsWithoutChunks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "/tmp/x.mp4", "", "x", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	item.WorkDir = t.TempDir()

	transcriber := transcribe.NewTranscriber(cfg, store, nil)
	if err := transcriber.Execute(ctx, item); err == nil {
		t.Fatal("expected failure for empty work dir")
	}
}

func TestTranscriberFailedChunkLeavesNoOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "lecture.mp4")
	item, err := store.NewJob(ctx, source, "", "lecture", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	workDir := t.TempDir()
	for i := 0; i < 2; i++ {
		path := filepath.Join(workDir, fmt.Sprintf("part_%d.wav", i))
		if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
	}
	item.WorkDir = workDir

	client := &slowFakeClient{fail: map[int]error{1: fmt.Errorf("boom")}}
	transcriber := transcribe.NewTranscriber(cfg, store, nil)
	transcriber.WithDispatcher(transcribe.NewDispatcher(client, 300, 2, 0, nil))

	if err := transcriber.Execute(ctx, item); err == nil {
		t.Fatal("expected failure when a chunk fails")
	}
	srtPath := filepath.Join(cfg.Paths.OutputDir, "lecture.srt")
	if _, err := os.Stat(srtPath); !os.IsNotExist(err) {
		t.Fatal("partial subtitle file written despite failure")
	}
}
