package media_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperflow/internal/media"
	"whisperflow/internal/services"
	"whisperflow/internal/testsupport"
)

func containsArg(args []string, value string) bool {
	for _, arg := range args {
		if arg == value {
			return true
		}
	}
	return false
}

// fakeFFmpeg writes the output files a real ffmpeg invocation would produce.
func fakeFFmpeg(t *testing.T, chunkCount int, calls *[][]string) media.CommandRunner {
	return func(ctx context.Context, name string, args ...string) error {
		if calls != nil {
			*calls = append(*calls, append([]string{name}, args...))
		}
		if containsArg(args, "segment") {
			pattern := args[len(args)-1]
			dir := filepath.Dir(pattern)
			for i := 0; i < chunkCount; i++ {
				path := filepath.Join(dir, fmt.Sprintf("part_%d.wav", i))
				if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
					t.Fatalf("write chunk: %v", err)
				}
			}
			return nil
		}
		// Normalize call: last arg is the output file.
		if err := os.WriteFile(args[len(args)-1], []byte("normalized"), 0o644); err != nil {
			t.Fatalf("write normalized: %v", err)
		}
		return nil
	}
}

func TestSegmenterExecuteSplitsIntoChunks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(source, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	item, err := store.NewJob(ctx, source, "", "talk", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	var calls [][]string
	segmenter := media.NewSegmenter(cfg, store, nil)
	segmenter.WithCommandRunner(fakeFFmpeg(t, 4, &calls))
	segmenter.WithOutputRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		return "960.0\n", nil
	})

	if err := segmenter.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := segmenter.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.ChunkCount != 4 {
		t.Fatalf("expected 4 chunks, got %d", item.ChunkCount)
	}
	if item.DurationSeconds != 960 {
		t.Fatalf("expected probed duration 960, got %v", item.DurationSeconds)
	}
	if item.WorkDir == "" {
		t.Fatal("expected work dir to be recorded")
	}
	chunks, err := media.ListChunks(item.WorkDir)
	if err != nil || len(chunks) != 4 {
		t.Fatalf("expected 4 chunk files, got %d (err %v)", len(chunks), err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected normalize + split calls, got %d", len(calls))
	}
	normalize := calls[0]
	if !containsArg(normalize, "16000") || !containsArg(normalize, "0:a") {
		t.Fatalf("normalize call missing expected args: %v", normalize)
	}
	split := calls[1]
	if !containsArg(split, "segment") || !containsArg(split, "300") || !containsArg(split, "copy") {
		t.Fatalf("split call missing expected args: %v", split)
	}
}

func TestSegmenterExecuteClearsStaleChunks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(source, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	item, err := store.NewJob(ctx, source, "", "talk", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	// Seed a stale chunk from a previous run with a high index.
	workDir := filepath.Join(cfg.Paths.WorkDir, fmt.Sprintf("job-%d", item.ID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "part_9.wav"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale chunk: %v", err)
	}

	segmenter := media.NewSegmenter(cfg, store, nil)
	segmenter.WithCommandRunner(fakeFFmpeg(t, 2, nil))
	segmenter.WithOutputRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("probe unavailable")
	})

	if err := segmenter.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if item.ChunkCount != 2 {
		t.Fatalf("stale chunk leaked into count: %d", item.ChunkCount)
	}
	if _, err := os.Stat(filepath.Join(workDir, "part_9.wav")); !os.IsNotExist(err) {
		t.Fatal("stale chunk survived segmentation")
	}
}

func TestSegmenterExecuteRejectsURLOnlySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "", "https://example.com/watch?v=abc", "remote", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	segmenter := media.NewSegmenter(cfg, store, nil)
	segmenter.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		t.Fatal("ffmpeg should not run for URL-only sources")
		return nil
	})

	err = segmenter.Execute(ctx, item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "notebook") {
		t.Fatalf("error should point at the notebook backend: %v", err)
	}
}

func TestSegmenterExecuteWrapsFFmpegFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(source, []byte("media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	item, err := store.NewJob(ctx, source, "", "talk", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	segmenter := media.NewSegmenter(cfg, store, nil)
	segmenter.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("boom")
	})
	segmenter.WithOutputRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("probe unavailable")
	})

	err = segmenter.Execute(ctx, item)
	if !errors.Is(err, services.ErrMediaProcessing) {
		t.Fatalf("expected media processing error, got %v", err)
	}
}
