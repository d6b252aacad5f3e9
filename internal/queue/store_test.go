package queue_test

import (
	"context"
	"testing"

	"whisperflow/internal/queue"
	"whisperflow/internal/testsupport"
)

func TestNewJobAndGetByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "/media/talk.mp4", "", "Talk", "es", "user@example.com")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("new job status = %s, want pending", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Talk" || fetched.TargetLanguage != "es" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
	if !fetched.WantsTranslation() {
		t.Fatal("expected job to want translation")
	}

	missing, err := store.GetByID(ctx, item.ID+100)
	if err != nil {
		t.Fatalf("GetByID missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing job, got %#v", missing)
	}
}

func TestNewJobRequiresSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewJob(context.Background(), "", "", "No Source", "", ""); err == nil {
		t.Fatal("expected error when both source path and url are empty")
	}
}

func TestUpdatePersistsStageOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewJob(ctx, "/media/talk.mp4", "", "Talk", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	item.Status = queue.StatusTranscribed
	item.ChunkCount = 4
	item.SubtitleFile = "/out/talk.srt"
	item.SetProgress("Transcribing", "done", 100)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusTranscribed || fetched.ChunkCount != 4 || fetched.SubtitleFile != "/out/talk.srt" {
		t.Fatalf("update lost fields: %#v", fetched)
	}
	if fetched.ProgressPercent != 100 {
		t.Fatalf("progress not persisted: %v", fetched.ProgressPercent)
	}
}

func TestNextReadyReturnsOldestActionableJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.NewJob(ctx, "/media/a.mp4", "", "A", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	second, err := store.NewJob(ctx, "/media/b.mp4", "", "B", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	// An in-flight job is not ready.
	first.Status = queue.StatusSegmenting
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err := store.NextReady(ctx)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("expected job %d, got %#v", second.ID, next)
	}

	// Intermediate ready states get picked up too.
	second.Status = queue.StatusTranscribed
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	next, err = store.NextReady(ctx)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next == nil || next.ID != second.ID || next.Status != queue.StatusTranscribed {
		t.Fatalf("unexpected next job: %#v", next)
	}

	// Terminal jobs never come back.
	second.Status = queue.StatusCompleted
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	next, err = store.NextReady(ctx)
	if err != nil {
		t.Fatalf("NextReady failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected no ready job, got %#v", next)
	}
}

func TestResetStuckProcessingRollsBackOneStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cases := []struct {
		stuck queue.Status
		want  queue.Status
	}{
		{queue.StatusSegmenting, queue.StatusPending},
		{queue.StatusTranscribing, queue.StatusSegmented},
		{queue.StatusTranslating, queue.StatusTranscribed},
		{queue.StatusUploading, queue.StatusTranslated},
	}

	ids := make([]int64, 0, len(cases))
	for i, tc := range cases {
		item, err := store.NewJob(ctx, "/media/x.mp4", "", "X", "", "")
		if err != nil {
			t.Fatalf("NewJob %d failed: %v", i, err)
		}
		item.Status = tc.stuck
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update %d failed: %v", i, err)
		}
		ids = append(ids, item.ID)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if reset != int64(len(cases)) {
		t.Fatalf("expected %d resets, got %d", len(cases), reset)
	}
	for i, tc := range cases {
		item, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item.Status != tc.want {
			t.Fatalf("job stuck in %s rolled back to %s, want %s", tc.stuck, item.Status, tc.want)
		}
	}
}

func TestClearDefaultsToTerminalStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	active, err := store.NewJob(ctx, "/media/a.mp4", "", "A", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	done, err := store.NewJob(ctx, "/media/b.mp4", "", "B", "", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != active.ID {
		t.Fatalf("unexpected remaining jobs: %#v", remaining)
	}
}

func TestUsageCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	count, err := store.UsageCount(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("UsageCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 for unseen user, got %d", count)
	}

	for i := 0; i < 3; i++ {
		if err := store.RecordUsage(ctx, "User@Example.com"); err != nil {
			t.Fatalf("RecordUsage failed: %v", err)
		}
	}
	count, err = store.UsageCount(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("UsageCount failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}

	if _, err := store.UsageCount(ctx, "  "); err == nil {
		t.Fatal("expected error for empty email")
	}
}
