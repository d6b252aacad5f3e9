package transcribe_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"whisperflow/internal/media"
	"whisperflow/internal/services"
	"whisperflow/internal/transcribe"
)

// slowFakeClient returns one segment per chunk and delays so that later
// chunks finish before earlier ones.
type slowFakeClient struct {
	mu     sync.Mutex
	order  []int
	fail   map[int]error
	delays map[int]time.Duration
}

func (c *slowFakeClient) Transcribe(ctx context.Context, audioPath string) ([]transcribe.Segment, error) {
	index, ok := media.ChunkIndex(audioPath)
	if !ok {
		return nil, fmt.Errorf("unexpected chunk path %q", audioPath)
	}
	if delay, ok := c.delays[index]; ok {
		time.Sleep(delay)
	}
	c.mu.Lock()
	c.order = append(c.order, index)
	c.mu.Unlock()
	if err, ok := c.fail[index]; ok {
		return nil, err
	}
	return []transcribe.Segment{
		{Start: 0, End: 1, Text: fmt.Sprintf("chunk %d speech", index)},
	}, nil
}

func makeChunks(n int) []media.Chunk {
	chunks := make([]media.Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, media.Chunk{
			Index: i,
			Path:  filepath.Join("/work", fmt.Sprintf("part_%d.wav", i)),
		})
	}
	return chunks
}

func TestDispatcherKeepsChunkOrderUnderReversedCompletion(t *testing.T) {
	client := &slowFakeClient{
		delays: map[int]time.Duration{
			0: 40 * time.Millisecond,
			1: 25 * time.Millisecond,
			2: 10 * time.Millisecond,
			3: 0,
		},
	}
	dispatcher := transcribe.NewDispatcher(client, 300, 4, 0, nil)

	fragments, err := dispatcher.Run(context.Background(), makeChunks(4))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fragments) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(fragments))
	}
	for i, fragment := range fragments {
		if fragment.Index != i {
			t.Fatalf("fragment %d carries index %d", i, fragment.Index)
		}
		if !strings.Contains(fragment.SRT, fmt.Sprintf("chunk %d speech", i)) {
			t.Fatalf("fragment %d holds wrong text:\n%s", i, fragment.SRT)
		}
	}
	// Chunk 2 starts at 10:00 absolute.
	if !strings.Contains(fragments[2].SRT, "00:10:00,000 --> 00:10:01,000") {
		t.Fatalf("fragment 2 timestamps not offset:\n%s", fragments[2].SRT)
	}
}

func TestDispatcherFailsWholeRunOnAnyChunkError(t *testing.T) {
	client := &slowFakeClient{
		fail: map[int]error{2: errors.New("rate limited")},
	}
	dispatcher := transcribe.NewDispatcher(client, 300, 4, 0, nil)

	fragments, err := dispatcher.Run(context.Background(), makeChunks(4))
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if fragments != nil {
		t.Fatalf("expected no fragments on failure, got %d", len(fragments))
	}
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	if !strings.Contains(err.Error(), "chunk 2") {
		t.Fatalf("error should name the failed chunk: %v", err)
	}
}

func TestDispatcherPacesSubmissions(t *testing.T) {
	client := &slowFakeClient{}
	dispatcher := transcribe.NewDispatcher(client, 300, 2, 4*time.Second, nil)

	var slept []time.Duration
	dispatcher.WithSleeper(func(ctx context.Context, d time.Duration) {
		slept = append(slept, d)
	})

	if _, err := dispatcher.Run(context.Background(), makeChunks(3)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// One pacing delay between each submission, none after the last.
	if len(slept) != 2 {
		t.Fatalf("expected 2 pacing sleeps, got %d", len(slept))
	}
	for _, d := range slept {
		if d != 4*time.Second {
			t.Fatalf("unexpected pacing duration %v", d)
		}
	}
}

func TestDispatcherHandlesEmptyChunkList(t *testing.T) {
	dispatcher := transcribe.NewDispatcher(&slowFakeClient{}, 300, 4, 0, nil)
	fragments, err := dispatcher.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fragments) != 0 {
		t.Fatalf("expected no fragments, got %d", len(fragments))
	}
}
