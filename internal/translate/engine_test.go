package translate_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"whisperflow/internal/services"
	"whisperflow/internal/subtitle"
	"whisperflow/internal/translate"
)

// echoChatClient "translates" by uppercasing, delaying early groups so later
// ones finish first.
type echoChatClient struct {
	calls    atomic.Int64
	failWhen func(user string) error
	delay    time.Duration
}

func (c *echoChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	n := c.calls.Add(1)
	if n == 1 && c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.failWhen != nil {
		if err := c.failWhen(user); err != nil {
			return "", err
		}
	}
	return strings.ToUpper(user), nil
}

func sampleSRT() string {
	return subtitle.FormatSRT([]subtitle.Cue{
		{Index: 1, Start: 0, End: 2, Text: "first line"},
		{Index: 2, Start: 3, End: 5, Text: "second line"},
		{Index: 3, Start: 6, End: 8, Text: "third line"},
	})
}

func TestEngineTranslatePreservesDocumentOrder(t *testing.T) {
	client := &echoChatClient{delay: 30 * time.Millisecond}
	// Tiny budget forces one group per entry so concurrency reordering
	// would be visible.
	engine := translate.NewEngine(client, charCounter{}, 10, 3, nil)

	translated, err := engine.Translate(context.Background(), sampleSRT(), "Spanish")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	firstIdx := strings.Index(translated, "FIRST LINE")
	secondIdx := strings.Index(translated, "SECOND LINE")
	thirdIdx := strings.Index(translated, "THIRD LINE")
	if firstIdx < 0 || secondIdx < 0 || thirdIdx < 0 {
		t.Fatalf("translated content missing lines:\n%s", translated)
	}
	if !(firstIdx < secondIdx && secondIdx < thirdIdx) {
		t.Fatalf("groups reassembled out of order:\n%s", translated)
	}
	if !strings.HasSuffix(translated, "\n") {
		t.Fatal("translated document should end with a newline")
	}
}

func TestEngineTranslateAbortsOnFailedGroup(t *testing.T) {
	client := &echoChatClient{
		failWhen: func(user string) error {
			if strings.Contains(user, "second line") {
				return errors.New("model overloaded")
			}
			return nil
		},
	}
	engine := translate.NewEngine(client, charCounter{}, 10, 3, nil)

	_, err := engine.Translate(context.Background(), sampleSRT(), "Spanish")
	if err == nil {
		t.Fatal("expected translation to abort")
	}
	if !errors.Is(err, services.ErrTranslation) {
		t.Fatalf("expected translation error, got %v", err)
	}
}

func TestEngineTranslateRejectsEmptyDocument(t *testing.T) {
	engine := translate.NewEngine(&echoChatClient{}, charCounter{}, 100, 2, nil)
	_, err := engine.Translate(context.Background(), "  \n ", "Spanish")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEngineTranslateSingleGroupForLargeBudget(t *testing.T) {
	client := &echoChatClient{}
	engine := translate.NewEngine(client, charCounter{}, 1_000_000, 4, nil)
	if _, err := engine.Translate(context.Background(), sampleSRT(), "French"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got := client.calls.Load(); got != 1 {
		t.Fatalf("expected a single request, got %d", got)
	}
}
