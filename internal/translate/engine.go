package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"whisperflow/internal/logging"
	"whisperflow/internal/services"
	"whisperflow/internal/subtitle"
)

// chatClient is the slice of Client the engine needs; tests substitute a fake.
type chatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const systemPromptTemplate = "You are a subtitle translator. Translate the subtitle text into %s. " +
	"Keep every cue number and timestamp line exactly as given; translate only the spoken text lines. " +
	"Reply with the translated subtitles in the same layout and nothing else."

// Engine translates an SRT document group by group on a bounded worker pool.
// Groups land in an index-keyed slice, each slot written exactly once by its
// own worker, so reassembly preserves document order no matter which request
// finished first. Any failed group aborts the whole translation.
type Engine struct {
	client     chatClient
	counter    TokenCounter
	budget     int
	maxWorkers int
	logger     *slog.Logger
}

// NewEngine constructs a translation engine.
func NewEngine(client chatClient, counter TokenCounter, budget, maxWorkers int, logger *slog.Logger) *Engine {
	if budget < 1 {
		budget = 1
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		client:     client,
		counter:    counter,
		budget:     budget,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Translate renders the whole SRT document into the target language. The
// language should already be normalized via NormalizeLanguage.
func (e *Engine) Translate(ctx context.Context, srtContent, targetLanguage string) (string, error) {
	entries := subtitle.SplitEntries(srtContent)
	if len(entries) == 0 {
		return "", services.Wrap(services.ErrValidation, "translating", "split entries", "Subtitle file holds no entries", nil)
	}
	groups := GroupEntries(entries, e.counter, e.budget)
	system := fmt.Sprintf(systemPromptTemplate, targetLanguage)

	results := make([]string, len(groups))
	failures := make([]error, len(groups))
	sem := make(chan struct{}, e.maxWorkers)
	var wg sync.WaitGroup
	for slot, group := range groups {
		select {
		case <-ctx.Done():
			failures[slot] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(slot int, group string) {
			defer wg.Done()
			defer func() { <-sem }()
			started := time.Now()
			translated, err := e.client.Complete(ctx, system, group)
			if err != nil {
				failures[slot] = err
				e.logger.Error("group translation failed", logging.Int("group", slot), logging.Error(err))
				return
			}
			results[slot] = strings.TrimSpace(translated)
			e.logger.Info("group translated",
				logging.Int("group", slot),
				logging.Duration("elapsed", time.Since(started)),
			)
		}(slot, group)
	}
	wg.Wait()

	for slot, err := range failures {
		if err != nil {
			return "", services.Wrap(
				services.ErrTranslation,
				"translating",
				fmt.Sprintf("group %d of %d", slot+1, len(groups)),
				"",
				err,
			)
		}
	}
	return subtitle.JoinEntries(results) + "\n", nil
}
