package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"whisperflow/internal/logging"
	"whisperflow/internal/media"
	"whisperflow/internal/services"
)

// chunkClient is the slice of Client the dispatcher needs; tests substitute
// a fake.
type chunkClient interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// sleeper abstracts the pacing delay so tests can record it instead of waiting.
type sleeper func(ctx context.Context, d time.Duration)

func defaultSleeper(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Dispatcher fans chunk transcription out to a bounded worker pool, pacing
// submissions to stay under API rate limits. Results land in an index-keyed
// slice, each slot written exactly once by its own worker, so the completed
// set is in chunk order regardless of which request finished first.
type Dispatcher struct {
	client       chunkClient
	chunkSeconds int
	maxWorkers   int
	pacing       time.Duration
	sleep        sleeper
	logger       *slog.Logger
}

// NewDispatcher constructs a dispatcher around the given client.
func NewDispatcher(client chunkClient, chunkSeconds, maxWorkers int, pacing time.Duration, logger *slog.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		client:       client,
		chunkSeconds: chunkSeconds,
		maxWorkers:   maxWorkers,
		pacing:       pacing,
		sleep:        defaultSleeper,
		logger:       logger,
	}
}

// WithSleeper overrides the pacing sleep (for testing).
func (d *Dispatcher) WithSleeper(fn sleeper) {
	if fn != nil {
		d.sleep = fn
	}
}

// Run transcribes every chunk and returns the fragments in ascending chunk
// order. Any chunk failure fails the whole run; the first failure in index
// order is returned.
func (d *Dispatcher) Run(ctx context.Context, chunks []media.Chunk) ([]Fragment, error) {
	results := make([]Fragment, len(chunks))
	failures := make([]error, len(chunks))

	sem := make(chan struct{}, d.maxWorkers)
	var wg sync.WaitGroup
	for slot, chunk := range chunks {
		select {
		case <-ctx.Done():
			failures[slot] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(slot int, chunk media.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			logger := logging.WithContext(services.WithChunk(ctx, chunk.Index), d.logger)
			started := time.Now()
			segments, err := d.client.Transcribe(ctx, chunk.Path)
			if err != nil {
				failures[slot] = err
				logger.Error("chunk transcription failed", logging.Error(err))
				return
			}
			results[slot] = RenderFragment(chunk.Index, d.chunkSeconds, segments)
			logger.Info("chunk transcribed",
				logging.Int("segments", len(segments)),
				logging.Duration("elapsed", time.Since(started)),
			)
		}(slot, chunk)
		if d.pacing > 0 && slot < len(chunks)-1 {
			d.sleep(ctx, d.pacing)
		}
	}
	wg.Wait()

	for slot, err := range failures {
		if err != nil {
			return nil, services.Wrap(
				services.ErrTranscription,
				"transcribing",
				fmt.Sprintf("chunk %d", chunks[slot].Index),
				"",
				err,
			)
		}
	}
	return results, nil
}
