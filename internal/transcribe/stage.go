package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/media"
	"whisperflow/internal/queue"
	"whisperflow/internal/services"
	"whisperflow/internal/stage"
	"whisperflow/internal/subtitle"
)

// Transcriber runs the transcribing stage: dispatch every chunk to the
// speech-to-text API, merge the fragments in chunk order, and write the
// final subtitle and transcript files.
type Transcriber struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	client     *Client
	dispatcher *Dispatcher
}

// NewTranscriber constructs the transcribing stage handler.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	stageLogger := logging.NewComponentLogger(logger, "transcriber")
	client := NewClient(Config{
		APIKey:         cfg.Transcription.APIKey,
		BaseURL:        cfg.Transcription.BaseURL,
		Model:          cfg.Transcription.Model,
		TimeoutSeconds: cfg.Transcription.TimeoutSeconds,
	})
	dispatcher := NewDispatcher(
		client,
		cfg.Transcription.ChunkSeconds,
		cfg.Transcription.MaxWorkers,
		time.Duration(cfg.Transcription.PacingSeconds)*time.Second,
		stageLogger,
	)
	return &Transcriber{
		cfg:        cfg,
		store:      store,
		logger:     stageLogger,
		client:     client,
		dispatcher: dispatcher,
	}
}

// WithDispatcher swaps the dispatcher (for testing).
func (t *Transcriber) WithDispatcher(d *Dispatcher) {
	if d != nil {
		t.dispatcher = d
	}
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.SetProgress("Transcribing", "Preparing transcription", 0)
	item.ErrorMessage = ""
	logger.Info("starting transcription preparation", logging.Int("chunks", item.ChunkCount))
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	workDir := strings.TrimSpace(item.WorkDir)
	if workDir == "" {
		return services.Wrap(services.ErrValidation, "transcribing", "validate inputs", "Job has no work directory", nil)
	}
	chunks, err := media.ListChunks(workDir)
	if err != nil {
		return services.Wrap(services.ErrTranscription, "transcribing", "list chunks", "", err)
	}
	if len(chunks) == 0 {
		return services.Wrap(services.ErrTranscription, "transcribing", "list chunks", "Work directory holds no chunks", nil)
	}
	if item.ChunkCount > 0 && item.ChunkCount != len(chunks) {
		logger.Warn("chunk count drifted since segmentation",
			logging.Int("recorded", item.ChunkCount),
			logging.Int("found", len(chunks)),
		)
	}

	item.SetProgress("Transcribing", fmt.Sprintf("Transcribing %d chunks", len(chunks)), 10)
	started := time.Now()
	fragments, err := t.dispatcher.Run(ctx, chunks)
	if err != nil {
		return err
	}

	item.SetProgress("Transcribing", "Merging chunk results", 90)
	srtTexts := make([]string, len(fragments))
	txtTexts := make([]string, len(fragments))
	for i, fragment := range fragments {
		srtTexts[i] = fragment.SRT
		txtTexts[i] = fragment.Text
	}
	srtPath, txtPath := subtitle.OutputPaths(item.SourcePath, t.cfg.Paths.OutputDir)
	if err := os.WriteFile(srtPath, []byte(subtitle.MergeSRT(srtTexts)), 0o644); err != nil {
		return services.Wrap(services.ErrTranscription, "transcribing", "write subtitle file", "", err)
	}
	if err := os.WriteFile(txtPath, []byte(subtitle.MergeTranscript(txtTexts)), 0o644); err != nil {
		return services.Wrap(services.ErrTranscription, "transcribing", "write transcript file", "", err)
	}
	item.SubtitleFile = srtPath
	item.TranscriptFile = txtPath

	if email := strings.TrimSpace(item.SubmittedBy); email != "" {
		if err := t.store.RecordUsage(ctx, email); err != nil {
			logger.Warn("usage accounting failed", logging.Error(err))
		}
	}

	item.SetProgress("Transcribing", "Transcription complete", 100)
	logger.Info("transcription completed",
		logging.Int("chunks", len(chunks)),
		logging.String("subtitle_file", srtPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if !t.client.Configured() {
		return stage.Unhealthy(name, "transcription api key not configured")
	}
	return stage.Healthy(name)
}
