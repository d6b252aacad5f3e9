// Package pipeline wires the stage handlers into a workflow manager so the
// daemon and the CLI share one pipeline definition.
package pipeline

import (
	"log/slog"

	"whisperflow/internal/config"
	"whisperflow/internal/media"
	"whisperflow/internal/queue"
	"whisperflow/internal/storage"
	"whisperflow/internal/transcribe"
	"whisperflow/internal/translate"
	"whisperflow/internal/workflow"
)

// NewManager builds a workflow manager with the full stage pipeline
// registered: segment, transcribe, translate, upload.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *workflow.Manager {
	manager := workflow.NewManager(cfg, store, logger)
	manager.Register("segmenter", queue.StatusPending, queue.StatusSegmenting, queue.StatusSegmented,
		media.NewSegmenter(cfg, store, logger))
	manager.Register("transcriber", queue.StatusSegmented, queue.StatusTranscribing, queue.StatusTranscribed,
		transcribe.NewTranscriber(cfg, store, logger))
	manager.Register("translator", queue.StatusTranscribed, queue.StatusTranslating, queue.StatusTranslated,
		translate.NewTranslator(cfg, store, logger))
	manager.Register("publisher", queue.StatusTranslated, queue.StatusUploading, queue.StatusCompleted,
		storage.NewPublisher(cfg, store, logger))
	return manager
}
