package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
	"whisperflow/internal/services"
)

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	pipelineStage, ok := m.stages[item.Status]
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(
		services.WithStage(services.WithJobID(ctx, item.ID), pipelineStage.name),
		requestID,
	)
	stageLogger := logging.WithContext(stageCtx, m.logger)

	item.Status = pipelineStage.processingStatus
	if err := m.store.Update(stageCtx, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, pipelineStage, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, ps pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(ps.processingStatus)),
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
	)

	if err := ps.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stageLogger, ps.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist stage preparation", logging.Error(err))
		m.setLastError(err)
		return err
	}

	if err := ps.handler.Execute(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(ctx, stageLogger, ps.name, item, err)
		m.setLastError(err)
		return err
	}

	if item.Status == ps.processingStatus || item.Status == "" {
		item.Status = ps.doneStatus
	}
	if item.Status == queue.StatusCompleted {
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = "Completed"
		}
		item.ProgressStage = "Completed"
	}
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist stage result", logging.Error(err))
		m.setLastError(err)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageLogger *slog.Logger, stageName string, item *queue.Item, stageErr error) {
	status := services.FailureStatus(stageErr)
	if status == queue.StatusReview {
		item.Status = queue.StatusReview
		item.NeedsReview = true
		item.ReviewReason = stageErr.Error()
		item.ErrorMessage = stageErr.Error()
		item.SetProgress("Review", stageErr.Error(), 0)
	} else {
		item.SetFailed(stageErr.Error())
	}
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist stage failure", logging.Error(err))
	}
	stageLogger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String("stage_name", stageName),
		logging.String("failure_status", string(status)),
		logging.Error(stageErr),
	)
}
