package storage

import (
	"context"
	"log/slog"
	"strings"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
	"whisperflow/internal/stage"
)

// uploader is the slice of Client the stage needs; tests substitute a fake.
type uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Configured() bool
}

// Publisher runs the uploading stage: push the finished subtitle and
// transcript artifacts to object storage so users get shareable links.
// Upload failure never fails the job; the local files are the product,
// the links are a convenience.
type Publisher struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client uploader
}

// NewPublisher constructs the uploading stage handler.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Publisher {
	return &Publisher{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "publisher"),
		client: NewClient(Config{
			BaseURL:        cfg.Storage.BaseURL,
			APIKey:         cfg.Storage.APIKey,
			Bucket:         cfg.Storage.Bucket,
			TimeoutSeconds: cfg.Storage.TimeoutSeconds,
		}),
	}
}

// WithUploader swaps the storage client (for testing).
func (p *Publisher) WithUploader(client uploader) {
	if client != nil {
		p.client = client
	}
}

func (p *Publisher) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Uploading", "Preparing artifact upload", 0)
	item.ErrorMessage = ""
	return nil
}

func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	if !p.cfg.Storage.Enabled || !p.client.Configured() {
		item.SetProgress("Uploading", "Storage disabled, keeping local files only", 100)
		logger.Info("upload skipped, storage not configured")
		return nil
	}

	var failed []string
	if path := strings.TrimSpace(item.SubtitleFile); path != "" {
		if url, err := p.client.Upload(ctx, path); err != nil {
			failed = append(failed, "subtitle")
			logger.Warn("subtitle upload failed", logging.Error(err))
		} else {
			item.SubtitleURL = url
		}
	}
	if path := strings.TrimSpace(item.TranscriptFile); path != "" {
		if url, err := p.client.Upload(ctx, path); err != nil {
			failed = append(failed, "transcript")
			logger.Warn("transcript upload failed", logging.Error(err))
		} else {
			item.TranscriptURL = url
		}
	}
	if path := strings.TrimSpace(item.TranslatedFile); path != "" {
		if _, err := p.client.Upload(ctx, path); err != nil {
			failed = append(failed, "translated subtitle")
			logger.Warn("translated subtitle upload failed", logging.Error(err))
		}
	}

	if len(failed) > 0 {
		item.SetProgress("Uploading", "Some uploads failed ("+strings.Join(failed, ", ")+"); local files kept", 100)
	} else {
		item.SetProgress("Uploading", "Artifacts uploaded", 100)
	}
	logger.Info("upload finished", logging.Int("failed", len(failed)))
	return nil
}

func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publisher"
	if p.cfg.Storage.Enabled && !p.client.Configured() {
		return stage.Unhealthy(name, "storage enabled but not fully configured")
	}
	return stage.Healthy(name)
}
