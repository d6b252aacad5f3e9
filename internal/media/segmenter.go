package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
	"whisperflow/internal/services"
	"whisperflow/internal/stage"
)

// Segmenter normalizes a source media file and splits it into fixed-duration
// chunks. It is the first pipeline stage.
type Segmenter struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	run    CommandRunner
	probe  OutputRunner
}

// NewSegmenter constructs the segmenting stage handler.
func NewSegmenter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "segmenter"),
		run:    defaultCommandRunner,
		probe:  defaultOutputRunner,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Segmenter) WithCommandRunner(runner CommandRunner) {
	s.run = runner
}

// WithOutputRunner sets a custom probe runner (for testing).
func (s *Segmenter) WithOutputRunner(runner OutputRunner) {
	s.probe = runner
}

func (s *Segmenter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.SetProgress("Segmenting", "Preparing audio segmentation", 0)
	item.ErrorMessage = ""
	logger.Info("starting segmentation preparation", logging.String("source", item.SourcePath))
	return nil
}

func (s *Segmenter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"segmenting",
			"validate inputs",
			"No local source file; URL sources are handled by the notebook backend",
			nil,
		)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "segmenting", "validate inputs", "Source file not readable", err)
	}

	workDir := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("job-%d", item.ID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "create work dir", "", err)
	}
	if err := ClearChunks(workDir); err != nil {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "clear stale chunks", "", err)
	}
	item.WorkDir = workDir

	if duration, err := s.probeDuration(ctx, source); err != nil {
		logger.Warn("duration probe failed", logging.Error(err))
	} else {
		item.DurationSeconds = duration
	}

	item.SetProgress("Segmenting", "Normalizing audio", 20)
	normalized := filepath.Join(workDir, NormalizedFileName)
	if err := s.run(ctx, s.cfg.FFmpegBinary(), buildNormalizeArgs(source, normalized)...); err != nil {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "normalize audio", "ffmpeg re-encode to 16kHz mono failed", err)
	}

	item.SetProgress("Segmenting", "Splitting audio into chunks", 60)
	chunkSeconds := s.cfg.Transcription.ChunkSeconds
	if err := s.run(ctx, s.cfg.FFmpegBinary(), buildSplitArgs(normalized, chunkSeconds, workDir)...); err != nil {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "split audio", "ffmpeg segment muxer failed", err)
	}

	chunks, err := ListChunks(workDir)
	if err != nil {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "list chunks", "", err)
	}
	if len(chunks) == 0 {
		return services.Wrap(services.ErrMediaProcessing, "segmenting", "list chunks", "Splitting produced no chunks", nil)
	}
	if item.DurationSeconds > 0 {
		if expected := ChunkCount(item.DurationSeconds, chunkSeconds); expected != len(chunks) {
			logger.Warn("chunk count differs from probed duration",
				logging.Int("expected", expected),
				logging.Int("actual", len(chunks)),
				logging.Float64("duration_seconds", item.DurationSeconds),
			)
		}
	}

	item.ChunkCount = len(chunks)
	item.SetProgress("Segmenting", fmt.Sprintf("Split into %d chunks", len(chunks)), 100)
	logger.Info("segmentation completed",
		logging.Int("chunks", len(chunks)),
		logging.Int("chunk_seconds", chunkSeconds),
		logging.Float64("duration_seconds", item.DurationSeconds),
	)
	return nil
}

func (s *Segmenter) HealthCheck(ctx context.Context) stage.Health {
	const name = "segmenter"
	if _, err := exec.LookPath(s.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("binary %q not found", s.cfg.FFmpegBinary()))
	}
	if _, err := exec.LookPath(s.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("binary %q not found", s.cfg.FFprobeBinary()))
	}
	return stage.Healthy(name)
}

func (s *Segmenter) probeDuration(ctx context.Context, source string) (float64, error) {
	output, err := s.probe(ctx, s.cfg.FFprobeBinary(), buildProbeArgs(source)...)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return duration, nil
}
