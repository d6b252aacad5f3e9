package translate

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
	"whisperflow/internal/services"
	"whisperflow/internal/stage"
	"whisperflow/internal/subtitle"
)

// Translator runs the translating stage. Jobs without a target language pass
// straight through; everything else gets a `_multilingo` subtitle file next
// to the original.
type Translator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client *Client
	engine *Engine
}

// NewTranslator constructs the translating stage handler.
func NewTranslator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Translator {
	stageLogger := logging.NewComponentLogger(logger, "translator")
	client := NewClient(Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
	})
	counter, err := NewTokenCounter(cfg.Translation.Model)
	if err != nil {
		stageLogger.Warn("token encoding unavailable, using size approximation", logging.Error(err))
		counter = runeCounter{}
	}
	engine := NewEngine(client, counter, cfg.Translation.TokenBudget, cfg.Translation.MaxWorkers, stageLogger)
	return &Translator{
		cfg:    cfg,
		store:  store,
		logger: stageLogger,
		client: client,
		engine: engine,
	}
}

// WithEngine swaps the translation engine (for testing).
func (t *Translator) WithEngine(engine *Engine) {
	if engine != nil {
		t.engine = engine
	}
}

func (t *Translator) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.SetProgress("Translating", "Preparing translation", 0)
	item.ErrorMessage = ""
	logger.Info("starting translation preparation", logging.String("target_language", item.TargetLanguage))
	return nil
}

func (t *Translator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	if !item.WantsTranslation() {
		item.SetProgress("Translating", "No target language, skipping", 100)
		logger.Info("translation skipped")
		return nil
	}
	language, err := NormalizeLanguage(item.TargetLanguage)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translating", "resolve target language", "", err)
	}
	srtPath := strings.TrimSpace(item.SubtitleFile)
	if srtPath == "" {
		return services.Wrap(services.ErrValidation, "translating", "validate inputs", "Job has no subtitle file", nil)
	}
	content, err := os.ReadFile(srtPath)
	if err != nil {
		return services.Wrap(services.ErrTranslation, "translating", "read subtitle file", "", err)
	}

	item.SetProgress("Translating", "Translating to "+language, 10)
	started := time.Now()
	translated, err := t.engine.Translate(ctx, string(content), language)
	if err != nil {
		return err
	}

	translatedPath := subtitle.TranslatedPath(srtPath)
	if err := os.WriteFile(translatedPath, []byte(translated), 0o644); err != nil {
		return services.Wrap(services.ErrTranslation, "translating", "write translated file", "", err)
	}
	item.TranslatedFile = translatedPath
	item.SetProgress("Translating", "Translation complete", 100)
	logger.Info("translation completed",
		logging.String("language", language),
		logging.String("translated_file", translatedPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (t *Translator) HealthCheck(ctx context.Context) stage.Health {
	const name = "translator"
	if !t.client.Configured() {
		return stage.Unhealthy(name, "translation api key not configured; jobs with a target language will fail")
	}
	return stage.Healthy(name)
}
