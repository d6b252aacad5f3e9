package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeTranslation()
	c.normalizeStorage()
	c.normalizeQuota()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, field := range []*string{&c.Paths.WorkDir, &c.Paths.OutputDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = strings.TrimSpace(os.Getenv("WHISPERFLOW_TRANSCRIPTION_API_KEY"))
	}
	c.Transcription.BaseURL = strings.TrimSpace(c.Transcription.BaseURL)
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.ChunkSeconds <= 0 {
		c.Transcription.ChunkSeconds = defaultChunkSeconds
	}
	if c.Transcription.MaxWorkers <= 0 {
		c.Transcription.MaxWorkers = defaultTranscribeWorkers
	}
	if c.Transcription.PacingSeconds < 0 {
		c.Transcription.PacingSeconds = defaultPacingSeconds
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscribeTimeout
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)
	if c.Translation.APIKey == "" {
		c.Translation.APIKey = strings.TrimSpace(os.Getenv("WHISPERFLOW_TRANSLATION_API_KEY"))
	}
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.TokenBudget <= 0 {
		c.Translation.TokenBudget = defaultTokenBudget
	}
	if c.Translation.MaxWorkers <= 0 {
		c.Translation.MaxWorkers = defaultTranslateWorkers
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslateTimeout
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.BaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.BaseURL), "/")
	c.Storage.APIKey = strings.TrimSpace(c.Storage.APIKey)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	if c.Storage.TimeoutSeconds <= 0 {
		c.Storage.TimeoutSeconds = defaultStorageTimeout
	}
}

func (c *Config) normalizeQuota() {
	trimmed := make([]string, 0, len(c.Quota.AllowList))
	for _, entry := range c.Quota.AllowList {
		if entry = strings.ToLower(strings.TrimSpace(entry)); entry != "" {
			trimmed = append(trimmed, entry)
		}
	}
	c.Quota.AllowList = trimmed
	if c.Quota.FreeLimit < 0 {
		c.Quota.FreeLimit = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
}
