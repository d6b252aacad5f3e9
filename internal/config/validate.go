package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateNotebook(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/whisperflow/config.toml"
		}
		return fmt.Errorf("transcription.api_key is required. Set WHISPERFLOW_TRANSCRIPTION_API_KEY or edit %s (create with 'whisperflow config init')", defaultPath)
	}
	if c.Transcription.BaseURL == "" {
		return errors.New("transcription.base_url must be set")
	}
	if c.Transcription.Model == "" {
		return errors.New("transcription.model must be set")
	}
	return nil
}

// Translation credentials are only needed when a job requests a target
// language, so the key is checked by the translate stage health check rather
// than here.
func (c *Config) validateTranslation() error {
	if c.Translation.BaseURL == "" {
		return errors.New("translation.base_url must be set")
	}
	if c.Translation.Model == "" {
		return errors.New("translation.model must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.BaseURL == "" {
		return errors.New("storage.base_url must be set when storage.enabled is true")
	}
	if c.Storage.APIKey == "" {
		return errors.New("storage.api_key must be set when storage.enabled is true")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	return nil
}

func (c *Config) validateNotebook() error {
	if !c.Notebook.Enabled {
		return nil
	}
	if c.Notebook.Kernel == "" {
		return errors.New("notebook.kernel must be set when notebook.enabled is true")
	}
	if c.Notebook.Dataset == "" {
		return errors.New("notebook.dataset must be set when notebook.enabled is true")
	}
	return nil
}
