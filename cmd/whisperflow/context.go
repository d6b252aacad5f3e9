package main

import (
	"log/slog"
	"strings"
	"sync"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
)

// commandContext lazily resolves shared dependencies so cheap commands like
// `config init` never touch the queue database.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	storeOnce sync.Once
	store     *queue.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureStore() (*queue.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = queue.Open(cfg)
	})
	return c.store, c.storeErr
}

func (c *commandContext) logger() *slog.Logger {
	return logging.NewNop()
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}
