// Command whisperflowd runs the transcription daemon in the foreground.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"whisperflow/internal/config"
	"whisperflow/internal/daemon"
	"whisperflow/internal/logging"
	"whisperflow/internal/pipeline"
	"whisperflow/internal/queue"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "whisperflowd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "no config file at %s; using defaults and environment keys\n", resolvedPath)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}

	manager := pipeline.NewManager(cfg, store, logger)
	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		store.Close()
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}
