package notebook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"whisperflow/internal/logging"
)

// State is the lifecycle of a remote kernel run.
type State string

const (
	StateSubmitted State = "submitted"
	StateRunning   State = "running"
	StateComplete  State = "complete"
	StateError     State = "error"
)

// statusPattern extracts the state token from the kernel status output, which
// reads like: has status "complete".
var statusPattern = regexp.MustCompile(`status "(\w+)"`)

// OutputRunner executes the kaggle CLI and captures combined output.
// Overridable in tests.
type OutputRunner func(ctx context.Context, name string, args ...string) (string, error)

func defaultOutputRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// Config captures the remote kernel settings.
type Config struct {
	Kernel              string
	Dataset             string
	PollIntervalSeconds int
}

/// Client drives a remote GPU notebook through the kaggle CLI: push the kernel
// to start a run, poll its status, and pull the output artifacts when done.
type Client struct {
	cfg    Config
	run    OutputRunner
	sleep  func(ctx context.Context, d time.Duration)
	logger *slog.Logger
}

// NewClient constructs a notebook client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollIntervalSeconds < 1 {
		cfg.PollIntervalSeconds = 30
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		cfg:    cfg,
		run:    defaultOutputRunner,
		sleep:  sleepContext,
		logger: logger,
	}
}

// WithOutputRunner swaps the CLI runner (for testing).
func (c *Client) WithOutputRunner(runner OutputRunner) {
	if runner != nil {
		c.run = runner
	}
}

// WithSleeper swaps the poll delay (for testing).
func (c *Client) WithSleeper(fn func(ctx context.Context, d time.Duration)) {
	if fn != nil {
		c.sleep = fn
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Push uploads the kernel directory and starts a new run.
func (c *Client) Push(ctx context.Context, kernelDir string) error {
	output, err := c.run(ctx, "kaggle", "kernels", "push", "-p", kernelDir)
	if err != nil {
		return fmt.Errorf("notebook: push kernel: %w", err)
	}
	c.logger.Info("kernel pushed", logging.String("output", strings.TrimSpace(output)))
	return nil
}

// Status asks the CLI for the current run state.
func (c *Client) Status(ctx context.Context) (State, error) {
	output, err := c.run(ctx, "kaggle", "kernels", "status", c.cfg.Kernel)
	if err != nil {
		return StateError, fmt.Errorf("notebook: kernel status: %w", err)
	}
	match := statusPattern.FindStringSubmatch(output)
	if match == nil {
		return StateError, fmt.Errorf("notebook: unrecognized status output: %s", strings.TrimSpace(output))
	}
	switch strings.ToLower(match[1]) {
	case "queued", "starting":
		return StateSubmitted, nil
	case "running":
		return StateRunning, nil
	case "complete":
		return StateComplete, nil
	default:
		return StateError, nil
	}
}

// Wait polls until the run completes or errors. The poll interval comes from
// configuration; the caller bounds total time through the context.
func (c *Client) Wait(ctx context.Context) error {
	interval := time.Duration(c.cfg.PollIntervalSeconds) * time.Second
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("notebook: wait: %w", ctx.Err())
		default:
		}
		state, err := c.Status(ctx)
		if err != nil {
			return err
		}
		switch state {
		case StateComplete:
			return nil
		case StateError:
			return fmt.Errorf("notebook: kernel run failed")
		}
		c.logger.Info("kernel still running", logging.String("state", string(state)))
		c.sleep(ctx, interval)
	}
}

// PullOutput downloads the run's output files into destDir and returns the
// paths of the subtitle artifacts found there.
func (c *Client) PullOutput(ctx context.Context, destDir string) ([]string, error) {
	if _, err := c.run(ctx, "kaggle", "kernels", "output", c.cfg.Kernel, "-p", destDir); err != nil {
		return nil, fmt.Errorf("notebook: pull output: %w", err)
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, fmt.Errorf("notebook: list output: %w", err)
	}
	var artifacts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".srt", ".txt":
			artifacts = append(artifacts, filepath.Join(destDir, entry.Name()))
		}
	}
	return artifacts, nil
}
