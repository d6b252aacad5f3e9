package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"whisperflow/internal/config"
	"whisperflow/internal/logging"
	"whisperflow/internal/queue"
	"whisperflow/internal/stage"
)

// pipelineStage binds a ready status to its handler and the statuses the
// manager moves the job through around execution.
type pipelineStage struct {
	name             string
	processingStatus queue.Status
	doneStatus       queue.Status
	handler          stage.Handler
}

// Manager polls the queue and drives each ready job through its next stage.
// One job is processed at a time; concurrency lives inside the stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	stages map[queue.Status]pipelineStage

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager. Stages are registered afterwards
// with Register.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: pollInterval,
		stages:       make(map[queue.Status]pipelineStage),
	}
}

// Register binds a handler to the ready status it consumes. The manager moves
// the job readyStatus -> processingStatus -> doneStatus as the stage runs.
func (m *Manager) Register(name string, readyStatus, processingStatus, doneStatus queue.Status, handler stage.Handler) {
	m.stages[readyStatus] = pipelineStage{
		name:             name,
		processingStatus: processingStatus,
		doneStatus:       doneStatus,
		handler:          handler,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		return errors.New("workflow stages not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight stage.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// LastError returns the most recent processing error, for status reporting.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextReady(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
			)
			m.waitOrShutdown(ctx)
			continue
		}
		if item == nil {
			m.waitOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
