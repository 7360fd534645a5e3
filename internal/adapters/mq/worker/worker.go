// Package worker defines the import processing workers that move raw event
// batches from the lake into the warehouse.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/mq/queue"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/normalize"
	"github.com/kairyx-ai/kairyx/pkg/logger"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Downloader fetches a raw event batch from the lake by its URI.
type Downloader interface {
	Download(ctx context.Context, uri string) ([]model.RawEvent, error)
}

// RuleSource provides the current normalization rules.
type RuleSource interface {
	Rules() normalize.Rules
}

// Deduper drops events whose vendor insert id was already processed.
type Deduper interface {
	SeenAndRecord(ctx context.Context, id string) bool
}

// EventWriter persists normalized events attributed to an import job.
type EventWriter interface {
	WriteEvents(ctx context.Context, jobID string, events []model.NormalizedEvent) error
}

// JobMarker records an import job's outcome.
type JobMarker interface {
	MarkReady(ctx context.Context, name string) error
	MarkFailed(ctx context.Context, name, reason string) error
}

// Queue defines how workers receive import notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Notification
}

// Worker consumes import notifications and runs the processing pipeline.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining notifications before stopping.
	Shutdown(ctx context.Context) error
}

// ImportWorker implements Worker for processing import notifications.
type ImportWorker struct {
	queue      Queue
	downloader Downloader
	rules      RuleSource
	deduper    Deduper
	writer     EventWriter
	marker     JobMarker
	name       string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewImportWorker creates a new worker with configuration options.
func NewImportWorker(q Queue, downloader Downloader, rules RuleSource, deduper Deduper, writer EventWriter, marker JobMarker, opts ...Option) *ImportWorker {
	w := &ImportWorker{
		queue:      q,
		downloader: downloader,
		rules:      rules,
		deduper:    deduper,
		writer:     writer,
		marker:     marker,
		name:       "worker", // default name
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *ImportWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	notifChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case n, ok := <-notifChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the notification; a failure is recorded on the job,
			// never propagated to the loop.
			if err := w.processNotification(ctx, n); err != nil {
				w.logger.Error(ctx, "import processing failed",
					logger.String("job", n.JobID),
					logger.Error(err),
				)
				if markErr := w.marker.MarkFailed(ctx, n.JobID, err.Error()); markErr != nil {
					w.logger.Error(ctx, "failed to record job failure",
						logger.String("job", n.JobID),
						logger.Error(markErr),
					)
				}
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ImportWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processNotification runs one batch through download, dedupe, normalize
// and warehouse write, then marks the job ready.
func (w *ImportWorker) processNotification(ctx context.Context, n queue.Notification) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	raw, err := w.downloader.Download(ctx, n.LakeURI)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("download batch %s: %w", n.LakeURI, err)
	}
	metrics.RecordEventIngested(len(raw))

	// Vendor exports can overlap across windows; the insert id makes
	// reprocessing idempotent. Events without one always pass through.
	kept := make([]model.RawEvent, 0, len(raw))
	dropped := 0
	for _, ev := range raw {
		if ev.InsertID != "" && w.deduper.SeenAndRecord(ctx, ev.InsertID) {
			dropped++
			continue
		}
		kept = append(kept, ev)
	}
	if dropped > 0 {
		metrics.RecordEventDropped(dropped)
		w.logger.Debug(ctx, "dropped duplicate events",
			logger.String("job", n.JobID),
			logger.Int("dropped", dropped),
		)
	}

	normalizeStart := time.Now()
	normalized := normalize.Apply(kept, w.rules.Rules())
	metrics.RecordNormalizeLatency(float64(time.Since(normalizeStart).Milliseconds()))
	metrics.RecordEventNormalized(len(normalized))

	if err := w.writer.WriteEvents(ctx, n.JobID, normalized); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("write events for job %s: %w", n.JobID, err)
	}

	if err := w.marker.MarkReady(ctx, n.JobID); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("mark job %s ready: %w", n.JobID, err)
	}

	w.logger.Info(ctx, "import batch processed",
		logger.String("job", n.JobID),
		logger.Int("events", len(normalized)),
		logger.Int("duplicates", dropped),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*ImportWorker
	queue   Queue

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool. Every worker shares the same pipeline
// collaborators.
func NewPool(workerCount int, q Queue, downloader Downloader, rules RuleSource, deduper Deduper, writer EventWriter, marker JobMarker) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*ImportWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewImportWorker(
			q,
			downloader,
			rules,
			deduper,
			writer,
			marker,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	close(p.shutdown)

	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new notifications
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
