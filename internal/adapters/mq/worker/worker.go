// Package worker defines worker contracts for asynchronous submission
// processing.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/rostrumhq/rostrum/internal/adapters/repository"
	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/pkg/logger"
	"github.com/rostrumhq/rostrum/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Applier writes one judge's score for one participant into the store.
type Applier interface {
	ApplyScore(ctx context.Context, sub model.Submission) (bool, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes queued submissions and writes them through an Applier.
type Worker struct {
	queue   Queue
	applier Applier
	name    string

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// Logging
	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(queue Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop. It returns when ctx is cancelled, Shutdown is
// called, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.processSubmission(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. Calling it again is a no-op.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processSubmission writes a single submission to the store.
func (w *Worker) processSubmission(ctx context.Context, sub Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	replaced, err := w.applier.ApplyScore(ctx, sub)
	if err != nil {
		metrics.RecordWorkerError()
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrUnknownReference) {
			// The submission referenced ids the organizer never
			// registered; drop it rather than retry.
			metrics.RecordSubmissionRejected()
			w.logger.Warn(ctx, "dropping submission with unknown references",
				logger.String("submissionID", sub.SubmissionID),
				logger.String("eventID", sub.EventID),
				logger.Error(err),
			)
			return nil
		}
		w.logger.Error(ctx, "score write failed",
			logger.String("submissionID", sub.SubmissionID),
			logger.Error(err),
		)
		return fmt.Errorf("apply score for submission %s: %w", sub.SubmissionID, err)
	}

	metrics.RecordSubmissionApplied()
	if replaced {
		w.logger.Debug(ctx, "replaced earlier score",
			logger.String("eventID", sub.EventID),
			logger.String("studentID", sub.StudentID),
			logger.String("judgeID", sub.JudgeID),
		)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	queue   Queue
	applier Applier

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   queue,
		applier: applier,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(
			queue,
			applier,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
