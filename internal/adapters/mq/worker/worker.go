// Package worker drains the submission queue and runs each submission through the scoring pipeline.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/pkg/logger"
	"github.com/okian/scoutrank/pkg/metrics"
)

const stopTimeout = 5 * time.Second

// Submission is what workers read off the queue.
type Submission = model.Submission

// Processor scores a submission and folds it into team statistics.
type Processor interface {
	Process(ctx context.Context, sub Submission) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue() <-chan Submission
}

// Worker processes submissions until the queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the queue is
	// closed and empty, or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker after the submission in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	processed atomic.Int64
	failed    atomic.Int64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		// Stopping wins over queued submissions.
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-items:
			if !ok {
				return
			}
			w.handle(ctx, sub)
		}
	}
}

// Shutdown stops the worker and waits for it to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	return w.wait(ctx)
}

func (w *InMemoryWorker) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker %s: %w", w.name, ctx.Err())
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, sub Submission) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	ctx = logger.WithFields(ctx,
		logger.String("submission_id", sub.ID),
		logger.String("event_id", sub.EventID),
		logger.Int("match", sub.MatchNumber),
		logger.String("team_id", sub.TeamID),
	)

	start := time.Now()
	err := w.processor.Process(ctx, sub)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		w.failed.Add(1)
		metrics.RecordSubmissionFailed()
		metrics.RecordErrorByComponent("worker", "process")
		w.logger.Error(ctx, "submission processing failed", logger.Error(err))
		return
	}
	w.processed.Add(1)
	metrics.RecordSubmissionProcessed()
	w.logger.Debug(ctx, "submission processed")
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, q Queue, p Processor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}
	for i := range pool.workers {
		pool.workers[i] = NewInMemoryWorker(q, p, WithName("worker-"+strconv.Itoa(i)))
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

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Stats returns how many submissions the pool processed and how many failed.
func (p *Pool) Stats() (processed, failed int64) {
	for _, w := range p.workers {
		processed += w.processed.Load()
		failed += w.failed.Load()
	}
	return processed, failed
}

// Stop stops every worker after its in-flight submission. Queued
// submissions are left unprocessed.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker stop timed out", logger.Int("worker_id", i))
		}
	}
}

// Shutdown closes the queue and waits until every queued submission has
// been processed or ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		if err := w.wait(ctx); err != nil {
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			return fmt.Errorf("drain: %w", err)
		}
	}
	return nil
}
