// Package worker runs queued jobs on a fixed pool with a per-job timeout.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillnav/internal/adapters/mq/queue"
	"github.com/okian/skillnav/pkg/logger"
	"github.com/okian/skillnav/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	defaultJobTimeout   = 60 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Queue defines how the pool submits and workers receive jobs.
type Queue interface {
	Enqueue(ctx context.Context, j *queue.Job) error
	Dequeue(ctx context.Context) <-chan *queue.Job
}

// Worker processes jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	name    string
	timeout time.Duration

	// Shutdown control
	started      atomic.Bool
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker", // default name
		timeout:  defaultJobTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	w.started.Store(true)
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.process(job); err != nil {
				w.logger.Warn(ctx, "job failed", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown implements Worker.Shutdown.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	if !w.started.Load() {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job under the worker timeout and the submitter's context.
func (w *InMemoryWorker) process(job *queue.Job) error {
	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer func() {
		metrics.AddWorkerBusy(-1)
		metrics.RecordJobLatency(float64(time.Since(start).Milliseconds()))
	}()

	// The submitter may have given up while the job was waiting.
	if err := job.Context().Err(); err != nil {
		job.Complete(err)
		return err
	}

	ctx, cancel := context.WithTimeout(job.Context(), w.timeout)
	defer cancel()

	err := runSafely(ctx, job)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	job.Complete(err)
	return err
}

func runSafely(ctx context.Context, job *queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return job.Run(ctx)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new worker pool. Options apply to every worker.
func NewPool(workerCount int, q Queue, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		worker.started.Store(true)
		go worker.Run(ctx)
	}
}

// Submit enqueues fn and waits for its outcome. A full queue fails fast
// with ErrBackpressure; nothing is retried.
func (p *Pool) Submit(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	select {
	case <-p.shutdown:
		return ErrStopped
	default:
	}

	job := queue.NewJob(ctx, id, fn)
	if err := p.queue.Enqueue(ctx, job); err != nil {
		switch {
		case errors.Is(err, queue.ErrFull):
			return fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			return fmt.Errorf("%w: %w", ErrStopped, err)
		}
		return err
	}

	select {
	case err := <-job.Done():
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdown:
		return ErrStopped
	}
}

// Shutdown closes the queue and waits for in-flight jobs.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		if err := worker.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
