// Package reporting turns a candidate summary into a PDF report with
// AI-generated recommendations. Generation and rendering run on a bounded
// worker pool with a per-job timeout.
package reporting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillnav/internal/adapters/ai/gemini"
	jobqueue "github.com/okian/skillnav/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillnav/internal/adapters/mq/worker"
	report "github.com/okian/skillnav/internal/domain/report"
	"github.com/okian/skillnav/pkg/logger"
)

// Generator produces recommendation text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Renderer writes a document as PDF.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, doc report.Document) error
}

// ErrExternalService marks failures of the generator or renderer.
var ErrExternalService = errors.New("external service failure")

// ErrNotStarted is returned when Generate is called before Start.
var ErrNotStarted = errors.New("reporting service not started")

// Service implements the reports API dependencies.
type Service struct {
	mu sync.RWMutex

	generator Generator
	renderer  Renderer
	pool      *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	jobTimeout  time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of report workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many reports may wait for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobTimeout bounds one generate+render job.
func WithJobTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.jobTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(generator Generator, renderer Renderer, opts ...Option) *Service {
	s := &Service{
		generator:   generator,
		renderer:    renderer,
		workerCount: 4,
		queueSize:   64,
		jobTimeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the job queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("reporting")
	}

	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, q,
		workerpool.WithJobTimeout(s.jobTimeout),
		workerpool.WithLogger(s.logger),
	)
	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "reporting service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("jobTimeout", s.jobTimeout.String()),
	)
	return nil
}

// Stop drains the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	return s.pool.Shutdown(ctx)
}

// Generate validates in and returns the rendered PDF. Errors from the
// generator or renderer wrap ErrExternalService; a full pool yields
// worker.ErrBackpressure.
func (s *Service) Generate(ctx context.Context, in report.Input) ([]byte, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	pool, started := s.pool, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	var buf bytes.Buffer
	jobID := uuid.NewString()
	err := pool.Submit(ctx, jobID, func(jobCtx context.Context) error {
		buf.Reset()
		return s.build(jobCtx, in, &buf)
	})
	if err != nil {
		s.logger.Warn(ctx, "report failed", logger.String("job_id", jobID), logger.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) build(ctx context.Context, in report.Input, w io.Writer) error {
	text, err := s.generator.Generate(ctx, report.BuildPrompt(in))
	switch {
	case errors.Is(err, gemini.ErrEmptyResponse):
		text = report.FallbackText
	case err != nil:
		return fmt.Errorf("%w: generate recommendations: %w", ErrExternalService, err)
	}

	if err := s.renderer.Render(ctx, w, report.NewDocument(in, text)); err != nil {
		return fmt.Errorf("%w: render report: %w", ErrExternalService, err)
	}
	return nil
}

// GetStats returns service statistics.
func (s *Service) GetStats(_ context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"started":        s.started,
		"workers":        s.workerCount,
		"queue_size":     s.queueSize,
		"job_timeout_ms": s.jobTimeout.Milliseconds(),
	}
}
