// Package enrollment implements the candidate use-cases: registration with
// batch allocation, progress tracking and rule-based recommendations.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"io"

	repository "github.com/okian/skillnav/internal/adapters/repository"
	"github.com/okian/skillnav/internal/domain/advice"
	"github.com/okian/skillnav/internal/domain/allocation"
	model "github.com/okian/skillnav/internal/domain/model"
	"github.com/okian/skillnav/pkg/logger"
	"github.com/okian/skillnav/pkg/metrics"
)

// FileStore persists uploaded attachments.
type FileStore interface {
	Put(ctx context.Context, kind model.AttachmentKind, filename string, r io.Reader) (model.Attachment, error)
	Delete(ctx context.Context, location string) error
}

// Upload is a file received with a registration. Open is called only once
// the candidate is known to be eligible.
type Upload struct {
	Kind     model.AttachmentKind
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Recommendation is the advice for one candidate.
type Recommendation struct {
	Candidate       string            `json:"candidate"`
	Recommendations map[string]string `json:"recommendations"`
	Findings        []advice.Finding  `json:"findings"`
}

// Service implements the candidate API dependencies.
type Service struct {
	registry repository.Registry
	files    FileStore
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFileStore sets where attachments are written. Without one, uploads
// are rejected.
func WithFileStore(files FileStore) Option {
	return func(s *Service) {
		s.files = files
	}
}

// New constructs a Service over registry.
func New(registry repository.Registry, opts ...Option) *Service {
	s := &Service{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("enrollment")
	}
	return s
}

// Submit validates c, picks its batch, stores the uploads and enrolls it.
// Either every step succeeds or nothing is kept.
func (s *Service) Submit(ctx context.Context, c model.Candidate, uploads []Upload) (model.Candidate, error) {
	if err := c.Validate(); err != nil {
		return model.Candidate{}, err
	}
	c.Email = model.NormalizeEmail(c.Email)

	batch, err := allocation.Target(c.Certifications)
	if err != nil {
		metrics.RecordAllocation("none", "no_match")
		return model.Candidate{}, err
	}

	attachments, err := s.store(ctx, uploads)
	if err != nil {
		return model.Candidate{}, err
	}
	c.Attachments = append(c.Attachments, attachments...)

	stored, err := s.registry.Enroll(ctx, c, batch)
	if err != nil {
		s.discard(ctx, attachments)
		return model.Candidate{}, err
	}

	s.logger.Info(ctx, "candidate allocated",
		logger.String("email", stored.Email),
		logger.String("batch", batch.String()),
		logger.Int("attachments", len(attachments)),
	)
	return stored, nil
}

func (s *Service) store(ctx context.Context, uploads []Upload) ([]model.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if s.files == nil {
		return nil, fmt.Errorf("%w: file uploads are not accepted", model.ErrInvalidInput)
	}
	out := make([]model.Attachment, 0, len(uploads))
	for _, u := range uploads {
		att, err := s.storeOne(ctx, u)
		if err != nil {
			s.discard(ctx, out)
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

func (s *Service) storeOne(ctx context.Context, u Upload) (model.Attachment, error) {
	rc, err := u.Open()
	if err != nil {
		return model.Attachment{}, fmt.Errorf("open %s: %w", u.Filename, err)
	}
	defer func() { _ = rc.Close() }()
	return s.files.Put(ctx, u.Kind, u.Filename, rc)
}

func (s *Service) discard(ctx context.Context, attachments []model.Attachment) {
	for _, a := range attachments {
		// Cleanup must run even if the request was cancelled.
		if err := s.files.Delete(context.WithoutCancel(ctx), a.Location); err != nil {
			s.logger.Warn(ctx, "failed to remove attachment", logger.String("location", a.Location), logger.Error(err))
		}
	}
}

// UpdateCompletion overwrites the course completion percentage.
func (s *Service) UpdateCompletion(ctx context.Context, email string, pct float64) (model.Candidate, error) {
	c, err := s.registry.Update(ctx, email, func(c *model.Candidate) error {
		if err := model.ValidateCompletion(pct); err != nil {
			return err
		}
		c.TrainingProgress.CourseCompletion = pct
		return nil
	})
	recordProgress("completion", err)
	return c, err
}

// RecordMcq appends an MCQ result.
func (s *Service) RecordMcq(ctx context.Context, email string, score model.McqScore) (model.Candidate, error) {
	c, err := s.registry.Update(ctx, email, func(c *model.Candidate) error {
		if err := score.Validate(); err != nil {
			return err
		}
		c.TrainingProgress.McqScores = append(c.TrainingProgress.McqScores, score)
		return nil
	})
	recordProgress("mcq", err)
	return c, err
}

// RecordProjectEvaluation appends a project evaluation.
func (s *Service) RecordProjectEvaluation(ctx context.Context, email string, eval model.ProjectEvaluation) (model.Candidate, error) {
	c, err := s.registry.Update(ctx, email, func(c *model.Candidate) error {
		if err := eval.Validate(); err != nil {
			return err
		}
		c.TrainingProgress.ProjectEvaluations = append(c.TrainingProgress.ProjectEvaluations, eval)
		return nil
	})
	recordProgress("project", err)
	return c, err
}

func recordProgress(kind string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, model.ErrInvalidInput):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordProgressUpdate(kind, outcome)
}

// Recommendations evaluates the advice rules for a candidate.
func (s *Service) Recommendations(ctx context.Context, email string) (Recommendation, error) {
	c, err := s.registry.Get(ctx, email)
	if err != nil {
		return Recommendation{}, err
	}
	rec := Recommendation{
		Candidate:       c.Name,
		Recommendations: advice.Recommend(c.TrainingProgress),
		Findings:        advice.Findings(c.TrainingProgress),
	}
	metrics.RecordRecommendation(rec.Recommendations[advice.KeyFocusArea])
	return rec, nil
}

// Candidate returns one registered candidate.
func (s *Service) Candidate(ctx context.Context, email string) (model.Candidate, error) {
	return s.registry.Get(ctx, email)
}

// Batches lists every batch with its candidates in enrollment order.
func (s *Service) Batches(ctx context.Context) map[model.Batch][]model.Candidate {
	return s.registry.Batches(ctx)
}

// GetStats returns service statistics.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	sizes := make(map[string]int, len(model.Batches()))
	for _, b := range model.Batches() {
		sizes[b.String()] = s.registry.Size(ctx, b)
	}
	return map[string]interface{}{
		"candidates":     s.registry.Count(ctx),
		"batch_capacity": s.registry.Capacity(),
		"batch_sizes":    sizes,
	}
}
