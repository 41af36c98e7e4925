// Package feedback classifies free-text feedback with a trained sentiment
// model.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	model "github.com/okian/skillnav/internal/domain/model"
	"github.com/okian/skillnav/internal/domain/sentiment"
	"github.com/okian/skillnav/pkg/logger"
	"github.com/okian/skillnav/pkg/metrics"
)

const collaborator = "classifier"

// Classifier predicts a label for a piece of text.
type Classifier interface {
	Predict(text string) (string, error)
}

// Service serves sentiment predictions.
type Service struct {
	classifier Classifier
	logger     logger.Logger

	predictions atomic.Int64
	failures    atomic.Int64
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

// New returns a Service over classifier.
func New(classifier Classifier, opts ...Option) *Service {
	s := &Service{classifier: classifier}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("feedback")
	}
	return s
}

// Predict returns the sentiment label for text.
func (s *Service) Predict(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", model.ErrInvalidInput)
	}
	if s.classifier == nil {
		return "", sentiment.ErrModelNotLoaded
	}

	start := time.Now()
	label, err := s.classifier.Predict(text)
	metrics.RecordExternalCall(collaborator, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		s.failures.Add(1)
		if errors.Is(err, sentiment.ErrEmptyText) {
			return "", fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
		}
		s.logger.Error(ctx, "prediction failed", logger.Error(err))
		return "", err
	}

	s.predictions.Add(1)
	metrics.RecordPrediction(label)
	s.logger.Debug(ctx, "feedback classified",
		logger.String("sentiment", label),
		logger.Int("length", len(text)),
	)
	return label, nil
}

// GetStats returns service statistics.
func (s *Service) GetStats(_ context.Context) map[string]interface{} {
	return map[string]interface{}{
		"model_loaded": s.classifier != nil,
		"predictions":  s.predictions.Load(),
		"failures":     s.failures.Load(),
	}
}
