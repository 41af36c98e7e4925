package worker

import (
	"time"

	"github.com/okian/skillnav/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithJobTimeout bounds how long a single job may run.
func WithJobTimeout(timeout time.Duration) Option {
	return func(w *InMemoryWorker) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}
