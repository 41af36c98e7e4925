// Package bootstrap holds the process lifecycle shared by the service
// binaries: config and logging setup, the HTTP server loop with graceful
// shutdown, and the runtime metrics updater.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/skillnav/internal/config"
	"github.com/okian/skillnav/pkg/logger"
	"github.com/okian/skillnav/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Init loads configuration and initializes the global logger from it.
// Errors are written to stderr by the caller since no logger exists yet.
func Init(ctx context.Context) (*config.Config, error) {
	// Default Go collectors would duplicate our own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithEncoding(cfg.LogFormat); err != nil {
		if err := logger.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
		logger.Get().Warn(ctx, "invalid log_format; falling back to console", logger.String("log_format", cfg.LogFormat))
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// Fail reports a startup error and exits.
func Fail(msg string, err error) {
	os.Stderr.WriteString(msg + ": " + err.Error() + "\n")
	os.Exit(1)
}

// Server runs one HTTP handler until its context is cancelled.
type Server struct {
	name         string
	addr         string
	handler      http.Handler
	writeTimeout time.Duration
	logger       logger.Logger

	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithWriteTimeout overrides the response write timeout. Services that
// wait on slow collaborators need more than the default.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener serves on an existing listener instead of addr.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// NewServer creates a server for handler.
func NewServer(name, addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		name:         name,
		addr:         addr,
		handler:      handler,
		writeTimeout: writeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(name)
	}
	return s
}

// Run serves until ctx is done, then shuts down gracefully. It returns the
// listen error if the server could not start.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Info(ctx, "starting HTTP server", logger.String("addr", s.listener.Addr().String()))
			err = srv.Serve(s.listener)
		} else {
			s.logger.Info(ctx, "starting HTTP server", logger.String("addr", s.addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: http server failed: %w", s.name, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "server stopped")
	return nil
}

// StartSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func StartSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}

// UpdateSystemMetrics samples memory, goroutines and GC pauses once.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
