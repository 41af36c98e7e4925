// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/skillnav/internal/adapters/http/site"
	"github.com/okian/skillnav/internal/adapters/http/swagger"
	"github.com/okian/skillnav/pkg/logger"
)

// StatsProvider supplies the /stats document.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxUploadBytes = 32 << 20
)

type routerConfig struct {
	allowedOrigins []string
	requestTimeout time.Duration
	maxUploadBytes int64
	logger         logger.Logger
}

// Option configures a router.
type Option func(*routerConfig)

// WithAllowedOrigins sets the CORS origins. Empty means any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(c *routerConfig) {
		if len(origins) > 0 {
			c.allowedOrigins = origins
		}
	}
}

// WithRequestTimeout bounds every request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *routerConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithMaxUploadBytes limits the size of a registration form.
func WithMaxUploadBytes(n int64) Option {
	return func(c *routerConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) Option {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) routerConfig {
	c := routerConfig{
		allowedOrigins: []string{"*"},
		requestTimeout: defaultRequestTimeout,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("http")
	}
	return c
}

// newRouter builds the middleware stack and the routes every service
// shares: welcome, health, stats and docs.
func newRouter(c routerConfig, welcome string, stats StatsProvider) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(c.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(c.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware)

	ctx := context.Background()
	site.Register(ctx, r, welcome)
	swagger.Register(ctx, r)
	r.Get("/healthz", NewHealthHandler().HandleHealth)
	r.Get("/stats", NewStatsHandler(stats).HandleStats)
	return r
}

type messageResponse struct {
	Message string `json:"message"`
	Batch   string `json:"batch,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeJSON(w, status, errorResponse{Code: code, Message: messageOf(err)})
}

// emailParam reads the {email} path segment.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		raw = email
	}
	return strings.TrimSpace(raw)
}
