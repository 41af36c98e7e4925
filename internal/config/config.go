// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and the environment.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration shared by all three services.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the zap encoder: console or json.
	LogFormat string `koanf:"log_format"`

	// CORSAllowedOrigins lists origins allowed to call the APIs from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	Candidates CandidatesConfig `koanf:"candidates"`
	Reports    ReportsConfig    `koanf:"reports"`
	Sentiment  SentimentConfig  `koanf:"sentiment"`
}

// CandidatesConfig configures the candidate-details service.
type CandidatesConfig struct {
	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// BatchCapacity caps the number of candidates per batch.
	BatchCapacity int `koanf:"batch_capacity"`

	// UploadURL is the afs base location for uploaded attachments.
	UploadURL string `koanf:"upload_url"`

	// MaxUploadMB bounds the in-memory part of multipart parsing.
	MaxUploadMB int `koanf:"max_upload_mb"`
}

// ReportsConfig configures the AI recommendation report service.
type ReportsConfig struct {
	Addr string `koanf:"addr"`

	GeminiAPIKey    string  `koanf:"gemini_api_key"`
	GeminiModel     string  `koanf:"gemini_model"`
	Temperature     float64 `koanf:"temperature"`
	TopP            float64 `koanf:"top_p"`
	TopK            float64 `koanf:"top_k"`
	MaxOutputTokens int     `koanf:"max_output_tokens"`

	// RequestTimeoutMS bounds one generate+render job.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// WorkerCount and QueueSize size the report job pool.
	WorkerCount int `koanf:"worker_count"`
	QueueSize   int `koanf:"queue_size"`
}

// SentimentConfig configures the feedback classifier service.
type SentimentConfig struct {
	Addr string `koanf:"addr"`

	// ModelURL is the afs location of the serialized classifier.
	ModelURL string `koanf:"model_url"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "console",
		CORSAllowedOrigins: []string{"*"},
		Candidates: CandidatesConfig{
			Addr:          ":8000",
			BatchCapacity: 30,
			UploadURL:     "uploads",
			MaxUploadMB:   32,
		},
		Reports: ReportsConfig{
			Addr:             ":8001",
			GeminiModel:      "gemini-1.5-flash",
			Temperature:      1,
			TopP:             0.95,
			TopK:             64,
			MaxOutputTokens:  8192,
			RequestTimeoutMS: 60_000,
			WorkerCount:      4,
			QueueSize:        64,
		},
		Sentiment: SentimentConfig{
			Addr:     ":8002",
			ModelURL: "sentiment_model.json",
		},
	}
}
