package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "SKILLNAV_"
	envConfigFile = envPrefix + "CONFIG"
	envDotEnvFile = envPrefix + "ENV_FILE"
	envGeminiKey  = "GEMINI_API_KEY"
	nestedDelim   = "__"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SKILLNAV_CONFIG is set
//  3. env (prefix SKILLNAV_, "__" separates nested keys)
//
// A .env file (SKILLNAV_ENV_FILE, default ".env") is read into the process
// environment first when it exists; variables already set win.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(path, err)
		}
	}

	// SKILLNAV_REPORTS__GEMINI_MODEL -> reports.gemini_model
	// SKILLNAV_LOG_LEVEL             -> log_level
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, nestedDelim, ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed("env", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed("unmarshal", err)
	}

	if cfg.Reports.GeminiAPIKey == "" {
		cfg.Reports.GeminiAPIKey = os.Getenv(envGeminiKey)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotEnvFile)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return loadFailed(path, err)
	}
	return nil
}

// Validate checks the invariants each service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Candidates.Addr) == "":
		return invalid("candidates.addr must not be empty")
	case strings.TrimSpace(c.Reports.Addr) == "":
		return invalid("reports.addr must not be empty")
	case strings.TrimSpace(c.Sentiment.Addr) == "":
		return invalid("sentiment.addr must not be empty")
	case c.Candidates.BatchCapacity <= 0:
		return invalid("candidates.batch_capacity must be positive, got %d", c.Candidates.BatchCapacity)
	case c.Candidates.MaxUploadMB <= 0:
		return invalid("candidates.max_upload_mb must be positive, got %d", c.Candidates.MaxUploadMB)
	case c.Reports.Temperature < 0 || c.Reports.Temperature > 2:
		return invalid("reports.temperature must be within [0,2], got %v", c.Reports.Temperature)
	case c.Reports.TopP <= 0 || c.Reports.TopP > 1:
		return invalid("reports.top_p must be within (0,1], got %v", c.Reports.TopP)
	case c.Reports.TopK < 0:
		return invalid("reports.top_k must not be negative, got %v", c.Reports.TopK)
	case c.Reports.MaxOutputTokens <= 0:
		return invalid("reports.max_output_tokens must be positive, got %d", c.Reports.MaxOutputTokens)
	case c.Reports.RequestTimeoutMS <= 0:
		return invalid("reports.request_timeout_ms must be positive, got %d", c.Reports.RequestTimeoutMS)
	case c.Reports.WorkerCount <= 0:
		return invalid("reports.worker_count must be positive, got %d", c.Reports.WorkerCount)
	case c.Reports.QueueSize <= 0:
		return invalid("reports.queue_size must be positive, got %d", c.Reports.QueueSize)
	}
	return nil
}
