package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/skillnav/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		clearConfigEnvVars()
		defer clearConfigEnvVars()
		// Point .env lookup at a file that does not exist unless a case writes it.
		_ = os.Setenv("SKILLNAV_ENV_FILE", filepath.Join(dir, "missing.env"))

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Candidates.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.Reports.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.Reports.GeminiAPIKey, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKILLNAV_LOG_LEVEL", "debug")
			_ = os.Setenv("SKILLNAV_CANDIDATES__ADDR", ":9000")
			_ = os.Setenv("SKILLNAV_CANDIDATES__BATCH_CAPACITY", "5")
			_ = os.Setenv("SKILLNAV_REPORTS__GEMINI_MODEL", "gemini-2.5-flash")
			_ = os.Setenv("SKILLNAV_REPORTS__WORKER_COUNT", "16")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Candidates.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.Candidates.BatchCapacity, convey.ShouldEqual, 5)
				convey.So(cfg.Reports.GeminiModel, convey.ShouldEqual, "gemini-2.5-flash")
				convey.So(cfg.Reports.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.Reports.QueueSize, convey.ShouldEqual, 64) // default kept
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
log_level: warn
candidates:
  addr: ":7000"
  upload_url: "/var/lib/skillnav/uploads"
reports:
  request_timeout_ms: 5000
sentiment:
  model_url: "file:///models/sentiment.json"
`
			_ = os.Setenv("SKILLNAV_CONFIG", writeFile(t, dir, "config.yaml", yamlContent))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.Candidates.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.Candidates.UploadURL, convey.ShouldEqual, "/var/lib/skillnav/uploads")
				convey.So(cfg.Candidates.BatchCapacity, convey.ShouldEqual, 30)
				convey.So(cfg.Reports.RequestTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.Sentiment.ModelURL, convey.ShouldEqual, "file:///models/sentiment.json")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeFile(t, dir, "config.yaml", "candidates:\n  addr: \":7000\"\n  batch_capacity: 10\n")
			_ = os.Setenv("SKILLNAV_CONFIG", path)
			_ = os.Setenv("SKILLNAV_CANDIDATES__ADDR", ":7100")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Candidates.Addr, convey.ShouldEqual, ":7100")    // env
				convey.So(cfg.Candidates.BatchCapacity, convey.ShouldEqual, 10) // file
			})
		})

		convey.Convey("When a .env file provides the Gemini key", func() {
			_ = os.Setenv("SKILLNAV_ENV_FILE", writeFile(t, dir, "test.env", "GEMINI_API_KEY=from-dotenv\n"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then the reports key should be taken from it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Reports.GeminiAPIKey, convey.ShouldEqual, "from-dotenv")
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			_ = os.Setenv("SKILLNAV_CONFIG", writeFile(t, dir, "broken.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("SKILLNAV_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an env var breaks validation", func() {
			_ = os.Setenv("SKILLNAV_REPORTS__TOP_P", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"SKILLNAV_CONFIG",
		"SKILLNAV_ENV_FILE",
		"SKILLNAV_LOG_LEVEL",
		"SKILLNAV_CANDIDATES__ADDR",
		"SKILLNAV_CANDIDATES__BATCH_CAPACITY",
		"SKILLNAV_REPORTS__GEMINI_MODEL",
		"SKILLNAV_REPORTS__WORKER_COUNT",
		"SKILLNAV_REPORTS__TOP_P",
		"GEMINI_API_KEY",
	} {
		_ = os.Unsetenv(key)
	}
}
