package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/skillnav/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Candidates.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.Candidates.BatchCapacity, convey.ShouldEqual, 30)
			convey.So(cfg.Reports.Addr, convey.ShouldEqual, ":8001")
			convey.So(cfg.Reports.GeminiModel, convey.ShouldEqual, "gemini-1.5-flash")
			convey.So(cfg.Reports.TopP, convey.ShouldEqual, 0.95)
			convey.So(cfg.Reports.TopK, convey.ShouldEqual, 64)
			convey.So(cfg.Reports.MaxOutputTokens, convey.ShouldEqual, 8192)
			convey.So(cfg.Sentiment.Addr, convey.ShouldEqual, ":8002")
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When batch capacity is zero", func() {
			cfg.Candidates.BatchCapacity = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When top_p is out of range", func() {
			cfg.Reports.TopP = 1.5
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the sentiment address is blank", func() {
			cfg.Sentiment.Addr = "  "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the worker count is negative", func() {
			cfg.Reports.WorkerCount = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
