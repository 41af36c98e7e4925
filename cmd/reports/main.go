// Command reports serves AI-written PDF performance reports.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/skillnav/internal/adapters/ai/gemini"
	"github.com/okian/skillnav/internal/adapters/http/api"
	"github.com/okian/skillnav/internal/adapters/pdf"
	"github.com/okian/skillnav/internal/app/reporting"
	"github.com/okian/skillnav/internal/bootstrap"
	"github.com/okian/skillnav/pkg/logger"
)

// The HTTP deadline leaves room to write the error after a job times out.
const responseSlack = 5 * time.Second

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.Init(ctx)
	if err != nil {
		bootstrap.Fail("failed to start", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().Named("reports")

	rc := cfg.Reports
	gen, err := gemini.NewGenerator(ctx, rc.GeminiAPIKey, rc.GeminiModel, gemini.Settings{
		Temperature:     rc.Temperature,
		TopP:            rc.TopP,
		TopK:            rc.TopK,
		MaxOutputTokens: rc.MaxOutputTokens,
	})
	if err != nil {
		log.Error(ctx, "failed to create gemini client", logger.Error(err))
		return
	}

	jobTimeout := time.Duration(rc.RequestTimeoutMS) * time.Millisecond
	svc := reporting.New(gen, pdf.NewRenderer(),
		reporting.WithWorkerCount(rc.WorkerCount),
		reporting.WithQueueSize(rc.QueueSize),
		reporting.WithJobTimeout(jobTimeout),
		reporting.WithLogger(log),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start reporting service", logger.Error(err))
		return
	}
	defer func() {
		if err := svc.Stop(context.Background()); err != nil {
			log.Error(ctx, "reporting service stop failed", logger.Error(err))
		}
	}()

	go bootstrap.StartSystemMetricsUpdater(ctx)

	handler := api.NewReportsRouter(svc, svc,
		api.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		api.WithRequestTimeout(jobTimeout+responseSlack),
	)
	srv := bootstrap.NewServer("reports", rc.Addr, handler,
		bootstrap.WithWriteTimeout(jobTimeout+2*responseSlack),
	)
	if err := srv.Run(ctx); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
	}
}
