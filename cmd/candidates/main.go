// Command candidates serves candidate registration, batch allocation and
// progress tracking.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/okian/skillnav/internal/adapters/blob"
	"github.com/okian/skillnav/internal/adapters/http/api"
	repository "github.com/okian/skillnav/internal/adapters/repository"
	"github.com/okian/skillnav/internal/app/enrollment"
	"github.com/okian/skillnav/internal/bootstrap"
	"github.com/okian/skillnav/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.Init(ctx)
	if err != nil {
		bootstrap.Fail("failed to start", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().Named("candidates")

	files, err := blob.New(ctx, cfg.Candidates.UploadURL)
	if err != nil {
		log.Error(ctx, "failed to prepare upload storage", logger.String("upload_url", cfg.Candidates.UploadURL), logger.Error(err))
		return
	}

	registry := repository.NewInMemoryRegistry(repository.WithCapacity(cfg.Candidates.BatchCapacity))
	svc := enrollment.New(registry,
		enrollment.WithFileStore(files),
		enrollment.WithLogger(log),
	)

	go bootstrap.StartSystemMetricsUpdater(ctx)

	handler := api.NewCandidatesRouter(svc, svc,
		api.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		api.WithMaxUploadBytes(int64(cfg.Candidates.MaxUploadMB)<<20),
	)

	log.Info(ctx, "candidates service configured",
		logger.Int("batchCapacity", cfg.Candidates.BatchCapacity),
		logger.String("uploadURL", cfg.Candidates.UploadURL),
	)
	if err := bootstrap.NewServer("candidates", cfg.Candidates.Addr, handler).Run(ctx); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
	}
}
