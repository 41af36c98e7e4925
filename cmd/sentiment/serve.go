package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/skillnav/internal/adapters/blob"
	"github.com/okian/skillnav/internal/adapters/http/api"
	"github.com/okian/skillnav/internal/app/feedback"
	"github.com/okian/skillnav/internal/bootstrap"
	"github.com/okian/skillnav/internal/domain/sentiment"
	"github.com/okian/skillnav/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /predict_feedback with the configured model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.Init(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().Named(app)

	m, err := loadModel(ctx, cfg.Sentiment.ModelURL)
	if err != nil {
		log.Error(ctx, "refusing to start without a model", logger.String("model_url", cfg.Sentiment.ModelURL), logger.Error(err))
		return err
	}
	log.Info(ctx, "sentiment model loaded",
		logger.String("model_url", cfg.Sentiment.ModelURL),
		logger.Any("labels", m.Labels),
		logger.Int("vocabulary", len(m.Vocabulary)),
	)

	svc := feedback.New(m, feedback.WithLogger(log))

	go bootstrap.StartSystemMetricsUpdater(ctx)

	handler := api.NewSentimentRouter(svc, svc, api.WithAllowedOrigins(cfg.CORSAllowedOrigins))
	return bootstrap.NewServer(app, cfg.Sentiment.Addr, handler).Run(ctx)
}

func loadModel(ctx context.Context, location string) (*sentiment.Model, error) {
	data, err := blob.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrModelNotLoaded, err)
	}
	m, err := sentiment.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrModelNotLoaded, err)
	}
	return m, nil
}
