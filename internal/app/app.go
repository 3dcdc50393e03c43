package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"IdeaValidator/internal/api"
	"IdeaValidator/internal/config"
	"IdeaValidator/internal/infrastructure/llm"
	"IdeaValidator/internal/infrastructure/reddit"
	"IdeaValidator/internal/infrastructure/scheduler"
	"IdeaValidator/internal/infrastructure/telegram"
	"IdeaValidator/internal/logging"
	"IdeaValidator/internal/metrics"
	"IdeaValidator/internal/ports"
	"IdeaValidator/internal/scanner"
	"IdeaValidator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Manager
	catalog  *config.Catalog
	source   ports.ContentSource
	pipeline *usecase.Pipeline
	matcher  *usecase.Matcher
}

// New builds the application from configuration.
func New(cfg *config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	m := metrics.NewManager(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithHistogramBuckets(cfg.Metrics.LatencyBuckets),
	)
	catalog := config.DefaultCatalog()

	source := reddit.NewClient(cfg.Reddit, nil, m, baseLogger.With("component", "source.reddit"))
	fetcher := scanner.NewFetcher(source, catalog, cfg.Fetch, m, baseLogger.With("component", "fetcher"))

	judge, err := newJudge(cfg.Judge)
	if err != nil {
		return nil, err
	}
	extractor := usecase.NewExtractor(judge, cfg.Judge, m, baseLogger.With("component", "extractor"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Catalog:   catalog,
		Config:    cfg.Pipeline,
		Metrics:   m,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		metrics:  m,
		catalog:  catalog,
		source:   source,
		pipeline: pipeline,
		matcher:  usecase.NewMatcher(catalog),
	}, nil
}

func newJudge(cfg config.JudgeConfig) (ports.JudgmentClient, error) {
	switch cfg.Provider {
	case config.JudgeProviderAnthropic:
		return llm.NewAnthropicClient(cfg), nil
	case config.JudgeProviderGroq, config.JudgeProviderOpenAI:
		return llm.NewChatClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown judge provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}

// Catalog exposes the category table.
func (a *Application) Catalog() *config.Catalog {
	return a.catalog
}

// Metrics exposes the collectors shared by every component.
func (a *Application) Metrics() *metrics.Manager {
	return a.metrics
}

// Matcher exposes the profile matcher.
func (a *Application) Matcher() *usecase.Matcher {
	return a.matcher
}

// Connect verifies the content source credentials up front.
func (a *Application) Connect(ctx context.Context) error {
	return a.source.Connect(ctx)
}

// Analyze runs a single category analysis.
func (a *Application) Analyze(ctx context.Context, category string, limit int) (usecase.RunReport, error) {
	if limit <= 0 {
		limit = a.cfg.Pipeline.DefaultLimit
	}
	if limit > a.cfg.Pipeline.MaxLimit {
		limit = a.cfg.Pipeline.MaxLimit
	}
	return a.pipeline.Analyze(ctx, category, limit)
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	handlers := api.NewHandlers(a.pipeline, a.matcher, a.catalog, a.cfg.Pipeline, a.metrics)
	server := api.NewServer(a.cfg.Server, handlers, a.logger.With("component", "api"))
	return server.Run(ctx)
}

// Watch runs the scheduled analyses until ctx is cancelled. With runNow the
// watched categories are analyzed once before waiting for the schedule.
func (a *Application) Watch(ctx context.Context, runNow bool) error {
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	var notifier ports.Notifier
	if a.cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(a.cfg.Notifications.Telegram)
	}

	watch := usecase.NewScheduler(driver, a.pipeline, notifier, usecase.WatchConfig{
		Categories: a.cfg.Scheduler.Categories,
		Limit:      a.cfg.Pipeline.DefaultLimit,
		DigestTop:  a.cfg.Pipeline.DisplayTop,
	}, a.logger.With("component", "watch"))

	if err := a.Connect(ctx); err != nil {
		return fmt.Errorf("connect content source: %w", err)
	}
	if runNow {
		watch.RunOnce(ctx, time.Now())
	}
	if err := watch.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching categories",
		"categories", a.cfg.Scheduler.Categories,
		"cron", a.cfg.Scheduler.CronExpression,
		"next", driver.Next(time.Now()))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return watch.Stop(stopCtx)
}
