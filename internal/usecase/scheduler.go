package usecase

import (
	"context"
	"log/slog"
	"time"

	"IdeaValidator/internal/ports"
)

// Analyzer runs one category analysis.
type Analyzer interface {
	Analyze(ctx context.Context, category string, limit int) (RunReport, error)
}

// WatchConfig selects what a scheduled tick analyzes and publishes.
type WatchConfig struct {
	Categories []string
	Limit      int
	DigestTop  int
}

// Scheduler wires the cron driver with the pipeline and the digest notifier.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline Analyzer
	notifier ports.Notifier
	cfg      WatchConfig
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring analyses. A nil
// notifier logs digests instead of publishing them.
func NewScheduler(driver ports.Scheduler, pipeline Analyzer, notifier ports.Notifier, cfg WatchConfig, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, notifier: notifier, cfg: cfg, logger: log}
}

// Start registers the watch job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// RunOnce analyzes every watched category in turn. A failed category is
// logged and the rest still run. It returns the number of published digests.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) int {
	published := 0
	for _, category := range s.cfg.Categories {
		if ctx.Err() != nil {
			return published
		}

		report, err := s.pipeline.Analyze(ctx, category, s.cfg.Limit)
		if err != nil {
			s.logger.Error("scheduled analysis failed", "category", category, "trigger", trigger, "error", err)
			continue
		}

		digest := BuildDigest(report, s.cfg.DigestTop)
		if s.notifier == nil {
			s.logger.Info("digest ready", "category", report.Category, "run_id", report.RunID, "digest", digest)
			continue
		}
		if err := s.notifier.PublishDigest(ctx, digest); err != nil {
			s.logger.Error("publish digest failed", "category", report.Category, "run_id", report.RunID, "error", err)
			continue
		}
		published++
	}
	return published
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
