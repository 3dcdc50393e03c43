package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/metrics"
)

// ItemFetcher yields quality-filtered items for a category.
type ItemFetcher interface {
	Fetch(ctx context.Context, category string, limit int) ([]domain.ContentItem, error)
}

// SignalJudge produces one extraction per item.
type SignalJudge interface {
	Extract(ctx context.Context, item domain.ContentItem) Extraction
}

// PipelineDeps wires the stages into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher   ItemFetcher
	Extractor SignalJudge
	Catalog   *config.Catalog
	Config    config.PipelineConfig
	Metrics   *metrics.Manager
	Logger    *slog.Logger
}

// RunReport summarizes one category analysis.
type RunReport struct {
	RunID         string                     `json:"run_id"`
	Category      string                     `json:"category"`
	Fetched       int                        `json:"fetched"`
	Extracted     int                        `json:"extracted"`
	Skipped       int                        `json:"skipped"`
	Failed        int                        `json:"failed"`
	Duration      time.Duration              `json:"duration_ns"`
	Opportunities []domain.RankedOpportunity `json:"opportunities"`
}

// Pipeline implements the opportunity-discovery workflow.
type Pipeline struct {
	fetcher   ItemFetcher
	extractor SignalJudge
	catalog   *config.Catalog
	workers   int
	metrics   *metrics.Manager
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Config.ExtractWorkers
	if workers <= 0 {
		workers = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	return &Pipeline{
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		catalog:   catalog,
		workers:   workers,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// Run returns the ranked opportunities for a category. Only source
// connection failures and context errors are returned.
func (p *Pipeline) Run(ctx context.Context, category string, limit int) ([]domain.RankedOpportunity, error) {
	report, err := p.Analyze(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	return report.Opportunities, nil
}

// Analyze fetches, judges, filters and sorts, reporting run statistics.
func (p *Pipeline) Analyze(ctx context.Context, category string, limit int) (RunReport, error) {
	report := RunReport{
		RunID:         uuid.NewString(),
		Category:      p.catalog.Resolve(category),
		Opportunities: []domain.RankedOpportunity{},
	}
	log := p.logger.With("run_id", report.RunID, "category", report.Category)

	ctx, span := tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", report.RunID),
		attribute.String("category", report.Category),
		attribute.Int("limit", limit),
	))
	defer span.End()

	started := time.Now()
	finish := func(outcome string) {
		report.Duration = time.Since(started)
		p.metrics.RunFinished(report.Category, outcome, report.Duration, len(report.Opportunities))
	}

	if p.fetcher == nil {
		finish(metrics.OutcomeSkipped)
		return report, nil
	}

	log.Info("analysis started", "limit", limit)
	items, err := p.fetcher.Fetch(ctx, category, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		finish(metrics.OutcomeFailed)
		log.Error("fetch failed", "error", err)
		return report, fmt.Errorf("fetch %s: %w", report.Category, err)
	}
	report.Fetched = len(items)
	if len(items) == 0 {
		finish(metrics.OutcomeOK)
		log.Info("no items found")
		return report, nil
	}

	results, err := p.extractAll(ctx, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction interrupted")
		finish(metrics.OutcomeFailed)
		return report, err
	}

	for i, res := range results {
		switch {
		case !res.Valid():
			report.Failed++
		case res.Record.Recommendation == domain.RecommendSkip:
			report.Skipped++
		default:
			report.Extracted++
			report.Opportunities = append(report.Opportunities, domain.RankedOpportunity{
				ContentItem: items[i],
				Analysis:    *res.Record,
			})
		}
	}

	sort.SliceStable(report.Opportunities, func(i, j int) bool {
		return report.Opportunities[i].Analysis.OpportunityScore > report.Opportunities[j].Analysis.OpportunityScore
	})

	finish(metrics.OutcomeOK)
	span.SetAttributes(attribute.Int("opportunities", len(report.Opportunities)))
	log.Info("analysis finished",
		"fetched", report.Fetched,
		"kept", report.Extracted,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"took", report.Duration)
	return report, nil
}

// extractAll judges items on a bounded pool. Results keep the index of
// their source item.
func (p *Pipeline) extractAll(ctx context.Context, items []domain.ContentItem) ([]Extraction, error) {
	results := make([]Extraction, len(items))
	if p.extractor == nil {
		for i := range results {
			results[i] = Extraction{Reason: fmt.Errorf("%w: extractor is not configured", domain.ErrExtraction)}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.extractor.Extract(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
