package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/metrics"
	"IdeaValidator/internal/ports"
)

const (
	promptBodyLimit    = 800
	promptCommentLimit = 200
	promptComments     = 5
)

var tracer trace.Tracer = otel.Tracer("IdeaValidator/usecase")

// signalFields lists every key the judgment service must return.
var signalFields = []string{
	"pain_score",
	"business_context",
	"willingness_to_pay",
	"frequency",
	"people_affected",
	"key_pain_indicators",
	"me_too_count",
	"existing_solutions",
	"solution_gaps",
	"recommendation",
	"reasoning",
}

// Extraction is the outcome of judging one item: exactly one of Record and
// Reason is set.
type Extraction struct {
	Record *domain.SignalRecord
	Reason error
}

// Valid reports whether a record was produced.
func (e Extraction) Valid() bool {
	return e.Record != nil
}

// Extractor turns content items into scored signal records via the judgment service.
type Extractor struct {
	judge   ports.JudgmentClient
	cfg     config.JudgeConfig
	weights Weights
	metrics *metrics.Manager
	logger  *slog.Logger
}

// NewExtractor wires the judgment client with generation settings.
func NewExtractor(judge ports.JudgmentClient, cfg config.JudgeConfig, m *metrics.Manager, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		judge:   judge,
		cfg:     cfg,
		weights: DefaultWeights(),
		metrics: m,
		logger:  log,
	}
}

// Extract judges a single item. Failures are reported in the Reason and
// wrap domain.ErrExtraction; they never abort the caller.
func (e *Extractor) Extract(ctx context.Context, item domain.ContentItem) Extraction {
	ctx, span := tracer.Start(ctx, "extract", trace.WithAttributes(
		attribute.String("item.id", item.ID),
		attribute.String("item.subreddit", item.Subreddit),
	))
	defer span.End()

	fail := func(took time.Duration, err error) Extraction {
		err = fmt.Errorf("%w: item %s: %w", domain.ErrExtraction, item.ID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		e.metrics.Extraction(metrics.OutcomeFailed, took)
		e.logger.Warn("extraction failed", "id", item.ID, "error", err)
		return Extraction{Reason: err}
	}

	if e.judge == nil {
		return fail(0, errors.New("judgment client is not configured"))
	}

	started := time.Now()
	raw, err := e.judge.Complete(ctx, ports.JudgmentRequest{
		System:      e.cfg.SystemPrompt,
		Prompt:      BuildPrompt(item),
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	took := time.Since(started)
	if err != nil {
		return fail(took, fmt.Errorf("judge call: %w", err))
	}

	signal, err := ParseSignal(raw)
	if err != nil {
		return fail(took, err)
	}

	record := &domain.SignalRecord{
		Signal:           signal,
		OpportunityScore: e.weights.Score(item, signal),
	}
	if record.OpportunityScore < 0 || record.OpportunityScore > MaxOpportunityScore {
		return fail(took, fmt.Errorf("%w: %d out of range", domain.ErrScoreComputation, record.OpportunityScore))
	}

	span.SetAttributes(attribute.Int("opportunity.score", record.OpportunityScore))
	e.metrics.Extraction(metrics.OutcomeOK, took)
	e.logger.Debug("item judged", "id", item.ID, "score", record.OpportunityScore, "recommendation", signal.Recommendation)
	return Extraction{Record: record}
}

// BuildPrompt renders the fixed-shape judgment prompt for an item.
func BuildPrompt(item domain.ContentItem) string {
	var sb strings.Builder
	sb.WriteString("Analyze this post for a SaaS opportunity. Return ONLY a JSON object.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", item.Title)
	fmt.Fprintf(&sb, "Subreddit: r/%s\n", item.Subreddit)
	fmt.Fprintf(&sb, "Score: %d\n", item.Score)
	fmt.Fprintf(&sb, "Body: %s\n\n", clip(item.Body, promptBodyLimit))
	sb.WriteString("Top comments:\n")

	comments := item.Comments
	if len(comments) > promptComments {
		comments = comments[:promptComments]
	}
	if len(comments) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, c := range comments {
		fmt.Fprintf(&sb, "- \"%s\" (score: %d)\n", clip(c.Text, promptCommentLimit), c.Score)
	}

	sb.WriteString(`
Return exactly these fields:
{
  "pain_score": 0-100,
  "business_context": true/false,
  "willingness_to_pay": "high/medium/low/none",
  "frequency": "daily/weekly/monthly",
  "people_affected": number,
  "key_pain_indicators": ["phrase"],
  "me_too_count": number,
  "existing_solutions": ["name"],
  "solution_gaps": ["phrase"],
  "recommendation": "strong_opportunity/moderate/weak/skip",
  "reasoning": "brief"
}`)
	return sb.String()
}

// StripFences removes an optional markdown code fence around a response.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseSignal decodes a judgment response. Every field is required and must
// have the expected JSON type; extra keys are ignored.
func ParseSignal(raw string) (domain.Signal, error) {
	body := StripFences(raw)
	if body == "" {
		return domain.Signal{}, errors.New("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return domain.Signal{}, fmt.Errorf("decode response: %w", err)
	}
	for _, key := range signalFields {
		value, ok := fields[key]
		if !ok {
			return domain.Signal{}, fmt.Errorf("missing field %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return domain.Signal{}, fmt.Errorf("field %q is null", key)
		}
	}

	var (
		s   domain.Signal
		err error
	)
	if s.PainScore, err = intField(fields, "pain_score", 0, 100); err != nil {
		return domain.Signal{}, err
	}
	if err = json.Unmarshal(fields["business_context"], &s.BusinessContext); err != nil {
		return domain.Signal{}, fieldError("business_context", err)
	}

	var wtp, freq, rec string
	for key, dst := range map[string]*string{
		"willingness_to_pay": &wtp,
		"frequency":          &freq,
		"recommendation":     &rec,
		"reasoning":          &s.Reasoning,
	} {
		if err = json.Unmarshal(fields[key], dst); err != nil {
			return domain.Signal{}, fieldError(key, err)
		}
	}
	s.WillingnessToPay = domain.WillingnessToPay(normalizeEnum(wtp))
	s.Frequency = domain.Frequency(normalizeEnum(freq))
	s.Recommendation = domain.Recommendation(normalizeEnum(rec))

	if s.PeopleAffected, err = countField(fields, "people_affected"); err != nil {
		return domain.Signal{}, err
	}
	if s.MeTooCount, err = countField(fields, "me_too_count"); err != nil {
		return domain.Signal{}, err
	}

	for key, dst := range map[string]*[]string{
		"key_pain_indicators": &s.KeyPainIndicators,
		"existing_solutions":  &s.ExistingSolutions,
		"solution_gaps":       &s.SolutionGaps,
	} {
		if err = json.Unmarshal(fields[key], dst); err != nil {
			return domain.Signal{}, fieldError(key, err)
		}
	}
	return s, nil
}

func intField(fields map[string]json.RawMessage, key string, lo, hi float64) (int, error) {
	var v float64
	if err := json.Unmarshal(fields[key], &v); err != nil {
		return 0, fieldError(key, err)
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("field %q: %v is not an integer", key, v)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("field %q: %v out of range [%v, %v]", key, v, lo, hi)
	}
	return int(min(v, math.MaxInt32)), nil
}

// countField reads a non-negative integer, clamping values above MaxInt32.
func countField(fields map[string]json.RawMessage, key string) (int, error) {
	return intField(fields, key, 0, math.Inf(1))
}

func fieldError(key string, err error) error {
	return fmt.Errorf("field %q: %w", key, err)
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
