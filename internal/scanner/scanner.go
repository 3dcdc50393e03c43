package scanner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/metrics"
	"IdeaValidator/internal/ports"
)

// Reasons a candidate is dropped, used as metric labels.
const (
	RejectLowScore      = "low_score"
	RejectEmptyBody     = "empty_body"
	RejectShortBody     = "short_body"
	RejectRemoved       = "removed"
	RejectFewComments   = "few_comments"
	RejectCommentsError = "comments_error"
	RejectDuplicate     = "duplicate"
)

var removedSentinels = []string{"[removed]", "[deleted]"}

// Pair is one (subreddit, keyword) query of a category plan.
type Pair struct {
	Subreddit string
	Keyword   string
}

// Plan lists the queries for a category in execution order.
func Plan(cat config.Category) []Pair {
	pairs := make([]Pair, 0, len(cat.Subreddits)*len(cat.Keywords))
	for _, sub := range cat.Subreddits {
		for _, kw := range cat.Keywords {
			pairs = append(pairs, Pair{Subreddit: sub, Keyword: kw})
		}
	}
	return pairs
}

// Fetcher walks a category plan against a content source and yields items
// that pass the quality filters.
type Fetcher struct {
	source  ports.ContentSource
	catalog *config.Catalog
	cfg     config.FetchConfig
	metrics *metrics.Manager
	logger  *slog.Logger
}

// NewFetcher wires the source with the category table and thresholds.
func NewFetcher(source ports.ContentSource, catalog *config.Catalog, cfg config.FetchConfig, m *metrics.Manager, log *slog.Logger) *Fetcher {
	return &Fetcher{
		source:  source,
		catalog: catalog,
		cfg:     cfg,
		metrics: m,
		logger:  log,
	}
}

// Fetch collects at most limit items for category.
func (f *Fetcher) Fetch(ctx context.Context, category string, limit int) ([]domain.ContentItem, error) {
	var items []domain.ContentItem
	for item, err := range f.Items(ctx, category, limit) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Items is a lazy, single-pass sequence of accepted items. It stops after
// limit items, when the consumer stops ranging, or on a fatal error, which is
// yielded once as the last element. Per-query failures are logged and skipped.
func (f *Fetcher) Items(ctx context.Context, category string, limit int) iter.Seq2[domain.ContentItem, error] {
	return func(yield func(domain.ContentItem, error) bool) {
		if limit <= 0 {
			return
		}
		if f.source == nil {
			yield(domain.ContentItem{}, &domain.SourceError{Kind: domain.ErrSourceConnection, Err: errors.New("content source is not configured")})
			return
		}

		resolved := f.catalog.Resolve(category)
		cat := f.catalog.Lookup(resolved)
		f.debug("fetch plan", "category", resolved, "subreddits", cat.Subreddits, "keywords", cat.Keywords, "limit", limit)

		seen := make(map[string]struct{})
		accepted := 0

		for _, pair := range Plan(cat) {
			if err := ctx.Err(); err != nil {
				yield(domain.ContentItem{}, err)
				return
			}

			subs, err := f.source.Search(ctx, ports.SearchQuery{
				Subreddit:  pair.Subreddit,
				Keyword:    pair.Keyword,
				Sort:       f.cfg.Sort,
				TimeFilter: f.cfg.TimeFilter,
				Limit:      f.cfg.SearchLimit,
			})
			if err != nil {
				if fatal(ctx, err) {
					yield(domain.ContentItem{}, err)
					return
				}
				f.warn("query skipped", "error", &domain.SourceError{
					Kind: domain.ErrSourceQuery, Subreddit: pair.Subreddit, Keyword: pair.Keyword, Err: err,
				})
				continue
			}

			for _, sub := range subs {
				if _, dup := seen[sub.ID]; dup {
					f.metrics.ItemRejected(RejectDuplicate)
					continue
				}
				seen[sub.ID] = struct{}{}

				if reason := f.rejectSubmission(sub); reason != "" {
					f.metrics.ItemRejected(reason)
					f.debug("candidate rejected", "id", sub.ID, "reason", reason)
					continue
				}

				item, reason, err := f.buildItem(ctx, pair, sub)
				if err != nil {
					if fatal(ctx, err) {
						yield(domain.ContentItem{}, err)
						return
					}
					f.warn("comments skipped", "id", sub.ID, "error", &domain.SourceError{
						Kind: domain.ErrSourceQuery, Subreddit: pair.Subreddit, Err: err,
					})
					f.metrics.ItemRejected(RejectCommentsError)
					continue
				}
				if reason != "" {
					f.metrics.ItemRejected(reason)
					f.debug("candidate rejected", "id", sub.ID, "reason", reason)
					continue
				}

				f.metrics.ItemFetched(resolved)
				accepted++
				if !yield(item, nil) || accepted >= limit {
					return
				}
			}
		}
		f.debug("fetch plan exhausted", "category", resolved, "accepted", accepted)
	}
}

func (f *Fetcher) rejectSubmission(sub ports.Submission) string {
	if sub.Score < f.cfg.MinScore {
		return RejectLowScore
	}
	body := strings.TrimSpace(sub.Body)
	switch {
	case body == "":
		return RejectEmptyBody
	case isRemoved(body):
		return RejectRemoved
	case utf8.RuneCountInString(body) < f.cfg.MinBodyLength:
		return RejectShortBody
	}
	return ""
}

func (f *Fetcher) buildItem(ctx context.Context, pair Pair, sub ports.Submission) (domain.ContentItem, string, error) {
	raw, err := f.source.TopComments(ctx, sub.ID, f.cfg.MaxComments)
	if err != nil {
		return domain.ContentItem{}, "", fmt.Errorf("comments for %s: %w", sub.ID, err)
	}

	comments := make([]domain.Comment, 0, f.cfg.MaxComments)
	kept := 0
	for _, c := range raw {
		if c.Placeholder {
			continue
		}
		if kept >= f.cfg.MaxComments {
			break
		}
		kept++
		text := strings.TrimSpace(c.Body)
		if text == "" || isRemoved(text) {
			continue
		}
		comments = append(comments, domain.Comment{
			Text:  truncate(text, f.cfg.MaxCommentLength),
			Score: c.Score,
		})
	}
	if len(comments) < f.cfg.MinComments {
		return domain.ContentItem{}, RejectFewComments, nil
	}

	subreddit := sub.Subreddit
	if subreddit == "" {
		subreddit = pair.Subreddit
	}

	return domain.ContentItem{
		ID:          sub.ID,
		Title:       sub.Title,
		Body:        truncate(strings.TrimSpace(sub.Body), f.cfg.MaxBodyLength),
		URL:         sub.Permalink,
		Subreddit:   subreddit,
		Score:       sub.Score,
		NumComments: sub.NumComments,
		CreatedAt:   sub.CreatedUTC,
		Comments:    comments,
	}, "", nil
}

// fatal reports errors that end the whole fetch rather than one query.
func fatal(ctx context.Context, err error) bool {
	return domain.IsSourceConnection(err) || ctx.Err() != nil
}

func isRemoved(text string) bool {
	for _, s := range removedSentinels {
		if strings.EqualFold(text, s) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n runes; n <= 0 disables truncation.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
