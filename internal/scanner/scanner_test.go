package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/ports"
)

const testCatalog = `
default: general
categories:
  - name: sales
    subreddits: [sales, startups]
    keywords: [difficult, manual]
    typical_cost: 7000
    backgrounds: {sales: 40}
  - name: general
    subreddits: [startups]
    keywords: [problem, frustrated]
    typical_cost: 2000
    backgrounds: {developer: 20}
`

type fakeSource struct {
	results  map[string][]ports.Submission
	errs     map[string]error
	comments map[string][]ports.RawComment
	queries  []string
}

func pairKey(sub, kw string) string { return sub + "/" + kw }

func (f *fakeSource) Connect(context.Context) error { return nil }

func (f *fakeSource) Search(_ context.Context, q ports.SearchQuery) ([]ports.Submission, error) {
	key := pairKey(q.Subreddit, q.Keyword)
	f.queries = append(f.queries, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeSource) TopComments(_ context.Context, id string, limit int) ([]ports.RawComment, error) {
	if err := f.errs["comments/"+id]; err != nil {
		return nil, err
	}
	return f.comments[id], nil
}

func goodComments() []ports.RawComment {
	return []ports.RawComment{{Body: "me too", Score: 5}, {Body: "same problem here", Score: 3}}
}

func submission(id string, score int) ports.Submission {
	return ports.Submission{
		ID:          id,
		Title:       "title " + id,
		Body:        "We keep losing deals because follow-ups are manual.",
		Permalink:   "https://reddit.com/r/sales/comments/" + id,
		Subreddit:   "sales",
		Score:       score,
		NumComments: 9,
	}
}

func newTestFetcher(t *testing.T, src ports.ContentSource) *Fetcher {
	t.Helper()
	catalog, err := config.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	return NewFetcher(src, catalog, config.New().Fetch, nil, nil)
}

func TestFetchUnknownCategoryUsesDefaultPlan(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	items, err := newTestFetcher(t, src).Fetch(context.Background(), "underwater-basket-weaving", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []string{"startups/problem", "startups/frustrated"}, src.queries)

	general := &fakeSource{}
	_, err = newTestFetcher(t, general).Fetch(context.Background(), "general", 5)
	require.NoError(t, err)
	assert.Equal(t, general.queries, src.queries)
}

func TestFetchStopsAtLimit(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		results: map[string][]ports.Submission{
			"sales/difficult": {submission("a", 10), submission("b", 10)},
			"sales/manual":    {submission("c", 10)},
		},
		comments: map[string][]ports.RawComment{"a": goodComments(), "b": goodComments(), "c": goodComments()},
	}

	items, err := newTestFetcher(t, src).Fetch(context.Background(), "Sales", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, []string{"sales/difficult"}, src.queries, "no query after the limit is reached")
}

func TestFetchAppliesQualityFilters(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 1500)
	lowScore := submission("low", 1)
	empty := submission("empty", 10)
	empty.Body = "   "
	short := submission("short", 10)
	short.Body = "too short"
	removed := submission("removed", 10)
	removed.Body = "[removed]"
	deleted := submission("deleted", 10)
	deleted.Body = "[Deleted]"
	thin := submission("thin", 10)
	keeper := submission("keeper", 10)
	keeper.Body = long

	src := &fakeSource{
		results: map[string][]ports.Submission{
			"sales/difficult": {lowScore, empty, short, removed, deleted, thin, keeper, submission("keeper", 99)},
		},
		comments: map[string][]ports.RawComment{
			"thin": {{Body: "only one", Score: 1}, {Placeholder: true}, {Body: "[deleted]"}},
			"keeper": {
				{Placeholder: true},
				{Body: strings.Repeat("x", 400), Score: 7},
				{Body: "[removed]", Score: 1},
				{Body: "useful", Score: 2},
			},
		},
	}

	items, err := newTestFetcher(t, src).Fetch(context.Background(), "sales", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "keeper", item.ID)
	assert.Equal(t, 1000, len([]rune(item.Body)))
	require.Len(t, item.Comments, 2)
	assert.Equal(t, 200, len(item.Comments[0].Text))
	assert.Equal(t, 7, item.Comments[0].Score)
	assert.Equal(t, "useful", item.Comments[1].Text)
	for _, c := range item.Comments {
		assert.NotEqual(t, "[removed]", c.Text)
	}
}

func TestFetchCapsCommentsBeforeFiltering(t *testing.T) {
	t.Parallel()

	cfg := config.New().Fetch
	cfg.MaxComments = 2
	catalog, err := config.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	src := &fakeSource{
		results: map[string][]ports.Submission{"sales/difficult": {submission("a", 10)}},
		comments: map[string][]ports.RawComment{
			"a": {{Body: "first"}, {Body: "[deleted]"}, {Body: "third"}},
		},
	}
	items, err := NewFetcher(src, catalog, cfg, nil, nil).Fetch(context.Background(), "sales", 5)
	require.NoError(t, err)
	assert.Empty(t, items, "only one usable comment within the first two")
}

func TestFetchSkipsFailedQueries(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		results: map[string][]ports.Submission{
			"sales/manual":    {submission("b", 10), submission("c", 10)},
			"startups/manual": {submission("d", 10)},
		},
		errs: map[string]error{
			"sales/difficult": errors.New("503 service unavailable"),
			"comments/b":      errors.New("timeout"),
		},
		comments: map[string][]ports.RawComment{"c": goodComments(), "d": goodComments()},
	}

	items, err := newTestFetcher(t, src).Fetch(context.Background(), "sales", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "d", items[1].ID)
	assert.Len(t, src.queries, 4)
}

func TestFetchConnectionFailureIsFatal(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		results: map[string][]ports.Submission{"sales/difficult": {submission("a", 10)}},
		errs: map[string]error{
			"sales/manual": &domain.SourceError{Kind: domain.ErrSourceConnection, Err: fmt.Errorf("token refresh rejected")},
		},
		comments: map[string][]ports.RawComment{"a": goodComments()},
	}

	items, err := newTestFetcher(t, src).Fetch(context.Background(), "sales", 10)
	require.Error(t, err)
	assert.True(t, domain.IsSourceConnection(err))
	assert.Nil(t, items)
}

func TestItemsHonoursEarlyBreak(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		results: map[string][]ports.Submission{
			"sales/difficult": {submission("a", 10), submission("b", 10)},
			"sales/manual":    {submission("c", 10)},
		},
		comments: map[string][]ports.RawComment{"a": goodComments(), "b": goodComments(), "c": goodComments()},
	}

	var got []string
	for item, err := range newTestFetcher(t, src).Items(context.Background(), "sales", 10) {
		require.NoError(t, err)
		got = append(got, item.ID)
		break
	}
	assert.Equal(t, []string{"a"}, got)
	assert.Len(t, src.queries, 1)
}

func TestItemsZeroLimit(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	items, err := newTestFetcher(t, src).Fetch(context.Background(), "sales", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, src.queries)
}

func TestPlanOrder(t *testing.T) {
	t.Parallel()

	pairs := Plan(config.Category{Subreddits: []string{"a", "b"}, Keywords: []string{"x", "y"}})
	assert.Equal(t, []Pair{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}}, pairs)
}
