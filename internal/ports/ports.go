package ports

import (
	"context"
	"time"
)

// SearchQuery selects candidate submissions from one subreddit.
type SearchQuery struct {
	Subreddit  string
	Keyword    string
	Sort       string
	TimeFilter string
	Limit      int
}

// Submission is a raw search hit before quality filtering.
type Submission struct {
	ID          string
	Title       string
	Body        string
	Permalink   string
	Subreddit   string
	Score       int
	NumComments int
	CreatedUTC  time.Time
}

// RawComment is a top-level comment as returned by the source.
// Placeholder nodes ("load more") are flagged rather than dropped.
type RawComment struct {
	Body        string
	Score       int
	Placeholder bool
}

// ContentSource is the content platform the fetch stage reads from.
type ContentSource interface {
	// Connect authenticates once; failures are domain.ErrSourceConnection.
	Connect(ctx context.Context) error
	Search(ctx context.Context, q SearchQuery) ([]Submission, error)
	TopComments(ctx context.Context, submissionID string, limit int) ([]RawComment, error)
}

// JudgmentRequest is one prompt plus generation settings.
type JudgmentRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// JudgmentClient sends a prompt to a language model and returns its raw text.
type JudgmentClient interface {
	Complete(ctx context.Context, req JudgmentRequest) (string, error)
}

// Notifier streams digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring analyses execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
