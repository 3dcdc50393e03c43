package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/metrics"
	"IdeaValidator/internal/ports"
)

const (
	permalinkBase = "https://reddit.com"
	tokenLeeway   = time.Minute
)

// Client implements ports.ContentSource against Reddit's OAuth API using the
// password grant of a script app.
type Client struct {
	cfg     config.RedditConfig
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Manager
	logger  *slog.Logger

	newBackOff func() backoff.BackOff
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

var _ ports.ContentSource = (*Client)(nil)

// NewClient builds a client; httpClient may be nil.
func NewClient(cfg config.RedditConfig, httpClient *http.Client, m *metrics.Manager, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
	c.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = time.Second
		b.MaxElapsedTime = 30 * time.Second
		return b
	}
	return c
}

// Connect authenticates and verifies the identity behind the token.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return &domain.SourceError{Kind: domain.ErrSourceConnection, Err: errors.New("reddit credentials missing")}
	}
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	var me struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, "me", "/api/v1/me", nil, &me); err != nil {
		return &domain.SourceError{Kind: domain.ErrSourceConnection, Err: err}
	}
	c.debug("authenticated", "user", me.Name)
	return nil
}

// Search runs a keyword search restricted to one subreddit.
func (c *Client) Search(ctx context.Context, q ports.SearchQuery) ([]ports.Submission, error) {
	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("restrict_sr", "1")
	params.Set("sort", q.Sort)
	params.Set("t", q.TimeFilter)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("raw_json", "1")

	var resp listing
	path := "/r/" + url.PathEscape(q.Subreddit) + "/search"
	if err := c.getJSON(ctx, "search", path, params, &resp); err != nil {
		return nil, err
	}

	submissions := make([]ports.Submission, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		if child.Kind != kindLink {
			continue
		}
		var post linkData
		if err := json.Unmarshal(child.Data, &post); err != nil {
			c.debug("skip undecodable submission", "subreddit", q.Subreddit, "error", err)
			continue
		}
		submissions = append(submissions, post.toSubmission())
		if q.Limit > 0 && len(submissions) >= q.Limit {
			break
		}
	}
	return submissions, nil
}

// TopComments returns top-level comments sorted by score. Placeholder "more"
// nodes are returned flagged so callers can discard them.
func (c *Client) TopComments(ctx context.Context, submissionID string, limit int) ([]ports.RawComment, error) {
	params := url.Values{}
	params.Set("sort", "top")
	params.Set("depth", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")

	var resp []listing
	if err := c.getJSON(ctx, "comments", "/comments/"+url.PathEscape(submissionID), params, &resp); err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("comments %s: expected post and comment listings, got %d", submissionID, len(resp))
	}

	comments := make([]ports.RawComment, 0, len(resp[1].Data.Children))
	for _, child := range resp[1].Data.Children {
		switch child.Kind {
		case kindComment:
			var data commentData
			if err := json.Unmarshal(child.Data, &data); err != nil {
				continue
			}
			comments = append(comments, ports.RawComment{
				Body:  renderText(data.BodyHTML, data.Body),
				Score: data.Score,
			})
		case kindMore:
			comments = append(comments, ports.RawComment{Placeholder: true})
		}
	}
	return comments, nil
}

func (c *Client) authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.SourceError{Kind: domain.ErrSourceConnection, Err: fmt.Errorf("build auth request: %w", err)}
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent())

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.SourceRequest("auth", c.now().Sub(started), err)
		return &domain.SourceError{Kind: domain.ErrSourceConnection, Err: fmt.Errorf("request token: %w", err)}
	}
	defer resp.Body.Close()

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if resp.StatusCode != http.StatusOK {
		err = statusErrorFrom(resp)
	} else if decodeErr := json.NewDecoder(resp.Body).Decode(&token); decodeErr != nil {
		err = fmt.Errorf("decode token: %w", decodeErr)
	} else if token.AccessToken == "" {
		err = fmt.Errorf("token rejected: %s", token.Error)
	}
	c.metrics.SourceRequest("auth", c.now().Sub(started), err)
	if err != nil {
		return &domain.SourceError{Kind: domain.ErrSourceConnection, Err: err}
	}

	c.mu.Lock()
	c.token = token.AccessToken
	c.expiresAt = c.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.mu.Unlock()
	return nil
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.Unlock()

	if token != "" && c.now().Add(tokenLeeway).Before(expiresAt) {
		return token, nil
	}
	if err := c.authenticate(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// getJSON performs a paced, retried GET against the OAuth API host.
func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, v any) error {
	endpoint := strings.TrimSuffix(c.cfg.APIURL, "/") + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	op := func() error {
		token, err := c.bearer(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		started := c.now()
		err = c.doGet(ctx, endpoint, token, v)
		c.metrics.SourceRequest(operation, c.now().Sub(started), err)
		if err == nil {
			return nil
		}

		var status *statusError
		if errors.As(err, &status) && status.Code == http.StatusUnauthorized {
			c.invalidateToken()
			return err
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		c.debug("retrying reddit request", "operation", operation, "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(max(c.cfg.MaxRetries, 0))), ctx)
	return backoff.Retry(op, b)
}

func (c *Client) doGet(ctx context.Context, endpoint, token string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusErrorFrom(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) userAgent() string {
	if c.cfg.Username == "" {
		return c.cfg.UserAgent
	}
	return fmt.Sprintf("%s (by /u/%s)", c.cfg.UserAgent, c.cfg.Username)
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("reddit returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("reddit returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func statusErrorFrom(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
