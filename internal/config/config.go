package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultTimezone = "UTC"

	JudgeProviderGroq      = "groq"
	JudgeProviderOpenAI    = "openai"
	JudgeProviderAnthropic = "anthropic"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `koanf:"logging"`
	Reddit        RedditConfig       `koanf:"reddit"`
	Judge         JudgeConfig        `koanf:"judge"`
	Fetch         FetchConfig        `koanf:"fetch"`
	Pipeline      PipelineConfig     `koanf:"pipeline"`
	Server        ServerConfig       `koanf:"server"`
	Scheduler     SchedulerConfig    `koanf:"scheduler"`
	Notifications NotificationConfig `koanf:"notifications"`
	Metrics       MetricsConfig      `koanf:"metrics"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// RedditConfig carries OAuth credentials and client pacing.
type RedditConfig struct {
	AuthURL           string        `koanf:"auth_url"`
	APIURL            string        `koanf:"api_url"`
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	Username          string        `koanf:"username"`
	Password          string        `koanf:"password"`
	UserAgent         string        `koanf:"user_agent"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	MaxRetries        int           `koanf:"max_retries"`
}

// JudgeConfig defines how to contact the language model that scores posts.
type JudgeConfig struct {
	Provider     string        `koanf:"provider"`
	Endpoint     string        `koanf:"endpoint"`
	Model        string        `koanf:"model"`
	APIKey       string        `koanf:"api_key"`
	SystemPrompt string        `koanf:"system_prompt"`
	Temperature  float64       `koanf:"temperature"`
	MaxTokens    int           `koanf:"max_tokens"`
	Timeout      time.Duration `koanf:"timeout"`
}

// FetchConfig holds the quality thresholds of the fetch stage.
type FetchConfig struct {
	SearchLimit      int    `koanf:"search_limit"`
	Sort             string `koanf:"sort"`
	TimeFilter       string `koanf:"time_filter"`
	MinScore         int    `koanf:"min_score"`
	MinBodyLength    int    `koanf:"min_body_length"`
	MaxBodyLength    int    `koanf:"max_body_length"`
	MaxComments      int    `koanf:"max_comments"`
	MaxCommentLength int    `koanf:"max_comment_length"`
	MinComments      int    `koanf:"min_comments"`
}

// PipelineConfig bounds a single category analysis.
type PipelineConfig struct {
	DefaultLimit   int `koanf:"default_limit"`
	MaxLimit       int `koanf:"max_limit"`
	ExtractWorkers int `koanf:"extract_workers"`
	DisplayTop     int `koanf:"display_top"`
}

// ServerConfig configures the JSON API.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Debug           bool          `koanf:"debug"`
}

// SchedulerConfig defines when watched categories are re-analyzed.
type SchedulerConfig struct {
	CronExpression string         `koanf:"cron_expression"`
	Timezone       string         `koanf:"timezone"`
	Categories     []string       `koanf:"categories"`
	location       *time.Location `koanf:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig names the Prometheus collectors. Empty buckets keep the
// built-in latency buckets.
type MetricsConfig struct {
	Namespace      string    `koanf:"namespace"`
	LatencyBuckets []float64 `koanf:"latency_buckets"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `koanf:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Reddit: RedditConfig{
			AuthURL:           "https://www.reddit.com/api/v1/access_token",
			APIURL:            "https://oauth.reddit.com",
			UserAgent:         "go:ideavalidator:v1",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
			MaxRetries:        2,
		},
		Judge: JudgeConfig{
			Provider:     JudgeProviderGroq,
			SystemPrompt: "Return only JSON.",
			Temperature:  0.2,
			MaxTokens:    600,
			Timeout:      30 * time.Second,
		},
		Fetch: FetchConfig{
			SearchLimit:      10,
			Sort:             "hot",
			TimeFilter:       "month",
			MinScore:         2,
			MinBodyLength:    20,
			MaxBodyLength:    1000,
			MaxComments:      5,
			MaxCommentLength: 200,
			MinComments:      2,
		},
		Pipeline: PipelineConfig{
			DefaultLimit:   20,
			MaxLimit:       50,
			ExtractWorkers: 3,
			DisplayTop:     15,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			Categories:     []string{"general"},
		},
		Metrics: MetricsConfig{Namespace: "ideavalidator"},
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("unknown scheduler timezone, using default", "timezone", tz, "default", defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// applyJudgeDefaults fills endpoint and model for the chosen provider.
func (c *Config) applyJudgeDefaults() {
	c.Judge.Provider = strings.ToLower(strings.TrimSpace(c.Judge.Provider))
	switch c.Judge.Provider {
	case JudgeProviderGroq:
		if c.Judge.Endpoint == "" {
			c.Judge.Endpoint = "https://api.groq.com/openai/v1/chat/completions"
		}
		if c.Judge.Model == "" {
			c.Judge.Model = "llama-3.3-70b-versatile"
		}
	case JudgeProviderOpenAI:
		if c.Judge.Endpoint == "" {
			c.Judge.Endpoint = "https://api.openai.com/v1/chat/completions"
		}
		if c.Judge.Model == "" {
			c.Judge.Model = "gpt-4o-mini"
		}
	case JudgeProviderAnthropic:
		if c.Judge.Model == "" {
			c.Judge.Model = "claude-3-5-haiku-latest"
		}
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Judge.Provider {
	case JudgeProviderGroq, JudgeProviderOpenAI, JudgeProviderAnthropic:
	default:
		return fmt.Errorf("%w: unknown judge provider %q", ErrInvalidConfig, c.Judge.Provider)
	}
	if c.Judge.MaxTokens <= 0 {
		return fmt.Errorf("%w: judge.max_tokens must be positive", ErrInvalidConfig)
	}
	if c.Reddit.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: reddit.requests_per_second must be positive", ErrInvalidConfig)
	}
	if c.Fetch.SearchLimit <= 0 || c.Fetch.MaxComments <= 0 {
		return fmt.Errorf("%w: fetch.search_limit and fetch.max_comments must be positive", ErrInvalidConfig)
	}
	if c.Pipeline.MaxLimit <= 0 || c.Pipeline.DefaultLimit <= 0 {
		return fmt.Errorf("%w: pipeline limits must be positive", ErrInvalidConfig)
	}
	if c.Pipeline.ExtractWorkers <= 0 {
		return fmt.Errorf("%w: pipeline.extract_workers must be positive", ErrInvalidConfig)
	}
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("%w: metrics.namespace must not be empty", ErrInvalidConfig)
	}
	for i := 1; i < len(c.Metrics.LatencyBuckets); i++ {
		if c.Metrics.LatencyBuckets[i] <= c.Metrics.LatencyBuckets[i-1] {
			return fmt.Errorf("%w: metrics.latency_buckets must be increasing", ErrInvalidConfig)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	return nil
}
