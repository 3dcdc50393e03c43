package app

import (
	"errors"
	"strings"
	"testing"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/infrastructure/llm"
	"IdeaValidator/internal/logging"
)

func TestNewJudgeSelectsProvider(t *testing.T) {
	t.Parallel()

	cases := []struct {
		provider string
		check    func(any) bool
	}{
		{provider: config.JudgeProviderGroq, check: func(v any) bool { _, ok := v.(*llm.ChatClient); return ok }},
		{provider: config.JudgeProviderOpenAI, check: func(v any) bool { _, ok := v.(*llm.ChatClient); return ok }},
		{provider: config.JudgeProviderAnthropic, check: func(v any) bool { _, ok := v.(*llm.AnthropicClient); return ok }},
	}
	for _, tc := range cases {
		judge, err := newJudge(config.JudgeConfig{Provider: tc.provider})
		if err != nil {
			t.Fatalf("%s: %v", tc.provider, err)
		}
		if !tc.check(judge) {
			t.Fatalf("%s: unexpected judge %T", tc.provider, judge)
		}
	}

	if _, err := newJudge(config.JudgeConfig{Provider: "oracle"}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestNewWiresApplication(t *testing.T) {
	t.Parallel()

	application, err := New(config.New(), logging.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if application.Catalog().DefaultName() != "general" {
		t.Fatalf("unexpected default category %q", application.Catalog().DefaultName())
	}
	if got := application.Matcher().Rank(domain.UserProfile{Background: "developer"}); len(got) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(got))
	}
}

func TestNewAppliesMetricsConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.Metrics.Namespace = "founders"
	application, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	families, err := application.Metrics().Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "founders_") {
			t.Fatalf("metric %q ignores the configured namespace", mf.GetName())
		}
	}
}
