package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/ports"
)

// AnthropicClient implements ports.JudgmentClient with the Messages API.
type AnthropicClient struct {
	client       anthropic.Client
	model        string
	systemPrompt string
}

var _ ports.JudgmentClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client; extra request options are appended
// after the API key (tests point it at a local server with option.WithBaseURL).
func NewAnthropicClient(cfg config.JudgeConfig, opts ...option.RequestOption) *AnthropicClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	reqOpts = append(reqOpts, opts...)
	return &AnthropicClient{
		client:       anthropic.NewClient(reqOpts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Complete sends one user turn and concatenates the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, in ports.JudgmentRequest) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(in.MaxTokens),
		Temperature: anthropic.Float(in.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: safePrompt(in.System, c.systemPrompt)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(in.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
