package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mohammad-safakhou/scout/config"
)

type anthropicClient struct {
	name   string
	client anthropic.Client
	cfg    config.LLMProvider
}

func newAnthropicClient(name string, cfg config.LLMProvider) *anthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{name: name, client: anthropic.NewClient(opts...), cfg: cfg}
}

func (c *anthropicClient) Name() string { return c.name }

func (c *anthropicClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	maxTokens := int64(c.cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	content := ""
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("anthropic completion: empty response")
	}
	return content, nil
}

func (c *anthropicClient) Models() []string {
	if len(c.cfg.Models) > 0 {
		return c.cfg.Models
	}
	return []string{"claude-sonnet-4-20250514", "claude-3-5-haiku-latest"}
}

func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}
