package provider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mohammad-safakhou/scout/config"
)

type openAIClient struct {
	name   string
	client *openai.Client
	cfg    config.LLMProvider
}

func newOpenAIClient(name string, cfg config.LLMProvider) *openAIClient {
	var client *openai.Client
	if cfg.BaseURL != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		oc.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(oc)
	} else {
		client = openai.NewClient(cfg.APIKey)
	}
	return &openAIClient{name: name, client: client, cfg: cfg}
}

func (c *openAIClient) Name() string { return c.name }

func (c *openAIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.cfg.MaxTokens > 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) Models() []string {
	if len(c.cfg.Models) > 0 {
		return c.cfg.Models
	}
	return []string{"gpt-4o", "gpt-4o-mini"}
}

func (c *openAIClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}
