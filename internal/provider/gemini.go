package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/mohammad-safakhou/scout/config"
)

type geminiClient struct {
	name   string
	client *genai.Client
	cfg    config.LLMProvider
}

func newGeminiClient(name string, cfg config.LLMProvider) (*geminiClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiClient{name: name, client: client, cfg: cfg}, nil
}

func (c *geminiClient) Name() string { return c.name }

func (c *geminiClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if c.cfg.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	content := resp.Text()
	if content == "" {
		return "", fmt.Errorf("gemini completion: empty response")
	}
	return content, nil
}

func (c *geminiClient) Models() []string {
	if len(c.cfg.Models) > 0 {
		return c.cfg.Models
	}
	return []string{"gemini-2.0-flash", "gemini-1.5-pro"}
}

func (c *geminiClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}
