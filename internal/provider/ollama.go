package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/scout/config"
)

// ollamaClient talks to a local ollama daemon. No API key required, which
// makes it the keyless reference provider.
type ollamaClient struct {
	name    string
	baseURL string
	cfg     config.LLMProvider
	http    *http.Client
}

func newOllamaClient(name string, cfg config.LLMProvider) *ollamaClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ollamaClient{
		name:    name,
		baseURL: base,
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *ollamaClient) Name() string { return c.name }

func (c *ollamaClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama completion: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama completion: status %d", resp.StatusCode)
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama response: %w", err)
	}
	return parsed.Response, nil
}

func (c *ollamaClient) Models() []string {
	if len(c.cfg.Models) > 0 {
		return c.cfg.Models
	}
	return []string{"llama3.1:8b", "qwen2.5:7b", "mistral:7b"}
}

// Available probes the daemon's tag listing with a short timeout.
func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
