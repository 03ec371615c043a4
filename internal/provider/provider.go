// Package provider resolves opaque (provider, model) references to concrete
// LLM completion clients. The research loop never special-cases a vendor; new
// providers are added here without touching the loop or the reducer.
package provider

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

// Ref is an opaque provider/model reference carried by a turn submission.
type Ref struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Client is a single LLM vendor integration.
type Client interface {
	// Name returns the registry name of the provider.
	Name() string

	// Complete sends one prompt and returns the text completion.
	Complete(ctx context.Context, model, prompt string) (string, error)

	// Models lists the models configured for this provider.
	Models() []string

	// Available reports whether the provider is usable right now (key
	// configured, local daemon reachable).
	Available(ctx context.Context) bool
}

// Registry holds the configured providers.
type Registry struct {
	clients map[string]Client
	logger  *log.Logger
}

// NewRegistry builds clients from configuration. Providers with unusable
// configuration are skipped with a log line rather than failing startup.
func NewRegistry(cfg config.LLMConfig, logger *log.Logger) *Registry {
	r := &Registry{clients: make(map[string]Client), logger: logger}
	for name, pc := range cfg.Providers {
		client, err := newClient(name, pc)
		if err != nil {
			logger.Printf("skipping provider %s: %v", name, err)
			continue
		}
		r.clients[name] = client
	}
	return r
}

func newClient(name string, cfg config.LLMProvider) (Client, error) {
	switch cfg.Type {
	case "openai":
		return newOpenAIClient(name, cfg), nil
	case "anthropic":
		return newAnthropicClient(name, cfg), nil
	case "gemini":
		return newGeminiClient(name, cfg)
	case "ollama":
		return newOllamaClient(name, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Type)
	}
}

// Resolve returns the client for a reference. Unknown or empty provider names
// are configuration errors, surfaced immediately with no retry.
func (r *Registry) Resolve(ref Ref) (Client, error) {
	if ref.Provider == "" {
		return nil, fmt.Errorf("%w: empty provider reference", research.ErrInvalidConfig)
	}
	client, ok := r.clients[ref.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", research.ErrInvalidConfig, ref.Provider)
	}
	return client, nil
}

// Availability describes one usable provider for the client UI.
type Availability struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// Available lists providers that can serve completions right now.
func (r *Registry) Available(ctx context.Context) []Availability {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Availability, 0, len(names))
	for _, name := range names {
		client := r.clients[name]
		if !client.Available(ctx) {
			continue
		}
		out = append(out, Availability{Provider: name, Models: client.Models()})
	}
	return out
}
