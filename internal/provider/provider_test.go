package provider

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.LLMConfig{
		Providers: map[string]config.LLMProvider{
			"openai":   {Type: "openai", APIKey: "sk-test", Models: []string{"gpt-4o-mini"}},
			"mystery":  {Type: "quantum"},
			"personal": {Type: "ollama", BaseURL: "http://localhost:11434"},
		},
	}
	return NewRegistry(cfg, log.New(io.Discard, "", 0))
}

func TestRegistrySkipsUnsupportedProviderType(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.Resolve(Ref{Provider: "mystery"}); err == nil {
		t.Fatal("provider with unsupported type must not be registered")
	}
	if _, err := r.Resolve(Ref{Provider: "openai", Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("valid provider rejected: %v", err)
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Resolve(Ref{Provider: "nonexistent"})
	if !errors.Is(err, research.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveEmptyProvider(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Resolve(Ref{})
	if !errors.Is(err, research.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for empty reference, got %v", err)
	}
}

func TestAvailableListsConfiguredModels(t *testing.T) {
	r := testRegistry(t)
	avail := r.Available(context.Background())
	// ollama availability depends on a local daemon; the key-based provider
	// must be present regardless.
	found := false
	for _, a := range avail {
		if a.Provider == "openai" {
			found = true
			if len(a.Models) != 1 || a.Models[0] != "gpt-4o-mini" {
				t.Fatalf("unexpected models: %v", a.Models)
			}
		}
		if a.Provider == "mystery" {
			t.Fatal("skipped provider leaked into availability")
		}
	}
	if !found {
		t.Fatal("openai provider missing from availability")
	}
}
