package web_search

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/scout/tools/web_search/brave"
	"github.com/mohammad-safakhou/scout/tools/web_search/duckduckgo"
	"github.com/mohammad-safakhou/scout/tools/web_search/models"
	"github.com/mohammad-safakhou/scout/tools/web_search/serper"
)

// WebSearcher is the pluggable search collaborator: text and image results
// with deduplicable URL identities.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
	DiscoverImages(ctx context.Context, q string, k int) ([]models.ImageResult, error)
}

type Provider string

const (
	DuckDuckGoProvider Provider = "duckduckgo"
	SerperProvider     Provider = "serper"
	BraveProvider      Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

// NewWebSearcher builds the configured engine. DuckDuckGo is the keyless
// reference deployment; serper and brave require API keys.
func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case DuckDuckGoProvider:
		return duckduckgo.Search{}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
