package web_search

import (
	"errors"
	"testing"
)

func TestNewWebSearcherProviders(t *testing.T) {
	for _, p := range []Provider{DuckDuckGoProvider, SerperProvider, BraveProvider} {
		if _, err := NewWebSearcher(p, "key"); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
	}
}

func TestNewWebSearcherUnknownProvider(t *testing.T) {
	_, err := NewWebSearcher(Provider("altavista"), "")
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}
