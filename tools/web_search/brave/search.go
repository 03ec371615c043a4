package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Search queries the Brave Search API.
type Search struct {
	ApiKey string
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://api.search.brave.com/app/documentation/web-search
	endpoint := fmt.Sprintf("https://api.search.brave.com/res/v1/web/search?q=%s&count=%d", url.QueryEscape(q), k)
	var parsed struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := s.get(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}
	var out []models.Result
	for i, r := range parsed.Web.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}

func (s Search) DiscoverImages(ctx context.Context, q string, k int) ([]models.ImageResult, error) {
	endpoint := fmt.Sprintf("https://api.search.brave.com/res/v1/images/search?q=%s&count=%d", url.QueryEscape(q), k)
	var parsed struct {
		Results []struct {
			Title      string `json:"title"`
			Source     string `json:"source"`
			Properties struct {
				URL string `json:"url"`
			} `json:"properties"`
		} `json:"results"`
	}
	if err := s.get(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}
	var out []models.ImageResult
	for i, r := range parsed.Results {
		if i >= k {
			break
		}
		out = append(out, models.ImageResult{URL: r.Properties.URL, Title: r.Title, Source: r.Source})
	}
	return out, nil
}

func (s Search) get(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.ApiKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("brave: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
