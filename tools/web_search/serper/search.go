package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Search queries the serper.dev Google proxy.
type Search struct {
	ApiKey string
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://serper.dev/ docs
	raw, err := s.post(ctx, "https://google.serper.dev/search", map[string]any{"q": q, "num": k})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	var out []models.Result
	for i, it := range parsed.Organic {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: it.Title, URL: it.Link, Snippet: it.Snippet})
	}
	return out, nil
}

func (s Search) DiscoverImages(ctx context.Context, q string, k int) ([]models.ImageResult, error) {
	raw, err := s.post(ctx, "https://google.serper.dev/images", map[string]any{"q": q, "num": k})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Images []struct {
			Title    string `json:"title"`
			ImageURL string `json:"imageUrl"`
			Source   string `json:"source"`
		} `json:"images"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	var out []models.ImageResult
	for i, it := range parsed.Images {
		if i >= k {
			break
		}
		out = append(out, models.ImageResult{URL: it.ImageURL, Title: it.Title, Source: it.Source})
	}
	return out, nil
}

func (s Search) post(ctx context.Context, url string, payload map[string]any) ([]byte, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.ApiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper: status %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
