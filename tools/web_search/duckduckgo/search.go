package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Search queries the keyless DuckDuckGo Instant Answer API. Coverage is
// thinner than the keyed engines but it needs no account, which makes it the
// reference deployment default.
type Search struct{}

type instantAnswer struct {
	Heading       string         `json:"Heading"`
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	Image         string         `json:"Image"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	FirstURL string `json:"FirstURL"`
	Text     string `json:"Text"`
	Icon     struct {
		URL string `json:"URL"`
	} `json:"Icon"`
	Topics []relatedTopic `json:"Topics"` // grouped topics nest one level
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	answer, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []models.Result
	if answer.AbstractURL != "" && answer.AbstractText != "" {
		out = append(out, models.Result{
			Title:   answer.Heading,
			URL:     answer.AbstractURL,
			Snippet: answer.AbstractText,
		})
	}
	for _, t := range flatten(answer.RelatedTopics) {
		if len(out) >= k {
			break
		}
		if t.FirstURL == "" || t.Text == "" {
			continue
		}
		out = append(out, models.Result{Title: topicTitle(t.Text), URL: t.FirstURL, Snippet: t.Text})
	}
	return out, nil
}

func (s Search) DiscoverImages(ctx context.Context, q string, k int) ([]models.ImageResult, error) {
	answer, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	var out []models.ImageResult
	if answer.Image != "" {
		out = append(out, models.ImageResult{
			URL:    absoluteImageURL(answer.Image),
			Title:  answer.Heading,
			Source: "DuckDuckGo",
		})
	}
	for _, t := range flatten(answer.RelatedTopics) {
		if len(out) >= k {
			break
		}
		if t.Icon.URL == "" {
			continue
		}
		out = append(out, models.ImageResult{
			URL:    absoluteImageURL(t.Icon.URL),
			Title:  topicTitle(t.Text),
			Source: "DuckDuckGo",
		})
	}
	return out, nil
}

func (s Search) query(ctx context.Context, q string) (instantAnswer, error) {
	endpoint := fmt.Sprintf("https://api.duckduckgo.com/?q=%s&format=json&no_html=1&skip_disambig=1", url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return instantAnswer{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return instantAnswer{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return instantAnswer{}, fmt.Errorf("duckduckgo: status %d", resp.StatusCode)
	}
	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return instantAnswer{}, err
	}
	return answer, nil
}

func flatten(topics []relatedTopic) []relatedTopic {
	var out []relatedTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flatten(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// topicTitle keeps the leading phrase of a related-topic blurb.
func topicTitle(text string) string {
	if i := strings.Index(text, " - "); i > 0 {
		return text[:i]
	}
	if len(text) > 50 {
		return text[:50] + "..."
	}
	return text
}

func absoluteImageURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return "https://duckduckgo.com" + path
}
