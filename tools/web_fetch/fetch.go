// Package web_fetch: plain HTTP fetch + readability extraction.
package web_fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Fetcher pulls a page and extracts its main content for research
// enrichment. Construct once; Extract is safe for concurrent use.
type Fetcher struct {
	http      *http.Client
	UserAgent string
	MaxChars  int
}

// NewFetcher builds a fetcher; timeout and maxChars are clamped.
func NewFetcher(timeout time.Duration, maxChars int, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxChars <= 0 {
		maxChars = 12000
	}
	if userAgent == "" {
		userAgent = "scout/1.0"
	}
	return &Fetcher{
		http:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		MaxChars:  maxChars,
	}
}

// Extract fetches link and returns the readable text content, truncated to
// MaxChars. Non-HTML pages and parse failures return an empty string with no
// error so callers can treat enrichment as best-effort.
func (f *Fetcher) Extract(ctx context.Context, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", errors.New("invalid url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", link, resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		return "", nil
	}

	article, err := readability.FromReader(resp.Body, mustParseURL(link))
	if err != nil {
		return "", nil
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) > f.MaxChars {
		text = text[:f.MaxChars]
	}
	return text, nil
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
