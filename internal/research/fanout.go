package research

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// RoundResult is the merged outcome of one round of concurrent searches,
// deduplicated within the round by URL identity.
type RoundResult struct {
	Sources   []SourceRecord
	Images    []ImageRecord
	Summaries []string
	Failed    int
	Total     int
}

// AllFailed reports whether every query in the round failed. The loop treats
// this identically to a partial failure: the round still proceeds to
// reflection with an empty delta.
func (r RoundResult) AllFailed() bool {
	return r.Total > 0 && r.Failed == r.Total
}

// Fanout executes all queries of a round concurrently against the search
// collaborator and condenses each query's results with the completion model.
type Fanout struct {
	search     Searcher
	llm        LLM
	model      string
	fetcher    Fetcher // optional readability enrichment
	maxResults int
	maxImages  int
	logger     *log.Logger
}

// NewFanout wires the round executor. fetcher may be nil.
func NewFanout(search Searcher, llm LLM, model string, fetcher Fetcher, maxResults, maxImages int, logger *log.Logger) *Fanout {
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxImages <= 0 {
		maxImages = 6
	}
	return &Fanout{
		search:     search,
		llm:        llm,
		model:      model,
		fetcher:    fetcher,
		maxResults: maxResults,
		maxImages:  maxImages,
		logger:     logger,
	}
}

type queryOutcome struct {
	sources []SourceRecord
	images  []ImageRecord
	summary string
	failed  bool
}

// Run executes one round. A query whose search call fails contributes zero
// results and does not abort the round; the only early exit is turn-level
// cancellation, which abandons in-flight queries without waiting for them.
func (f *Fanout) Run(ctx context.Context, queries []ResearchQuery) (RoundResult, error) {
	outcomes := make([]queryOutcome, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q ResearchQuery) {
			defer wg.Done()
			outcomes[i] = f.runQuery(ctx, q)
		}(i, q)
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return RoundResult{}, ctx.Err()
	}

	// Merge in query order so first-seen-wins dedup stays deterministic.
	res := RoundResult{Total: len(queries)}
	seenSources := make(map[string]struct{})
	seenImages := make(map[string]struct{})
	for _, out := range outcomes {
		if out.failed {
			res.Failed++
		}
		for _, s := range out.sources {
			if _, ok := seenSources[s.URL]; ok || s.URL == "" {
				continue
			}
			seenSources[s.URL] = struct{}{}
			res.Sources = append(res.Sources, s)
		}
		for _, im := range out.images {
			if _, ok := seenImages[im.URL]; ok || im.URL == "" {
				continue
			}
			seenImages[im.URL] = struct{}{}
			res.Images = append(res.Images, im)
		}
		if out.summary != "" {
			res.Summaries = append(res.Summaries, out.summary)
		}
	}
	return res, nil
}

func (f *Fanout) runQuery(ctx context.Context, q ResearchQuery) queryOutcome {
	sources, serr := f.search.Search(ctx, q.Text, f.maxResults)
	if serr != nil {
		f.logger.Printf("search failed for %q: %v", q.Text, serr)
	}
	images, ierr := f.search.SearchImages(ctx, q.Text, f.maxImages)
	if ierr != nil {
		f.logger.Printf("image search failed for %q: %v", q.Text, ierr)
	}
	if serr != nil && ierr != nil {
		return queryOutcome{failed: true}
	}
	if len(sources) == 0 && len(images) == 0 {
		return queryOutcome{summary: fmt.Sprintf("No search results found for: %s", q.Text)}
	}

	formatted := formatResults(q.Text, sources)
	if f.fetcher != nil && len(sources) > 0 {
		if text, err := f.fetcher.Extract(ctx, sources[0].URL); err == nil && text != "" {
			formatted += fmt.Sprintf("\n\nExtracted content from [1] %s:\n%s\n", sources[0].URL, text)
		}
	}

	summary := formatted
	if f.llm != nil {
		condensed, err := f.llm.Complete(ctx, f.model, summarizePrompt(q.Text, formatted))
		if err != nil {
			f.logger.Printf("summarization failed for %q, keeping raw results: %v", q.Text, err)
		} else if strings.TrimSpace(condensed) != "" {
			summary = condensed
		}
	}
	return queryOutcome{sources: sources, images: images, summary: summary}
}

// formatResults renders search hits with bracketed citation markers for the
// summarization prompt.
func formatResults(query string, sources []SourceRecord) string {
	if len(sources) == 0 {
		return fmt.Sprintf("No search results found for query: %s", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n\n", query)
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. **%s**\n   URL: %s\n   Summary: %s\n   Citation: [%d]\n\n", i+1, s.Label, s.URL, s.Snippet, i+1)
	}
	return b.String()
}
