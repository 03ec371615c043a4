package research

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// stubSearch serves per-query results through callback hooks.
type stubSearch struct {
	search func(q string) ([]SourceRecord, error)
	images func(q string) ([]ImageRecord, error)
}

func (s *stubSearch) Search(ctx context.Context, query string, k int) ([]SourceRecord, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search(query)
}

func (s *stubSearch) SearchImages(ctx context.Context, query string, k int) ([]ImageRecord, error) {
	if s.images == nil {
		return nil, nil
	}
	return s.images(query)
}

func TestFanoutDedupsWithinRound(t *testing.T) {
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) {
			return []SourceRecord{
				{URL: "https://example.com/shared", Label: "Shared " + q},
				{URL: "https://example.com/" + q, Label: q},
			}, nil
		},
	}
	f := NewFanout(search, nil, "", nil, 5, 6, testLogger())

	res, err := f.Run(context.Background(), []ResearchQuery{{Text: "alpha"}, {Text: "beta"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 0 || res.Total != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.Sources) != 3 {
		t.Fatalf("expected 3 deduplicated sources, got %d: %v", len(res.Sources), res.Sources)
	}
	// First-seen wins: the shared URL keeps the label from the first query.
	if res.Sources[0].Label != "Shared alpha" {
		t.Fatalf("expected first query's label to win, got %q", res.Sources[0].Label)
	}
}

func TestFanoutAllQueriesFail(t *testing.T) {
	boom := errors.New("engine down")
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) { return nil, boom },
		images: func(q string) ([]ImageRecord, error) { return nil, boom },
	}
	f := NewFanout(search, nil, "", nil, 5, 6, testLogger())

	res, err := f.Run(context.Background(), []ResearchQuery{{Text: "a"}, {Text: "b"}, {Text: "c"}})
	if err != nil {
		t.Fatalf("a failed round is not a turn error: %v", err)
	}
	if !res.AllFailed() {
		t.Fatalf("expected AllFailed, got %+v", res)
	}
	if len(res.Sources) != 0 || len(res.Images) != 0 {
		t.Fatalf("failed round must contribute no records: %+v", res)
	}
}

func TestFanoutPartialFailure(t *testing.T) {
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) {
			if q == "bad" {
				return nil, errors.New("timeout")
			}
			return []SourceRecord{{URL: "https://example.com/" + q, Label: q}}, nil
		},
		images: func(q string) ([]ImageRecord, error) {
			if q == "bad" {
				return nil, errors.New("timeout")
			}
			return nil, nil
		},
	}
	f := NewFanout(search, nil, "", nil, 5, 6, testLogger())

	res, err := f.Run(context.Background(), []ResearchQuery{{Text: "good"}, {Text: "bad"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 1 || res.Total != 2 {
		t.Fatalf("expected 1/2 failed, got %d/%d", res.Failed, res.Total)
	}
	if len(res.Sources) != 1 {
		t.Fatalf("expected the surviving query's source, got %v", res.Sources)
	}
}

func TestFanoutCancellationAbandonsQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	f := NewFanout(search, nil, "", nil, 5, 6, testLogger())

	errs := make(chan error, 1)
	go func() {
		_, err := f.Run(ctx, []ResearchQuery{{Text: "slow"}})
		errs <- err
	}()
	<-started
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestFanoutSummarizesPerQuery(t *testing.T) {
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) {
			return []SourceRecord{{URL: "https://example.com/" + q, Label: q, Snippet: "snippet"}}, nil
		},
	}
	llm := &scriptedLLM{responses: []string{"condensed findings"}}
	f := NewFanout(search, llm, "test-model", nil, 5, 6, testLogger())

	res, err := f.Run(context.Background(), []ResearchQuery{{Text: "solo"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Summaries) != 1 || res.Summaries[0] != "condensed findings" {
		t.Fatalf("expected condensed summary, got %v", res.Summaries)
	}
}

func TestFanoutKeepsRawResultsWhenSummarizerFails(t *testing.T) {
	search := &stubSearch{
		search: func(q string) ([]SourceRecord, error) {
			return []SourceRecord{{URL: "https://example.com/x", Label: "X", Snippet: "about x"}}, nil
		},
	}
	llm := &scriptedLLM{err: fmt.Errorf("model overloaded")}
	f := NewFanout(search, llm, "test-model", nil, 5, 6, testLogger())

	res, err := f.Run(context.Background(), []ResearchQuery{{Text: "x"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Summaries) != 1 {
		t.Fatalf("expected raw fallback summary, got %v", res.Summaries)
	}
	if res.Failed != 0 {
		t.Fatal("summarizer failure must not count the query as failed")
	}
}
