package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Planner turns the conversation into an ordered set of search queries.
type Planner struct {
	llm    LLM
	model  string
	logger *log.Logger
}

// NewPlanner creates a planner bound to a completion model.
func NewPlanner(llm LLM, model string, logger *log.Logger) *Planner {
	return &Planner{llm: llm, model: model, logger: logger}
}

type queryList struct {
	Queries   []string `json:"queries"`
	Rationale string   `json:"rationale"`
}

// Plan generates queries for a round. It always returns exactly count queries:
// when the model justifies fewer distinct queries, the set is padded by varying
// phrasing rather than short-changing the caller.
func (p *Planner) Plan(ctx context.Context, conversation []Message, count, round int) ([]ResearchQuery, error) {
	topic := Topic(conversation)
	raw, err := p.llm.Complete(ctx, p.model, queryWriterPrompt(topic, count))
	if err != nil {
		return nil, fmt.Errorf("query planning: %w", err)
	}

	var parsed queryList
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		p.logger.Printf("planner returned non-JSON output, falling back to topic queries: %v", err)
	}
	texts := normalizeQueries(parsed.Queries, topic, count)

	queries := make([]ResearchQuery, 0, count)
	for _, t := range texts {
		queries = append(queries, ResearchQuery{Text: t, Round: round})
	}
	return queries, nil
}

// normalizeQueries trims, dedups, and pads or truncates to exactly count.
func normalizeQueries(raw []string, topic string, count int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, count)
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == count {
			return out
		}
	}
	for _, v := range paddingVariants(topic, out) {
		if len(out) == count {
			break
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// paddingVariants rephrases the topic (or the first model query) so callers
// always receive the requested count.
func paddingVariants(topic string, existing []string) []string {
	base := strings.TrimSpace(topic)
	if base == "" && len(existing) > 0 {
		base = existing[0]
	}
	if base == "" {
		base = "general background"
	}
	return []string{
		base,
		base + " latest developments",
		base + " explained",
		base + " in depth analysis",
		base + " recent news",
		"background on " + base,
		base + " expert overview",
		base + " key facts",
		base + " pros and cons",
		base + " timeline",
	}
}

// extractJSON strips markdown code fences and surrounding prose so that a
// chatty model response still parses.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}
	return strings.TrimSpace(s)
}
