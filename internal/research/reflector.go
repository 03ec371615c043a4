package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Reflection is the reflector's terminal-or-continue decision for a round.
// Sufficiency is binary; there is no partial score.
type Reflection struct {
	Sufficient   bool
	KnowledgeGap string
	FollowUps    []ResearchQuery
}

// Reflector inspects accumulated research context and decides sufficiency,
// proposing follow-up queries when the context falls short.
type Reflector struct {
	llm    LLM
	model  string
	logger *log.Logger
}

// NewReflector creates a reflector bound to a completion model.
func NewReflector(llm LLM, model string, logger *log.Logger) *Reflector {
	return &Reflector{llm: llm, model: model, logger: logger}
}

type reflectionPayload struct {
	IsSufficient    bool     `json:"is_sufficient"`
	KnowledgeGap    string   `json:"knowledge_gap"`
	FollowUpQueries []string `json:"follow_up_queries"`
}

// Reflect judges the gathered summaries. Follow-up queries are tagged with
// nextRound and, when the context is insufficient, normalized to exactly count
// entries. A sufficient verdict with follow-ups is passed through untouched so
// the loop controller can surface the contract violation.
func (r *Reflector) Reflect(ctx context.Context, topic string, summaries []string, nextRound, count int) (Reflection, error) {
	raw, err := r.llm.Complete(ctx, r.model, reflectionPrompt(topic, summaries, count))
	if err != nil {
		return Reflection{}, fmt.Errorf("reflection: %w", err)
	}

	var parsed reflectionPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		r.logger.Printf("reflector returned non-JSON output, treating as insufficient: %v", err)
		parsed = reflectionPayload{IsSufficient: false}
	}

	texts := parsed.FollowUpQueries
	if !parsed.IsSufficient {
		texts = normalizeQueries(texts, topic, count)
	}
	followUps := make([]ResearchQuery, 0, len(texts))
	for _, t := range texts {
		followUps = append(followUps, ResearchQuery{Text: t, Round: nextRound})
	}
	return Reflection{
		Sufficient:   parsed.IsSufficient,
		KnowledgeGap: parsed.KnowledgeGap,
		FollowUps:    followUps,
	}, nil
}
