package research

import (
	"fmt"
	"strings"
	"time"
)

const queryWriterTemplate = `You are a research assistant generating web search queries.
Current date: %s

Generate exactly %d sophisticated and diverse web search queries that would help
answer the following research topic. Cover different angles of the topic; prefer
queries that surface recent, authoritative information.

Research topic:
%s

Respond with JSON only, in this exact shape:
{"queries": ["query 1", "query 2"], "rationale": "one sentence"}`

const reflectionTemplate = `You are a research assistant judging whether gathered material
answers a research topic. Current date: %s

Research topic:
%s

Summaries gathered so far:
%s

Decide whether the summaries are sufficient to write a confident, well-cited
answer. If they are not, name the knowledge gap and propose exactly %d follow-up
search queries that would close it.

Respond with JSON only, in this exact shape:
{"is_sufficient": false, "knowledge_gap": "what is missing", "follow_up_queries": ["query 1"]}`

const summarizeTemplate = `You are a research assistant condensing web search results.
Current date: %s

Research topic: %s

Search results:
%s

Write a dense, factual summary of what these results say about the topic.
Keep the bracketed citation markers next to the claims they support.`

const answerTemplate = `You are a research assistant writing the final answer.
Current date: %s

Research topic:
%s

Research summaries:
%s

Synthesize a comprehensive, well-structured answer to the topic from the
summaries above. Cite sources with their bracketed markers where relevant.`

func currentDate() string {
	return time.Now().Format("2006-01-02")
}

func queryWriterPrompt(topic string, count int) string {
	return fmt.Sprintf(queryWriterTemplate, currentDate(), count, topic)
}

func reflectionPrompt(topic string, summaries []string, count int) string {
	return fmt.Sprintf(reflectionTemplate, currentDate(), topic, joinSummaries(summaries), count)
}

func summarizePrompt(topic, formatted string) string {
	return fmt.Sprintf(summarizeTemplate, currentDate(), topic, formatted)
}

func answerPrompt(topic string, summaries []string) string {
	return fmt.Sprintf(answerTemplate, currentDate(), topic, joinSummaries(summaries))
}

func joinSummaries(summaries []string) string {
	if len(summaries) == 0 {
		return "(nothing gathered yet)"
	}
	return strings.Join(summaries, "\n\n---\n\n")
}
