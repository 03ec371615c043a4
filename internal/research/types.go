package research

import "strings"

// Message is one entry of the conversation history submitted with a turn.
type Message struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// ResearchQuery is a single search query produced by the planner or reflector.
// Queries are immutable and consumed exactly once by the fanout.
type ResearchQuery struct {
	Text  string `json:"text"`
	Round int    `json:"round"`
}

// SourceRecord is a deduplicated web source. Identity is the URL.
type SourceRecord struct {
	URL     string `json:"url"`
	Label   string `json:"label"`
	Snippet string `json:"snippet"`
}

// ImageRecord is a deduplicated image hit. Identity is the URL.
type ImageRecord struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Alt    string `json:"alt"`
}

// Findings is the per-turn research context. It is owned exclusively by the
// loop controller for the duration of one turn and discarded afterwards.
type Findings struct {
	Round      int
	Queries    []ResearchQuery
	Sources    []SourceRecord
	Images     []ImageRecord
	Summaries  []string
	Sufficient bool

	seenSources map[string]struct{}
	seenImages  map[string]struct{}
}

// NewFindings returns an empty research context for a fresh turn.
func NewFindings() *Findings {
	return &Findings{
		seenSources: make(map[string]struct{}),
		seenImages:  make(map[string]struct{}),
	}
}

// MergeSources appends records whose URL has not been seen yet and returns the
// newly added ones. First-seen wins: a record for a known URL is discarded so
// labels chosen in an earlier round stay authoritative.
func (f *Findings) MergeSources(recs []SourceRecord) []SourceRecord {
	var added []SourceRecord
	for _, r := range recs {
		if r.URL == "" {
			continue
		}
		if _, ok := f.seenSources[r.URL]; ok {
			continue
		}
		f.seenSources[r.URL] = struct{}{}
		f.Sources = append(f.Sources, r)
		added = append(added, r)
	}
	return added
}

// MergeImages appends image records by the same first-seen-wins discipline.
func (f *Findings) MergeImages(recs []ImageRecord) []ImageRecord {
	var added []ImageRecord
	for _, r := range recs {
		if r.URL == "" {
			continue
		}
		if _, ok := f.seenImages[r.URL]; ok {
			continue
		}
		f.seenImages[r.URL] = struct{}{}
		f.Images = append(f.Images, r)
		added = append(added, r)
	}
	return added
}

// Topic extracts the research topic from the conversation: the sole user
// message when there is one, otherwise the flattened history.
func Topic(conversation []Message) string {
	if len(conversation) == 1 {
		return strings.TrimSpace(conversation[0].Content)
	}
	var b strings.Builder
	for _, m := range conversation {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
