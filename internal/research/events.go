package research

import (
	"context"
	"sync"
)

// EventType tags the progress event union.
type EventType string

const (
	EventQueriesGenerated EventType = "queries_generated"
	EventResearchGathered EventType = "research_gathered"
	EventReflected        EventType = "reflected"
	EventToolExecuted     EventType = "tool_executed"
	EventFinalized        EventType = "finalized"
	EventErrored          EventType = "errored"
)

// Event is one progress notification of the research loop. Events are
// immutable and ordered by emission; consumers may rely on that ordering and
// on nothing else (no timestamps, no reordering recovery).
type Event struct {
	Type  EventType `json:"type"`
	Round int       `json:"round"`

	// queries_generated
	Queries []string `json:"queries,omitempty"`

	// research_gathered: the round's newly merged delta plus its summary
	Sources []SourceRecord `json:"sources,omitempty"`
	Images  []ImageRecord  `json:"images,omitempty"`
	Summary string         `json:"summary,omitempty"`

	// reflected
	Sufficient   bool     `json:"sufficient,omitempty"`
	FollowUps    []string `json:"follow_ups,omitempty"`
	KnowledgeGap string   `json:"knowledge_gap,omitempty"`
	Forced       bool     `json:"forced,omitempty"` // budget exhaustion, not genuine sufficiency

	// tool_executed
	ToolName   string `json:"tool_name,omitempty"`
	ToolStatus string `json:"tool_status,omitempty"`
	ToolData   string `json:"tool_data,omitempty"`

	// finalized
	MessageID string `json:"message_id,omitempty"`
	Answer    string `json:"answer,omitempty"`

	// errored
	Error string `json:"error,omitempty"`
}

// EventSink receives loop events in emission order.
type EventSink func(Event)

// Emitter serializes loop state transitions into the event stream. Emission
// stops as soon as the turn context is cancelled so a stopped turn never
// produces trailing events, and Finalized is emitted at most once.
type Emitter struct {
	ctx  context.Context
	sink EventSink

	mu        sync.Mutex
	finalized bool
}

// NewEmitter wraps a sink with the turn's cancellation context.
func NewEmitter(ctx context.Context, sink EventSink) *Emitter {
	return &Emitter{ctx: ctx, sink: sink}
}

// Emit forwards one event unless the turn is cancelled or already finalized.
func (e *Emitter) Emit(ev Event) {
	if e.sink == nil || e.ctx.Err() != nil {
		return
	}
	e.mu.Lock()
	if e.finalized {
		e.mu.Unlock()
		return
	}
	if ev.Type == EventFinalized {
		e.finalized = true
	}
	e.mu.Unlock()
	e.sink(ev)
}
