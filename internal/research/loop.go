package research

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/scout/internal/telemetry"
)

// phase is the loop controller's state machine position.
type phase int

const (
	phasePlanning phase = iota
	phaseResearching
	phaseReflecting
	phaseFinalizing
	phaseDone
)

var loopTracer trace.Tracer = otel.Tracer("scout/internal/research")

// ToolTarget identifies an optional external tool to run once per turn,
// between the first round's research and reflection.
type ToolTarget struct {
	Server  string         `json:"server"`
	Tool    string         `json:"tool"`
	Payload map[string]any `json:"payload"`
}

// TurnResult is the terminal output of one research turn.
type TurnResult struct {
	MessageID string
	Answer    string
	Findings  *Findings
	Forced    bool // finalized by budget exhaustion, not genuine sufficiency
}

// Controller drives one conversation turn through the research state machine:
// PLANNING -> RESEARCHING -> REFLECTING -> (RESEARCHING | FINALIZING) -> DONE.
// It exclusively owns the per-turn Findings; the client-side reducer never
// shares state with it beyond the one-directional event stream.
type Controller struct {
	planner   *Planner
	fanout    *Fanout
	reflector *Reflector
	llm       LLM
	model     string
	invoker   ToolInvoker
	profile   EffortProfile
	logger    *log.Logger
	metrics   *telemetry.Metrics
}

// NewController wires a loop controller for one effort profile. invoker and
// metrics may be nil.
func NewController(planner *Planner, fanout *Fanout, reflector *Reflector, llm LLM, model string, invoker ToolInvoker, profile EffortProfile, logger *log.Logger, metrics *telemetry.Metrics) *Controller {
	return &Controller{
		planner:   planner,
		fanout:    fanout,
		reflector: reflector,
		llm:       llm,
		model:     model,
		invoker:   invoker,
		profile:   profile,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes one turn to completion. Every state transition is emitted to
// sink in order; cancellation halts emission, abandons in-flight queries, and
// leaves no archive-worthy state behind. Concurrent turns for the same
// conversation are not supported; callers serialize submissions per
// conversation.
func (c *Controller) Run(ctx context.Context, conversation []Message, tool *ToolTarget, sink EventSink) (*TurnResult, error) {
	start := time.Now()
	ctx, span := loopTracer.Start(ctx, "research.turn",
		trace.WithAttributes(
			attribute.String("effort", string(c.profile.Level)),
			attribute.Int("max_loops", c.profile.MaxLoops),
		))
	defer span.End()

	emitter := NewEmitter(ctx, func(ev Event) {
		c.metrics.EventEmitted(string(ev.Type))
		sink(ev)
	})
	findings := NewFindings()
	topic := Topic(conversation)

	var (
		queries []ResearchQuery
		refl    Reflection
		forced  bool
		round   int
	)

	state := phasePlanning
	for state != phaseDone {
		select {
		case <-ctx.Done():
			c.metrics.TurnFinished("cancelled", time.Since(start).Seconds())
			span.SetStatus(codes.Error, "cancelled")
			return nil, ctx.Err()
		default:
		}

		switch state {
		case phasePlanning:
			planned, err := c.planner.Plan(ctx, conversation, c.profile.InitialQueryCount, 0)
			if err != nil {
				return nil, c.fail(ctx, span, emitter, start, err)
			}
			queries = planned
			findings.Queries = append(findings.Queries, planned...)
			emitter.Emit(Event{Type: EventQueriesGenerated, Round: 0, Queries: queryTexts(planned)})
			state = phaseResearching

		case phaseResearching:
			res, err := c.fanout.Run(ctx, queries)
			if err != nil {
				return nil, c.fail(ctx, span, emitter, start, err)
			}
			if res.AllFailed() {
				// Non-fatal: the round proceeds to reflection with an empty
				// delta so the turn keeps making forward progress.
				c.logger.Printf("round %d: all %d queries failed", round, res.Total)
			}
			c.metrics.RoundExecuted(res.Total-res.Failed, res.Failed)
			addedSources := findings.MergeSources(res.Sources)
			addedImages := findings.MergeImages(res.Images)
			c.metrics.ImagesGathered(len(addedImages))
			findings.Summaries = append(findings.Summaries, res.Summaries...)
			emitter.Emit(Event{
				Type:    EventResearchGathered,
				Round:   round,
				Sources: addedSources,
				Images:  addedImages,
				Summary: summaryLine(addedSources, res.Failed, res.Total),
			})
			if round == 0 {
				c.runTool(ctx, tool, findings, emitter)
			}
			state = phaseReflecting

		case phaseReflecting:
			var err error
			refl, err = c.reflector.Reflect(ctx, topic, findings.Summaries, round+1, c.profile.InitialQueryCount)
			if err != nil {
				return nil, c.fail(ctx, span, emitter, start, err)
			}
			if refl.Sufficient && len(refl.FollowUps) > 0 {
				return nil, c.fail(ctx, span, emitter, start,
					fmt.Errorf("%w: %d follow-ups at round %d", ErrReflectionInvariant, len(refl.FollowUps), round))
			}
			forced = !refl.Sufficient && round+1 >= c.profile.MaxLoops
			emitter.Emit(Event{
				Type:         EventReflected,
				Round:        round,
				Sufficient:   refl.Sufficient,
				FollowUps:    queryTexts(refl.FollowUps),
				KnowledgeGap: refl.KnowledgeGap,
				Forced:       forced,
			})
			if refl.Sufficient || forced {
				if forced {
					c.logger.Printf("round %d: loop budget exhausted, finalizing with insufficient context (gap: %s)", round, refl.KnowledgeGap)
					c.metrics.ForcedFinalization()
				}
				findings.Sufficient = refl.Sufficient
				state = phaseFinalizing
				break
			}
			round++
			findings.Round = round
			queries = refl.FollowUps
			findings.Queries = append(findings.Queries, queries...)
			emitter.Emit(Event{Type: EventQueriesGenerated, Round: round, Queries: queryTexts(queries)})
			state = phaseResearching

		case phaseFinalizing:
			answer, err := c.llm.Complete(ctx, c.model, answerPrompt(topic, findings.Summaries))
			if err != nil {
				return nil, c.fail(ctx, span, emitter, start, fmt.Errorf("answer synthesis: %w", err))
			}
			messageID := uuid.NewString()
			emitter.Emit(Event{Type: EventFinalized, Round: round, MessageID: messageID, Answer: answer})
			outcome := "finalized"
			if forced {
				outcome = "forced"
			}
			c.metrics.TurnFinished(outcome, time.Since(start).Seconds())
			span.SetAttributes(attribute.Int("rounds", round+1), attribute.Bool("forced", forced))
			return &TurnResult{MessageID: messageID, Answer: answer, Findings: findings, Forced: forced}, nil
		}
	}
	return nil, fmt.Errorf("loop left state machine without finalizing")
}

// runTool executes the optional tool augmentation. Failures are recovered
// locally as a tool_executed event carrying the failure status.
func (c *Controller) runTool(ctx context.Context, tool *ToolTarget, findings *Findings, emitter *Emitter) {
	if c.invoker == nil || tool == nil || tool.Server == "" {
		return
	}
	res, err := c.invoker.Invoke(ctx, tool.Server, tool.Tool, tool.Payload)
	if err != nil {
		c.logger.Printf("tool %s/%s failed: %v", tool.Server, tool.Tool, err)
		res = ToolResult{Status: "error", Data: err.Error()}
	}
	if res.Status == "success" && res.Data != "" {
		findings.Summaries = append(findings.Summaries, fmt.Sprintf("Tool %s output:\n%s", tool.Tool, res.Data))
	}
	emitter.Emit(Event{Type: EventToolExecuted, ToolName: tool.Tool, ToolStatus: res.Status, ToolData: res.Data})
}

// fail surfaces a fatal turn error: the partial timeline already streamed
// stands, followed by a terminal failure marker so the client never hangs.
func (c *Controller) fail(ctx context.Context, span trace.Span, emitter *Emitter, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if ctx.Err() != nil {
		c.metrics.TurnFinished("cancelled", time.Since(start).Seconds())
		return ctx.Err()
	}
	c.logger.Printf("turn failed: %v", err)
	emitter.Emit(Event{Type: EventErrored, Error: err.Error()})
	c.metrics.TurnFinished("failed", time.Since(start).Seconds())
	return err
}

func queryTexts(queries []ResearchQuery) []string {
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		out = append(out, q.Text)
	}
	return out
}

func summaryLine(added []SourceRecord, failed, total int) string {
	labels := make([]string, 0, 3)
	for i, s := range added {
		if i == 3 {
			break
		}
		labels = append(labels, s.Label)
	}
	line := fmt.Sprintf("Gathered %d sources.", len(added))
	if len(labels) > 0 {
		line += " Related to: " + strings.Join(labels, ", ") + "."
	}
	if failed > 0 {
		line += fmt.Sprintf(" %d of %d queries failed.", failed, total)
	}
	return line
}
