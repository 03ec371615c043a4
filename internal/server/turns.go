package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/mcptool"
	"github.com/mohammad-safakhou/scout/internal/provider"
	"github.com/mohammad-safakhou/scout/internal/research"
	"github.com/mohammad-safakhou/scout/internal/telemetry"
	"github.com/mohammad-safakhou/scout/internal/timeline"
	"github.com/mohammad-safakhou/scout/tools/web_fetch"
	"github.com/mohammad-safakhou/scout/tools/web_search"
)

// TurnsHandler runs research turns and serves archived timelines.
type TurnsHandler struct {
	cfg      *config.Config
	registry *provider.Registry
	tools    *mcptool.Client
	archive  timeline.ArchiveStore
	metrics  *telemetry.Metrics
	logger   *log.Logger
}

// Register wires the turn routes.
func (h *TurnsHandler) Register(g *echo.Group) {
	g.POST("/turns", h.submitTurn)
	g.GET("/turns/:message_id/timeline", h.getTimeline)
}

type turnRequest struct {
	Conversation []research.Message   `json:"conversation"`
	Effort       research.Effort      `json:"effort"`
	Provider     string               `json:"provider"`
	Model        string               `json:"model"`
	Tool         *research.ToolTarget `json:"tool,omitempty"`
}

// submitTurn runs one research turn and streams its progress events as
// Server-Sent Events. The turn is cancelled when the client disconnects.
func (h *TurnsHandler) submitTurn(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Conversation) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation required")
	}
	if req.Effort == "" {
		req.Effort = research.EffortLow
	}
	profile, err := research.ProfileFor(req.Effort)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ref := provider.Ref{Provider: req.Provider, Model: req.Model}
	if ref.Provider == "" {
		ref.Provider = h.cfg.LLM.Routing.Provider
	}
	if ref.Model == "" {
		ref.Model = h.cfg.LLM.Routing.Model
	}
	llm, err := h.registry.Resolve(ref)
	if err != nil {
		if errors.Is(err, research.ErrInvalidConfig) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	searcher, err := newSearcher(h.cfg.Search)
	if err != nil {
		return err
	}
	var fetcher research.Fetcher
	if h.cfg.Search.FetchContent {
		fetcher = web_fetch.NewFetcher(h.cfg.General.DefaultTimeout, 0, "")
	}
	var invoker research.ToolInvoker
	if h.tools.Configured() {
		invoker = h.tools
	}

	controller := research.NewController(
		research.NewPlanner(llm, ref.Model, h.logger),
		research.NewFanout(searcher, llm, ref.Model, fetcher, h.cfg.Search.MaxResults, h.cfg.Search.MaxImages, h.logger),
		research.NewReflector(llm, ref.Model, h.logger),
		llm, ref.Model, invoker, profile, h.logger, h.metrics,
	)

	ctx := c.Request().Context()
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}

	// The server folds its own reducer alongside the stream so completed
	// timelines are archived even for clients that only replay later.
	state := timeline.NewState()
	sink := func(ev research.Event) {
		state = timeline.Reduce(state, ev)
		if ev.Type == research.EventFinalized && ev.MessageID != "" {
			if entries, ok := state.Archive[ev.MessageID]; ok {
				if err := h.archive.Save(ctx, ev.MessageID, entries); err != nil {
					h.logger.Printf("archiving timeline for %s failed: %v", ev.MessageID, err)
				}
			}
		}
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.Printf("encoding event failed: %v", err)
			return
		}
		if _, err := resp.Write([]byte("event: " + string(ev.Type) + "\n")); err != nil {
			return
		}
		if _, err := resp.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}

	if _, err := controller.Run(ctx, req.Conversation, req.Tool, sink); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		// The failure marker has already been streamed; the HTTP stream
		// itself ends cleanly.
		h.logger.Printf("turn ended with error: %v", err)
	}
	return nil
}

// getTimeline returns the archived activity timeline of a completed turn.
func (h *TurnsHandler) getTimeline(c echo.Context) error {
	messageID := c.Param("message_id")
	entries, ok, err := h.archive.Get(c.Request().Context(), messageID)
	if err != nil {
		return err
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no timeline for message")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message_id": messageID,
		"timeline":   entries,
	})
}

// searcherAdapter bridges the web_search engines to the research collaborator
// contract.
type searcherAdapter struct {
	engine web_search.WebSearcher
}

func newSearcher(cfg config.SearchConfig) (research.Searcher, error) {
	var key string
	switch web_search.Provider(cfg.Provider) {
	case web_search.SerperProvider:
		key = cfg.SerperAPIKey
	case web_search.BraveProvider:
		key = cfg.BraveAPIKey
	}
	engine, err := web_search.NewWebSearcher(web_search.Provider(cfg.Provider), key)
	if err != nil {
		return nil, err
	}
	return searcherAdapter{engine: engine}, nil
}

func (a searcherAdapter) Search(ctx context.Context, query string, k int) ([]research.SourceRecord, error) {
	hits, err := a.engine.Discover(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]research.SourceRecord, 0, len(hits))
	for _, hit := range hits {
		out = append(out, research.SourceRecord{
			URL:     hit.URL,
			Label:   truncateLabel(hit.Title),
			Snippet: hit.Snippet,
		})
	}
	return out, nil
}

func (a searcherAdapter) SearchImages(ctx context.Context, query string, k int) ([]research.ImageRecord, error) {
	hits, err := a.engine.DiscoverImages(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]research.ImageRecord, 0, len(hits))
	for _, hit := range hits {
		out = append(out, research.ImageRecord{
			URL:    hit.URL,
			Title:  hit.Title,
			Source: hit.Source,
			Alt:    truncateAlt(hit.Title),
		})
	}
	return out, nil
}

func truncateLabel(title string) string {
	if len(title) > 50 {
		return title[:50] + "..."
	}
	return title
}

func truncateAlt(title string) string {
	if len(title) > 100 {
		return title[:100]
	}
	return title
}
