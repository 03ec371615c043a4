package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/timeline"
)

func newTestHandler() *TurnsHandler {
	return &TurnsHandler{
		cfg:     &config.Config{},
		archive: timeline.NewMemoryArchive(),
		logger:  log.New(io.Discard, "", 0),
	}
}

func postTurn(t *testing.T, h *TurnsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/turns", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.submitTurn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSubmitTurnRejectsEmptyConversation(t *testing.T) {
	rec := postTurn(t, newTestHandler(), `{"conversation": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitTurnRejectsUnknownEffort(t *testing.T) {
	rec := postTurn(t, newTestHandler(), `{"conversation": [{"role": "user", "content": "hi"}], "effort": "extreme"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown effort, got %d", rec.Code)
	}
}

func TestSubmitTurnRejectsMalformedBody(t *testing.T) {
	rec := postTurn(t, newTestHandler(), `{"conversation": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestGetTimelineFound(t *testing.T) {
	h := newTestHandler()
	want := []timeline.Entry{
		{Title: "Generating Search Queries", Data: "q1"},
		{Title: "Web Research", Data: "Gathered 2 sources."},
	}
	if err := h.archive.Save(context.Background(), "msg-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/turns/msg-1/timeline", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("message_id")
	c.SetParamValues("msg-1")

	if err := h.getTimeline(c); err != nil {
		t.Fatalf("getTimeline: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		MessageID string           `json:"message_id"`
		Timeline  []timeline.Entry `json:"timeline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.MessageID != "msg-1" || len(payload.Timeline) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetTimelineMissing(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/turns/nope/timeline", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("message_id")
	c.SetParamValues("nope")

	err := h.getTimeline(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestNewSearcherRejectsUnknownProvider(t *testing.T) {
	_, err := newSearcher(config.SearchConfig{Provider: "altavista"})
	if err == nil {
		t.Fatal("expected error for unsupported search provider")
	}
}

func TestTruncation(t *testing.T) {
	long := strings.Repeat("x", 120)
	if got := truncateLabel(long); len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected label truncation: %q", got)
	}
	if got := truncateAlt(long); len(got) != 100 {
		t.Fatalf("unexpected alt truncation: %q", got)
	}
	if got := truncateLabel("short"); got != "short" {
		t.Fatalf("short label must pass through, got %q", got)
	}
}
