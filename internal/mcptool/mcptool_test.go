package mcptool

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestUnconfiguredClientIsNoop(t *testing.T) {
	c := NewClient("", "", "", 0, testLogger())
	if c.Configured() {
		t.Fatal("client without proxy and key must report unconfigured")
	}
	servers, err := c.ListServers(context.Background())
	if err != nil || servers != nil {
		t.Fatalf("unconfigured ListServers must be a silent no-op, got %v %v", servers, err)
	}
	_, ok, err := c.GetServer(context.Background(), "exa")
	if err != nil || ok {
		t.Fatalf("unconfigured GetServer must miss silently, got ok=%v err=%v", ok, err)
	}
}

func TestListServersNormalizesPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"qualifiedName": "exa", "displayName": "Exa Search", "tools": ["web_search", {"name": "find_similar"}]},
			{"qualified_name": "snake/server", "display_name": "Snake", "tools": []}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key", time.Second, testLogger())
	servers, err := c.ListServers(context.Background())
	if err != nil {
		t.Fatalf("ListServers: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[0].QualifiedName != "exa" || servers[0].DisplayName != "Exa Search" {
		t.Fatalf("camelCase payload not normalized: %+v", servers[0])
	}
	if len(servers[0].Tools) != 2 || servers[0].Tools[1] != "find_similar" {
		t.Fatalf("mixed tool listing not normalized: %v", servers[0].Tools)
	}
	if servers[1].QualifiedName != "snake/server" {
		t.Fatalf("snake_case payload not normalized: %+v", servers[1])
	}
}

func TestGetServerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "key", time.Second, testLogger())
	_, ok, err := c.GetServer(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetServer: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown server")
	}
}

func TestInvokeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exa/mcp" {
			t.Errorf("unexpected proxy path %s", r.URL.Path)
		}
		io.WriteString(w, `{"results": ["hit"]}`)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "key", time.Second, testLogger())
	res, err := c.Invoke(context.Background(), "exa", "web_search", map[string]any{"query": "go"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Status != "success" {
		t.Fatalf("expected success, got %q", res.Status)
	}
}

func TestInvokeHTTPFailureRecoveredAsErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "key", time.Second, testLogger())
	res, err := c.Invoke(context.Background(), "exa", "web_search", nil)
	if err != nil {
		t.Fatalf("non-200 proxy response is a recoverable result, not an error: %v", err)
	}
	if res.Status != "error" {
		t.Fatalf("expected error status, got %q", res.Status)
	}
}

func TestInvokeUnconfigured(t *testing.T) {
	c := NewClient("", "", "", 0, testLogger())
	if _, err := c.Invoke(context.Background(), "exa", "tool", nil); err == nil {
		t.Fatal("invoking through an unconfigured proxy must error")
	}
}
