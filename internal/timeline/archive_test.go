package timeline

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryArchiveFirstWriteWins(t *testing.T) {
	a := NewMemoryArchive()
	ctx := context.Background()

	if err := a.Save(ctx, "msg-1", []Entry{{Title: "Web Research", Data: "first"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.Save(ctx, "msg-1", []Entry{{Title: "Web Research", Data: "second"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, ok, err := a.Get(ctx, "msg-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(entries) != 1 || entries[0].Data != "first" {
		t.Fatalf("expected first write to win, got %v", entries)
	}
}

func TestMemoryArchiveMiss(t *testing.T) {
	a := NewMemoryArchive()
	_, ok, err := a.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown message id")
	}
}

func TestMemoryArchiveReturnsCopies(t *testing.T) {
	a := NewMemoryArchive()
	ctx := context.Background()
	if err := a.Save(ctx, "msg-1", []Entry{{Title: "Reflection"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, _, _ := a.Get(ctx, "msg-1")
	entries[0].Title = "tampered"
	fresh, _, _ := a.Get(ctx, "msg-1")
	if fresh[0].Title != "Reflection" {
		t.Fatal("Get must return a defensive copy")
	}
}

func TestRedisArchiveRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	a := NewRedisArchiveFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	ctx := context.Background()

	want := []Entry{
		{Title: "Generating Search Queries", Data: "q1, q2"},
		{Title: "Web Research", Data: "Gathered 4 sources."},
	}
	if err := a.Save(ctx, "msg-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := a.Get(ctx, "msg-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRedisArchiveFirstWriteWins(t *testing.T) {
	srv := miniredis.RunT(t)
	a := NewRedisArchiveFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	ctx := context.Background()

	if err := a.Save(ctx, "msg-1", []Entry{{Data: "first"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.Save(ctx, "msg-1", []Entry{{Data: "second"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _, err := a.Get(ctx, "msg-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got[0].Data != "first" {
		t.Fatalf("SETNX must keep the first write, got %q", got[0].Data)
	}
}

func TestRedisArchiveMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	a := NewRedisArchiveFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	_, ok, err := a.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown message id")
	}
}
