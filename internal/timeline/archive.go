package timeline

import (
	"context"
	"sync"
)

// ArchiveStore persists completed-turn timelines under the identity of the
// assistant message that closed the turn.
type ArchiveStore interface {
	Save(ctx context.Context, messageID string, entries []Entry) error
	Get(ctx context.Context, messageID string) ([]Entry, bool, error)
}

// MemoryArchive is the default in-process archive store.
type MemoryArchive struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{entries: make(map[string][]Entry)}
}

// Save stores a snapshot. The first write for a message wins; a duplicate
// delivery of the same finalization never overwrites the archived timeline.
func (a *MemoryArchive) Save(_ context.Context, messageID string, entries []Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[messageID]; ok {
		return nil
	}
	a.entries[messageID] = append([]Entry(nil), entries...)
	return nil
}

// Get returns the archived timeline for a completed assistant message.
func (a *MemoryArchive) Get(_ context.Context, messageID string) ([]Entry, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entries, ok := a.entries[messageID]
	if !ok {
		return nil, false, nil
	}
	return append([]Entry(nil), entries...), true, nil
}
