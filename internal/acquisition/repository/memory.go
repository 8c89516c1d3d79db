package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryHistory is an in-process HistoryRepository.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemory() *MemoryHistory {
	return &MemoryHistory{}
}

var _ HistoryRepository = (*MemoryHistory)(nil)

func (m *MemoryHistory) Append(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MemoryHistory) LeadIDs(_ context.Context, subscriberID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, e := range m.entries {
		if e.SubscriberID != subscriberID {
			continue
		}
		if _, ok := seen[e.LeadID]; ok {
			continue
		}
		seen[e.LeadID] = struct{}{}
		ids = append(ids, e.LeadID)
	}
	return ids, nil
}

func (m *MemoryHistory) ListSince(_ context.Context, subscriberID uuid.UUID, since time.Time) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0)
	for _, e := range m.entries {
		if e.SubscriberID == subscriberID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
