package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"beleads_backend/internal/pipeline/domain"
	"beleads_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same conflict and
// last-write-wins rules as the Postgres repository.
type MemoryStore struct {
	mu    sync.RWMutex
	leads map[uuid.UUID]domain.CRMLead
	goals map[uuid.UUID]domain.Goal
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		leads: make(map[uuid.UUID]domain.CRMLead),
		goals: make(map[uuid.UUID]domain.Goal),
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Insert(_ context.Context, lead domain.CRMLead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.leads {
		if existing.SubscriberID == lead.SubscriberID && existing.ExternalID == lead.ExternalID {
			return apperr.Conflict("lead is already in the pipeline")
		}
	}
	m.leads[lead.ID] = lead.Clone()
	return nil
}

func (m *MemoryStore) Upsert(_ context.Context, lead domain.CRMLead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.leads[lead.ID]; ok && existing.UpdatedAt.After(lead.UpdatedAt) {
		return nil
	}
	m.leads[lead.ID] = lead.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, subscriberID, leadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.leads[leadID]; ok && existing.SubscriberID == subscriberID {
		delete(m.leads, leadID)
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, subscriberID, leadID uuid.UUID) (domain.CRMLead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lead, ok := m.leads[leadID]
	if !ok || lead.SubscriberID != subscriberID {
		return domain.CRMLead{}, apperr.NotFound(msgLeadNotFound)
	}
	return lead.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, subscriberID uuid.UUID) ([]domain.CRMLead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CRMLead, 0)
	for _, l := range m.leads {
		if l.SubscriberID == subscriberID {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]domain.CRMLead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CRMLead, 0)
	for _, l := range m.leads {
		if l.RecycleDue(now) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecycleAt.Before(*out[j].RecycleAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ExternalIDs(_ context.Context, subscriberID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0)
	for _, l := range m.leads {
		if l.SubscriberID == subscriberID {
			ids = append(ids, l.ExternalID)
		}
	}
	return ids, nil
}

func (m *MemoryStore) HasExternalID(_ context.Context, subscriberID uuid.UUID, externalID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.leads {
		if l.SubscriberID == subscriberID && l.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) GetGoal(_ context.Context, subscriberID uuid.UUID) (domain.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if goal, ok := m.goals[subscriberID]; ok {
		return goal, nil
	}
	return domain.DefaultGoal(subscriberID), nil
}

func (m *MemoryStore) UpsertGoal(_ context.Context, goal domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goal.SubscriberID] = goal
	return nil
}
