package service

import (
	"context"
	"sync"
	"time"

	"beleads_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

const (
	OpPersist = "persist"
	OpDelete  = "delete"

	reconciliationCapacity = 500
)

// Queue re-applies failed pipeline writes out of band.
type Queue interface {
	EnqueuePersist(ctx context.Context, lead domain.CRMLead) error
	EnqueueDelete(ctx context.Context, subscriberID, leadID uuid.UUID) error
}

// ReconciliationEntry records one write that did not reach the store.
type ReconciliationEntry struct {
	Operation    string
	SubscriberID uuid.UUID
	LeadID       uuid.UUID
	Error        string
	Enqueued     bool
	At           time.Time
}

// ReconciliationLog keeps the most recent failed writes of this process.
type ReconciliationLog struct {
	mu      sync.Mutex
	entries []ReconciliationEntry
}

func NewReconciliationLog() *ReconciliationLog {
	return &ReconciliationLog{}
}

func (r *ReconciliationLog) Record(entry ReconciliationEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if over := len(r.entries) - reconciliationCapacity; over > 0 {
		r.entries = append([]ReconciliationEntry(nil), r.entries[over:]...)
	}
}

// Entries returns a copy, oldest first.
func (r *ReconciliationLog) Entries() []ReconciliationEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ReconciliationEntry(nil), r.entries...)
}

func (r *ReconciliationLog) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// persist writes lead and never fails the caller. The in-memory lead is
// already what the caller sees; a failed write is logged, recorded and
// handed to the queue.
func (s *Service) persist(ctx context.Context, lead domain.CRMLead) {
	ctx = context.WithoutCancel(ctx)
	err := s.store.Upsert(ctx, lead)
	if err == nil {
		return
	}
	s.log.WithContext(ctx).PersistenceFailure(OpPersist, lead.ID.String(), err)

	enqueued := false
	if s.queue != nil {
		if qErr := s.queue.EnqueuePersist(ctx, lead); qErr != nil {
			s.log.WithContext(ctx).Error("enqueue pipeline persist failed", "lead_id", lead.ID.String(), "error", qErr)
		} else {
			enqueued = true
		}
	}
	s.recon.Record(ReconciliationEntry{
		Operation:    OpPersist,
		SubscriberID: lead.SubscriberID,
		LeadID:       lead.ID,
		Error:        err.Error(),
		Enqueued:     enqueued,
		At:           s.now(),
	})
}

func (s *Service) remove(ctx context.Context, subscriberID, leadID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	err := s.store.Delete(ctx, subscriberID, leadID)
	if err == nil {
		return
	}
	s.log.WithContext(ctx).PersistenceFailure(OpDelete, leadID.String(), err)

	enqueued := false
	if s.queue != nil {
		if qErr := s.queue.EnqueueDelete(ctx, subscriberID, leadID); qErr != nil {
			s.log.WithContext(ctx).Error("enqueue pipeline delete failed", "lead_id", leadID.String(), "error", qErr)
		} else {
			enqueued = true
		}
	}
	s.recon.Record(ReconciliationEntry{
		Operation:    OpDelete,
		SubscriberID: subscriberID,
		LeadID:       leadID,
		Error:        err.Error(),
		Enqueued:     enqueued,
		At:           s.now(),
	})
}

// ReapplyPersist is called by the reconciliation worker. Last-write-wins on
// UpdatedAt keeps a stale retry from overwriting a newer edit.
func (s *Service) ReapplyPersist(ctx context.Context, lead domain.CRMLead) error {
	return s.store.Upsert(ctx, lead)
}

// ReapplyDelete is called by the reconciliation worker.
func (s *Service) ReapplyDelete(ctx context.Context, subscriberID, leadID uuid.UUID) error {
	return s.store.Delete(ctx, subscriberID, leadID)
}
