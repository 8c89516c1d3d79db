package repository

import (
	"context"
	"time"

	"beleads_backend/internal/acquisition/domain"

	"github.com/google/uuid"
)

// Entry is one accepted lead of one search.
type Entry struct {
	ID           uuid.UUID
	SubscriberID uuid.UUID
	Query        string
	Mode         domain.Mode
	LeadID       string
	LeadName     string
	LeadPhone    string
	CreatedAt    time.Time
}

// HistoryRepository is the append-only usage ledger.
type HistoryRepository interface {
	Append(ctx context.Context, entries []Entry) error
	// LeadIDs returns every lead id ever accepted for the subscriber.
	LeadIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error)
	// ListSince returns entries created at or after since, newest first.
	ListSince(ctx context.Context, subscriberID uuid.UUID, since time.Time) ([]Entry, error)
}
