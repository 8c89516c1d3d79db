package repository

import (
	"context"
	"time"

	"beleads_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// Store is the PipelineStore.
type Store interface {
	// Insert adds a new lead. It fails with apperr.Conflict when the
	// subscriber already has a lead with the same external id.
	Insert(ctx context.Context, lead domain.CRMLead) error
	// Upsert writes the lead unless the stored row has a newer UpdatedAt.
	Upsert(ctx context.Context, lead domain.CRMLead) error
	// Delete removes the lead. Deleting a missing lead is not an error.
	Delete(ctx context.Context, subscriberID, leadID uuid.UUID) error
	Get(ctx context.Context, subscriberID, leadID uuid.UUID) (domain.CRMLead, error)
	List(ctx context.Context, subscriberID uuid.UUID) ([]domain.CRMLead, error)
	ExternalIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error)
	HasExternalID(ctx context.Context, subscriberID uuid.UUID, externalID string) (bool, error)
	// ListDue returns lost leads of any subscriber whose recycle time is <= now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.CRMLead, error)

	GetGoal(ctx context.Context, subscriberID uuid.UUID) (domain.Goal, error)
	UpsertGoal(ctx context.Context, goal domain.Goal) error
}
