package repository

import (
	"context"

	"beleads_backend/internal/quota/domain"

	"github.com/google/uuid"
)

// Store persists quota accounts.
// Update runs fn with exclusive access to the subscriber's account. When the
// account does not exist, init is stored first. Changes made by fn are saved
// only when fn returns nil.
type Store interface {
	Update(ctx context.Context, subscriberID uuid.UUID, init domain.Account, fn func(*domain.Account) error) (domain.Account, error)
	Get(ctx context.Context, subscriberID uuid.UUID) (domain.Account, error)
}
