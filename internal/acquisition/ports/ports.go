// Package ports defines what the acquisition domain needs from other modules.
// Adapters in internal/adapters translate between these interfaces and the
// quota, pipeline and catalog modules.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Reservation is a credit hold returned by the quota ledger.
type Reservation struct {
	SubscriberID uuid.UUID
	Count        int
}

// QuotaLedger is the admission-control contract.
type QuotaLedger interface {
	// Reserve fails with apperr.QuotaExceeded when n exceeds the balance.
	Reserve(ctx context.Context, subscriberID uuid.UUID, n int) (Reservation, error)
	// Commit debits actual credits and returns the balance left.
	Commit(ctx context.Context, res Reservation, actual int) (int, error)
	// Release drops the hold without debiting.
	Release(ctx context.Context, res Reservation) error
}

// PipelineReader exposes the external ids already in the subscriber's CRM.
type PipelineReader interface {
	ExternalIDs(ctx context.Context, subscriberID uuid.UUID) ([]string, error)
}

// RegionCatalog provides the region codes and the fan-out city table.
type RegionCatalog interface {
	HasRegion(code string) bool
	Cities(code string) []string
}
