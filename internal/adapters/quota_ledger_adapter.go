package adapters

import (
	"context"

	"beleads_backend/internal/acquisition/ports"
	quotasvc "beleads_backend/internal/quota/service"

	"github.com/google/uuid"
)

// QuotaLedgerAdapter adapts the quota ledger for the acquisition domain.
type QuotaLedgerAdapter struct {
	ledger *quotasvc.Ledger
}

// NewQuotaLedgerAdapter creates a new quota ledger adapter.
func NewQuotaLedgerAdapter(ledger *quotasvc.Ledger) *QuotaLedgerAdapter {
	return &QuotaLedgerAdapter{ledger: ledger}
}

func (a *QuotaLedgerAdapter) Reserve(ctx context.Context, subscriberID uuid.UUID, n int) (ports.Reservation, error) {
	res, err := a.ledger.Reserve(ctx, subscriberID, n)
	if err != nil {
		return ports.Reservation{}, err
	}
	return ports.Reservation{SubscriberID: res.SubscriberID, Count: res.Count}, nil
}

func (a *QuotaLedgerAdapter) Commit(ctx context.Context, res ports.Reservation, actual int) (int, error) {
	return a.ledger.Commit(ctx, quotasvc.Reservation{SubscriberID: res.SubscriberID, Count: res.Count}, actual)
}

func (a *QuotaLedgerAdapter) Release(ctx context.Context, res ports.Reservation) error {
	return a.ledger.Release(ctx, quotasvc.Reservation{SubscriberID: res.SubscriberID, Count: res.Count})
}

var _ ports.QuotaLedger = (*QuotaLedgerAdapter)(nil)
