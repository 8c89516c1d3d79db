// Package service implements the quota ledger: admission control, reservation
// and commit of lead credits against a subscriber's plan.
package service

import (
	"context"
	"time"

	"beleads_backend/internal/quota/domain"
	"beleads_backend/internal/quota/repository"
	"beleads_backend/platform/apperr"
	"beleads_backend/platform/logger"

	"github.com/google/uuid"
)

// Plans resolves plan ids to monthly lead limits.
type Plans interface {
	PlanLimit(planID string) (int, bool)
	DefaultPlan() string
}

// Reservation is a hold on credits taken before any directory call.
// It must be settled with Commit or Release.
type Reservation struct {
	SubscriberID uuid.UUID
	Count        int
	PeriodRolled bool
}

// Snapshot is a read-only view of an account in its current period.
type Snapshot struct {
	SubscriberID uuid.UUID
	PlanID       string
	Limit        int
	Used         int
	Reserved     int
	Remaining    int
	PeriodStart  time.Time
	NextReset    time.Time
	PeriodRolled bool
}

// Ledger is the QuotaLedger. All mutations go through Store.Update so that
// concurrent requests for one subscriber are serialized by the store.
type Ledger struct {
	store   repository.Store
	plans   Plans
	timeout time.Duration
	now     func() time.Time
	log     *logger.Logger
}

// New creates a ledger. Reservations older than reservationTimeout are
// considered abandoned and stop counting against the balance.
func New(store repository.Store, plans Plans, reservationTimeout time.Duration, log *logger.Logger) *Ledger {
	return &Ledger{
		store:   store,
		plans:   plans,
		timeout: reservationTimeout,
		now:     time.Now,
		log:     log,
	}
}

// SetClock replaces the time source.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Reserve performs the admission check and holds n credits.
// When n exceeds the remaining balance it returns apperr.QuotaExceeded
// carrying the exact remaining count and nothing is held.
func (l *Ledger) Reserve(ctx context.Context, subscriberID uuid.UUID, n int) (Reservation, error) {
	if n <= 0 {
		return Reservation{}, apperr.Validation("reservation count must be positive")
	}

	now := l.now()
	var rolled bool
	_, err := l.store.Update(ctx, subscriberID, l.newAccount(subscriberID, now), func(acct *domain.Account) error {
		rolled = l.refresh(acct, now)
		remaining := acct.Remaining(l.limit(acct.PlanID))
		if n > remaining {
			return apperr.QuotaExceeded(remaining)
		}
		acct.Reserve(n, now)
		return nil
	})
	if err != nil {
		if remaining, ok := apperr.Remaining(err); ok {
			l.log.WithContext(ctx).QuotaRejected(n, remaining)
		}
		return Reservation{}, err
	}

	return Reservation{SubscriberID: subscriberID, Count: n, PeriodRolled: rolled}, nil
}

// Commit settles a reservation, debiting exactly actual credits.
// actual is clamped to [0, reservation.Count]. Returns the balance left.
func (l *Ledger) Commit(ctx context.Context, res Reservation, actual int) (int, error) {
	if actual < 0 {
		actual = 0
	}
	if actual > res.Count {
		actual = res.Count
	}

	now := l.now()
	acct, err := l.store.Update(ctx, res.SubscriberID, l.newAccount(res.SubscriberID, now), func(acct *domain.Account) error {
		acct.Settle(res.Count, actual, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return acct.Remaining(l.limit(acct.PlanID)), nil
}

// Release returns a reservation without debiting anything.
func (l *Ledger) Release(ctx context.Context, res Reservation) error {
	_, err := l.Commit(ctx, res, 0)
	return err
}

// Snapshot returns the balance, rolling the period first when it is due.
// Unknown subscribers get an account on the default plan.
func (l *Ledger) Snapshot(ctx context.Context, subscriberID uuid.UUID) (Snapshot, error) {
	now := l.now()
	var rolled bool
	acct, err := l.store.Update(ctx, subscriberID, l.newAccount(subscriberID, now), func(acct *domain.Account) error {
		rolled = l.refresh(acct, now)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	limit := l.limit(acct.PlanID)
	return Snapshot{
		SubscriberID: subscriberID,
		PlanID:       acct.PlanID,
		Limit:        limit,
		Used:         acct.LeadsUsed,
		Reserved:     acct.LeadsReserved,
		Remaining:    acct.Remaining(limit),
		PeriodStart:  acct.LastCreditReset,
		NextReset:    acct.NextReset(),
		PeriodRolled: rolled,
	}, nil
}

// Remaining returns the credits a new request may claim.
func (l *Ledger) Remaining(ctx context.Context, subscriberID uuid.UUID) (int, error) {
	snap, err := l.Snapshot(ctx, subscriberID)
	if err != nil {
		return 0, err
	}
	return snap.Remaining, nil
}

func (l *Ledger) refresh(acct *domain.Account, now time.Time) bool {
	rolled := acct.RollIfDue(now)
	acct.DropStaleReservation(now, l.timeout)
	return rolled
}

// limit treats unknown plans as having no credits.
func (l *Ledger) limit(planID string) int {
	limit, ok := l.plans.PlanLimit(planID)
	if !ok {
		return 0
	}
	return limit
}

func (l *Ledger) newAccount(subscriberID uuid.UUID, now time.Time) domain.Account {
	return domain.NewAccount(subscriberID, l.plans.DefaultPlan(), now)
}
