// Package domain holds the quota account aggregate and its pure rules.
package domain

import (
	"time"

	"beleads_backend/platform/period"

	"github.com/google/uuid"
)

// Account is a subscriber's consumable lead credit balance.
// The period is anchored on LastCreditReset, not on calendar boundaries.
type Account struct {
	SubscriberID    uuid.UUID
	PlanID          string
	LeadsUsed       int
	LeadsReserved   int
	ReservedAt      *time.Time
	LastCreditReset time.Time
	UpdatedAt       time.Time
}

// NewAccount opens a fresh account whose first period starts now.
func NewAccount(subscriberID uuid.UUID, planID string, now time.Time) Account {
	return Account{
		SubscriberID:    subscriberID,
		PlanID:          planID,
		LastCreditReset: now,
		UpdatedAt:       now,
	}
}

// Remaining is the number of credits a new request may still claim.
// In-flight reservations count against it. Never negative.
func (a *Account) Remaining(limit int) int {
	left := limit - a.LeadsUsed - a.LeadsReserved
	if left < 0 {
		return 0
	}
	return left
}

// NextReset is the instant at which the current period rolls over.
func (a *Account) NextReset() time.Time {
	return period.AddMonth(a.LastCreditReset)
}

// RollIfDue resets usage when now has reached anchor + 1 calendar month.
// The new anchor is now itself, so the window follows the subscriber.
func (a *Account) RollIfDue(now time.Time) bool {
	if !period.Due(a.LastCreditReset, now) {
		return false
	}
	a.LeadsUsed = 0
	a.LeadsReserved = 0
	a.ReservedAt = nil
	a.LastCreditReset = now
	a.UpdatedAt = now
	return true
}

// DropStaleReservation forgets reservations older than timeout.
// A crashed acquisition must not hold credits forever.
func (a *Account) DropStaleReservation(now time.Time, timeout time.Duration) bool {
	if a.LeadsReserved == 0 || a.ReservedAt == nil || timeout <= 0 {
		return false
	}
	if now.Sub(*a.ReservedAt) < timeout {
		return false
	}
	a.LeadsReserved = 0
	a.ReservedAt = nil
	a.UpdatedAt = now
	return true
}

// Reserve holds n credits for an in-flight acquisition.
func (a *Account) Reserve(n int, now time.Time) {
	a.LeadsReserved += n
	a.ReservedAt = &now
	a.UpdatedAt = now
}

// Settle releases n reserved credits and debits actual of them as used.
func (a *Account) Settle(reserved, actual int, now time.Time) {
	a.LeadsReserved -= reserved
	if a.LeadsReserved <= 0 {
		a.LeadsReserved = 0
		a.ReservedAt = nil
	}
	if actual > 0 {
		a.LeadsUsed += actual
	}
	a.UpdatedAt = now
}
