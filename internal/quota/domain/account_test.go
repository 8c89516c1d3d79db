package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRemainingClampsAtZero(t *testing.T) {
	acct := Account{LeadsUsed: 48}
	if got := acct.Remaining(50); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	acct.LeadsReserved = 5
	if got := acct.Remaining(50); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestRollIfDueAnchorsOnNow(t *testing.T) {
	anchor := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	acct := NewAccount(uuid.New(), "free", anchor)
	acct.LeadsUsed = 40
	acct.Reserve(3, anchor)

	if acct.RollIfDue(anchor.AddDate(0, 1, 0).Add(-time.Second)) {
		t.Fatal("rolled before the boundary")
	}
	if acct.LeadsUsed != 40 {
		t.Fatalf("usage changed without roll: %d", acct.LeadsUsed)
	}

	now := time.Date(2025, 2, 20, 15, 30, 0, 0, time.UTC)
	if !acct.RollIfDue(now) {
		t.Fatal("expected roll after anchor + 1 month")
	}
	if acct.LeadsUsed != 0 || acct.LeadsReserved != 0 || acct.ReservedAt != nil {
		t.Fatalf("expected counters reset, got %+v", acct)
	}
	if !acct.LastCreditReset.Equal(now) {
		t.Fatalf("expected anchor %v, got %v", now, acct.LastCreditReset)
	}
}

func TestRollIfDueAtExactBoundary(t *testing.T) {
	anchor := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	acct := NewAccount(uuid.New(), "free", anchor)
	acct.LeadsUsed = 1

	if !acct.RollIfDue(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected roll at exactly anchor + 1 month")
	}
}

func TestNextResetClampsMonthEnd(t *testing.T) {
	acct := NewAccount(uuid.New(), "free", time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC))
	want := time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)
	if got := acct.NextReset(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDropStaleReservation(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	acct := NewAccount(uuid.New(), "free", now)
	acct.Reserve(4, now)

	if acct.DropStaleReservation(now.Add(10*time.Minute), 15*time.Minute) {
		t.Fatal("dropped a fresh reservation")
	}
	if !acct.DropStaleReservation(now.Add(15*time.Minute), 15*time.Minute) {
		t.Fatal("expected stale reservation to be dropped")
	}
	if acct.LeadsReserved != 0 {
		t.Fatalf("expected 0 reserved, got %d", acct.LeadsReserved)
	}
}

func TestSettleDebitsOnlyActual(t *testing.T) {
	now := time.Now()
	acct := NewAccount(uuid.New(), "free", now)
	acct.LeadsUsed = 10
	acct.Reserve(5, now)

	acct.Settle(5, 3, now)

	if acct.LeadsUsed != 13 {
		t.Fatalf("expected used 13, got %d", acct.LeadsUsed)
	}
	if acct.LeadsReserved != 0 || acct.ReservedAt != nil {
		t.Fatalf("expected reservation cleared, got %+v", acct)
	}
}
