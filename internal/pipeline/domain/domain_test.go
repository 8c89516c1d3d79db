package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newLead(t *testing.T, now time.Time) CRMLead {
	t.Helper()
	return NewCRMLead(uuid.New(), Source{ExternalID: " place-1 ", Name: "Padaria Central"}, now)
}

func TestNewCRMLeadDefaults(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLead(t, now)

	if l.Status != StatusProspecting || l.Priority != PriorityMedium {
		t.Fatalf("unexpected defaults %s/%s", l.Status, l.Priority)
	}
	if l.ExternalID != "place-1" {
		t.Fatalf("expected trimmed external id, got %q", l.ExternalID)
	}
	if l.RecycleAt != nil {
		t.Fatal("new lead must not be scheduled for recycling")
	}
}

func TestChangeStatusSchedulesAndClearsRecycle(t *testing.T) {
	lostAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLead(t, lostAt)
	l.ChangeStatus(StatusNegotiation, lostAt, DefaultRecycleCooldown)
	l.ChangeStatus(StatusLost, lostAt, DefaultRecycleCooldown)

	want := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	if l.RecycleAt == nil || !l.RecycleAt.Equal(want) {
		t.Fatalf("expected recycleAt %v, got %v", want, l.RecycleAt)
	}

	for _, s := range []Status{StatusWon, StatusContacted, StatusProspecting, StatusNegotiation} {
		l.ChangeStatus(StatusLost, lostAt, DefaultRecycleCooldown)
		l.ChangeStatus(s, lostAt, DefaultRecycleCooldown)
		if l.RecycleAt != nil {
			t.Fatalf("moving to %s must clear recycleAt", s)
		}
	}
}

func TestScanRecycleScenario(t *testing.T) {
	lostAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLead(t, lostAt)
	l.Notes = "called twice"
	l.ChangeStatus(StatusLost, lostAt, DefaultRecycleCooldown)

	before := Scan([]CRMLead{l}, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC))
	if len(before.ToRestore) != 0 || len(before.Unchanged) != 1 {
		t.Fatalf("expected unchanged on 02-14, got %+v", before)
	}

	after := Scan([]CRMLead{l}, time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC))
	if len(after.ToRestore) != 1 {
		t.Fatalf("expected restore on 02-16, got %+v", after)
	}
	restored := after.ToRestore[0]
	if restored.Status != StatusProspecting || restored.RecycleAt != nil {
		t.Fatalf("unexpected restored state %s %v", restored.Status, restored.RecycleAt)
	}
	if !strings.HasPrefix(restored.Notes, "called twice\n") || !strings.Contains(restored.Notes, RecycleMarker) {
		t.Fatalf("expected recycle note appended, got %q", restored.Notes)
	}

	if l.Status != StatusLost {
		t.Fatal("scan must not mutate its input")
	}

	again := Scan(after.ToRestore, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if len(again.ToRestore) != 0 {
		t.Fatal("rescanning restored leads must be a no-op")
	}
}

func TestScanAtExactRecycleTime(t *testing.T) {
	lostAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLead(t, lostAt)
	l.ChangeStatus(StatusLost, lostAt, DefaultRecycleCooldown)

	res := Scan([]CRMLead{l}, lostAt.Add(DefaultRecycleCooldown))
	if len(res.ToRestore) != 1 {
		t.Fatal("expected restore at exactly T + cooldown")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" vip ", "", "VIP", "delivery", "vip"})
	if diff := cmp.Diff([]string{"vip", "delivery"}, got); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	if s, err := ParseStatus(" Won "); err != nil || s != StatusWon {
		t.Fatalf("expected won, got %s %v", s, err)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if p, err := ParsePriority("HIGH"); err != nil || p != PriorityHigh {
		t.Fatalf("expected high, got %s %v", p, err)
	}
}

func TestComputeRevenue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	goal := Goal{MonthlyTargetCents: 100_000, ResetDay: 15}

	mk := func(status Status, cents int64, updated time.Time) CRMLead {
		return CRMLead{Status: status, PotentialValueCents: cents, UpdatedAt: updated}
	}
	leads := []CRMLead{
		mk(StatusWon, 30_000, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)),
		mk(StatusWon, 20_000, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)),
		mk(StatusWon, 99_000, time.Date(2025, 2, 14, 23, 0, 0, 0, time.UTC)),
		mk(StatusNegotiation, 50_000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	rev := ComputeRevenue(leads, goal, now)

	if !rev.PeriodStart.Equal(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start %v", rev.PeriodStart)
	}
	if rev.WonValueCents != 50_000 {
		t.Fatalf("expected 50000 won, got %d", rev.WonValueCents)
	}
	if rev.Progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", rev.Progress)
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	l := newLead(t, now)
	l.Tags = []string{"a"}
	l.ChangeStatus(StatusLost, now, time.Hour)

	c := l.Clone()
	c.Tags[0] = "b"
	*c.RecycleAt = now

	if l.Tags[0] != "a" || l.RecycleAt.Equal(now) {
		t.Fatal("clone shares memory with original")
	}
}
