package domain

import (
	"time"

	"beleads_backend/platform/period"

	"github.com/google/uuid"
)

// Goal is the subscriber's monthly won-value target.
type Goal struct {
	SubscriberID       uuid.UUID
	MonthlyTargetCents int64
	ResetDay           int
	UpdatedAt          time.Time
}

// DefaultGoal is used until the subscriber saves one.
func DefaultGoal(subscriberID uuid.UUID) Goal {
	return Goal{SubscriberID: subscriberID, ResetDay: 1}
}

// Revenue is the won value inside the current goal window.
type Revenue struct {
	PeriodStart   time.Time
	WonValueCents int64
	TargetCents   int64
	// Progress is WonValueCents / TargetCents, 0 without a target.
	Progress float64
}

// ComputeRevenue sums potential value of won leads updated in [periodStart, now].
func ComputeRevenue(leads []CRMLead, goal Goal, now time.Time) Revenue {
	start := period.StartForResetDay(now, goal.ResetDay)

	var won int64
	for _, l := range leads {
		if l.Status != StatusWon {
			continue
		}
		if l.UpdatedAt.Before(start) || l.UpdatedAt.After(now) {
			continue
		}
		won += l.PotentialValueCents
	}

	rev := Revenue{PeriodStart: start, WonValueCents: won, TargetCents: goal.MonthlyTargetCents}
	if goal.MonthlyTargetCents > 0 {
		rev.Progress = float64(won) / float64(goal.MonthlyTargetCents)
	}
	return rev
}
