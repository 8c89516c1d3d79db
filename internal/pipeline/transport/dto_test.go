package transport

import (
	"testing"

	"beleads_backend/platform/validator"
)

func TestAmountsAreBoundedBeforeCentsConversion(t *testing.T) {
	val := validator.New()
	huge := 1e18

	fields := validator.FieldErrors(val.Struct(UpdateLeadRequest{PotentialValue: &huge}))
	if fields["PotentialValue"] != "max" {
		t.Fatalf("expected PotentialValue to fail on max, got %v", fields)
	}

	fields = validator.FieldErrors(val.Struct(GoalRequest{MonthlyTarget: huge, ResetDay: 1}))
	if fields["MonthlyTarget"] != "max" {
		t.Fatalf("expected MonthlyTarget to fail on max, got %v", fields)
	}

	ok := 1_000_000_000_000.0
	if err := val.Struct(UpdateLeadRequest{PotentialValue: &ok}); err != nil {
		t.Fatalf("largest amount must be accepted: %v", err)
	}
	if got := ToCents(ok); got != 100_000_000_000_000 {
		t.Fatalf("ToCents(%v) = %d", ok, got)
	}
}
