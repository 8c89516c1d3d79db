package validator

import (
	"strings"
	"testing"
)

type sample struct {
	Region string `validate:"required,region"`
	Niche  string `validate:"notblank"`
}

func TestRegisterValidationAndFieldErrors(t *testing.T) {
	val := New()
	if err := val.RegisterValidation("region", func(value string) bool {
		return strings.EqualFold(value, "SP")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := val.Struct(sample{Region: "sp", Niche: "Padarias"}); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}

	err := val.Struct(sample{Region: "XX", Niche: "   "})
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := FieldErrors(err)
	if fields["Region"] != "region" {
		t.Fatalf("expected Region to fail on region tag, got %v", fields)
	}
	if fields["Niche"] != "notblank" {
		t.Fatalf("expected Niche to fail on notblank tag, got %v", fields)
	}
}
