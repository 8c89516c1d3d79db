// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// placeholders are values the directory source returns instead of a number.
var placeholders = map[string]struct{}{
	"":              {},
	"unknown":       {},
	"n/a":           {},
	"na":            {},
	"none":          {},
	"null":          {},
	"-":             {},
	"não informado": {},
	"nao informado": {},
	"sem telefone":  {},
	"desconhecido":  {},
	"not available": {},
	"indisponível":  {},
	"indisponivel":  {},
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
// Placeholder values normalize to the empty string.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if IsPlaceholder(trimmed) {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsPlaceholder reports whether value stands for "no phone number".
func IsPlaceholder(value string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// HasContact reports whether value holds something dialable: not a placeholder
// and containing at least eight digits.
func HasContact(value string) bool {
	if IsPlaceholder(value) {
		return false
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8
}
