// Package domain contains the acquisition domain: leads, requests,
// sub-query expansion, acceptance filters and the exclusion set.
package domain

import (
	"strings"

	"beleads_backend/platform/phone"
)

// Lead is a candidate business returned by the directory source.
// It is never mutated after a search returns it.
type Lead struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone,omitempty"`
	Website         string  `json:"website,omitempty"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"reviewCount"`
	ExternalMapLink string  `json:"externalMapLink,omitempty"`
}

// Normalized trims text fields, formats the phone as E.164 when possible and
// clamps rating and review count at zero. Placeholder phones become empty.
func (l Lead) Normalized() Lead {
	out := Lead{
		ID:              strings.TrimSpace(l.ID),
		Name:            strings.TrimSpace(l.Name),
		Category:        strings.TrimSpace(l.Category),
		Address:         strings.TrimSpace(l.Address),
		Phone:           phone.NormalizeE164(l.Phone),
		Website:         strings.TrimSpace(l.Website),
		Rating:          l.Rating,
		ReviewCount:     l.ReviewCount,
		ExternalMapLink: strings.TrimSpace(l.ExternalMapLink),
	}
	if out.Rating < 0 {
		out.Rating = 0
	}
	if out.ReviewCount < 0 {
		out.ReviewCount = 0
	}
	return out
}

// HasContact reports whether the lead carries a usable phone number.
func (l Lead) HasContact() bool {
	return phone.HasContact(l.Phone)
}
