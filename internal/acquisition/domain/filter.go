package domain

import "strings"

// Filter decides which fetched leads are accepted.
type Filter struct {
	RequireContactInfo bool
	// Region is set only for guided searches.
	Region string
}

// NewFilter derives the acceptance filter for a request.
func NewFilter(req Request) Filter {
	f := Filter{RequireContactInfo: req.RequireContactInfo}
	if req.Mode == ModeGuided {
		f.Region = req.Region
	}
	return f
}

// Accept applies the contact and region rules. Deduplication is the
// exclusion set's job.
func (f Filter) Accept(l Lead) bool {
	if f.RequireContactInfo && !l.HasContact() {
		return false
	}
	if f.Region != "" && !MatchesRegion(l.Address, f.Region) {
		return false
	}
	return true
}

// MatchesRegion is a case-insensitive substring test of the region code
// against a free-text address. It can false-reject addresses that spell the
// region out and false-accept words that happen to contain the code.
func MatchesRegion(address, region string) bool {
	region = strings.TrimSpace(region)
	if region == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(address), strings.ToUpper(region))
}
