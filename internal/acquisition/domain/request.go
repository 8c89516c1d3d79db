package domain

import (
	"fmt"
	"strings"

	"beleads_backend/platform/apperr"
)

// Mode selects how the search text is built.
type Mode string

const (
	ModeFree   Mode = "free"
	ModeGuided Mode = "guided"
)

// Request is one logical acquisition request.
type Request struct {
	Mode               Mode
	FreeText           string
	Niche              string
	Region             string
	City               string
	ExcludedCity       string
	RequireContactInfo bool
	TargetCount        int
	AddToPipeline      bool
}

// Normalized trims text fields and upper-cases the region code.
func (r Request) Normalized() Request {
	r.FreeText = strings.TrimSpace(r.FreeText)
	r.Niche = strings.TrimSpace(r.Niche)
	r.Region = strings.ToUpper(strings.TrimSpace(r.Region))
	r.City = strings.TrimSpace(r.City)
	r.ExcludedCity = strings.TrimSpace(r.ExcludedCity)
	return r
}

// Validate checks required fields per mode. It runs before any quota or
// directory interaction.
func (r Request) Validate(maxTarget int, knownRegion func(string) bool) error {
	if r.TargetCount < 1 {
		return apperr.Validation("targetCount must be at least 1")
	}
	if maxTarget > 0 && r.TargetCount > maxTarget {
		return apperr.Validation(fmt.Sprintf("targetCount must be at most %d", maxTarget))
	}

	switch r.Mode {
	case ModeFree:
		if r.FreeText == "" {
			return apperr.Validation("freeText is required in free mode")
		}
	case ModeGuided:
		if r.Niche == "" {
			return apperr.Validation("niche is required in guided mode")
		}
		if r.Region == "" {
			return apperr.Validation("region is required in guided mode")
		}
		if knownRegion != nil && !knownRegion(r.Region) {
			return apperr.Validation(fmt.Sprintf("unknown region %s", r.Region))
		}
	default:
		return apperr.Validation(fmt.Sprintf("unknown mode %q", r.Mode))
	}
	return nil
}

// QueryText is the label recorded in history for this request.
func (r Request) QueryText() string {
	if r.Mode == ModeFree {
		return r.FreeText
	}
	if r.City != "" {
		return guidedText(r.Niche, r.City, r.Region)
	}
	return fmt.Sprintf("%s em %s", r.Niche, r.Region)
}
