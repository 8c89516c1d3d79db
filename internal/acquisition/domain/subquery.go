package domain

import (
	"fmt"
	"strings"
)

// SubQuery is one directory search derived from a Request.
type SubQuery struct {
	Text string
	City string
}

// BuildSubQueries expands a request into directory searches, in order.
// Free mode and guided mode with a city produce one sub-query. Guided mode
// without a city fans out over cities (the region's table, in order),
// skipping ExcludedCity. When nothing is left to fan out over, a single
// region-wide sub-query is used.
func BuildSubQueries(req Request, cities []string) []SubQuery {
	switch req.Mode {
	case ModeFree:
		return []SubQuery{{Text: req.FreeText}}
	case ModeGuided:
		if req.City != "" {
			return []SubQuery{{Text: guidedText(req.Niche, req.City, req.Region), City: req.City}}
		}
		out := make([]SubQuery, 0, len(cities))
		for _, city := range cities {
			if req.ExcludedCity != "" && strings.EqualFold(city, req.ExcludedCity) {
				continue
			}
			out = append(out, SubQuery{Text: guidedText(req.Niche, city, req.Region), City: city})
		}
		if len(out) == 0 {
			return []SubQuery{{Text: fmt.Sprintf("%s em %s", req.Niche, req.Region)}}
		}
		return out
	default:
		return nil
	}
}

func guidedText(niche, city, region string) string {
	return fmt.Sprintf("%s em %s, %s", niche, city, region)
}
