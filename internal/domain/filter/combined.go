package filter

import "github.com/parcelworks/dealfilter/internal/domain/property"

// Combined is the per-property output of the combination engine. It is never
// cached: it depends on the full active-filter set, which varies per request.
type Combined struct {
	Property      *property.Record `json:"property"`
	Matches       []Match          `json:"filterResults"`
	MatchedIDs    []string         `json:"matchedFilterIds"`
	CombinedScore float64          `json:"combinedScore"`
	Passes        bool             `json:"passesFilter"`
}
