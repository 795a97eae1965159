package filters

import (
	"fmt"
	"math"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Enhanced filter ids.
const (
	IDNewAbsentee        = "new-absentee"
	IDDistantOwner       = "distant-owner"
	IDMultiPropertyOwner = "multi-property-owner"
	IDEquitySweetSpot    = "equity-sweet-spot"
	IDAccidentalLandlord = "accidental-landlord"
)

// NewAbsentee matches properties bought within maxOwnershipMonths (default
// 12) by an absentee owner — a fresh investor most open to wholesale offers.
func NewAbsentee(p *property.Record, params filter.Params) filter.Match {
	maxMonths := params.Int("maxOwnershipMonths", 12)

	base := AbsenteeOwner(p, nil)
	if !base.Matched {
		return filter.NoMatch(IDNewAbsentee, "Not an absentee owner: "+base.Reason)
	}
	if p.OwnershipMonths == nil {
		return filter.NoMatch(IDNewAbsentee, "Ownership duration unknown")
	}
	months := *p.OwnershipMonths
	if months > maxMonths {
		return filter.NoMatch(IDNewAbsentee,
			fmt.Sprintf("Owned %d months, past the %d-month window", months, maxMonths))
	}

	return filter.NewMatch(IDNewAbsentee, 80+float64(maxMonths-months),
		fmt.Sprintf("Purchased %d months ago by an absentee owner", months))
}

// DistantOwner matches owners whose state centroid is at least
// minDistanceMiles (default 500) from the property state centroid. This is a
// coarse state-level estimate by design, not geocoding.
func DistantOwner(p *property.Record, params filter.Params) filter.Match {
	minMiles := params.Float("minDistanceMiles", 500)

	ownerState := p.MailingState
	if ownerState == "" {
		ownerState = p.OwnerState
	}
	if ownerState == "" || p.State == "" {
		return filter.NoMatch(IDDistantOwner, "Owner state unavailable")
	}

	miles, ok := stateDistanceMiles(p.State, ownerState)
	if !ok {
		return filter.NoMatch(IDDistantOwner,
			fmt.Sprintf("No centroid for state %q or %q", p.State, ownerState))
	}
	if miles < minMiles {
		return filter.NoMatch(IDDistantOwner,
			fmt.Sprintf("Owner roughly %.0f miles away, inside the %.0f-mile threshold", miles, minMiles))
	}

	return filter.NewMatch(IDDistantOwner, 70+miles/100,
		fmt.Sprintf("Owner roughly %.0f miles from the property (state centroids)", miles))
}

// MultiPropertyOwner matches entity-held, non-owner-occupied properties that
// suggest a portfolio owner.
func MultiPropertyOwner(p *property.Record, _ filter.Params) filter.Match {
	if p.OwnerName == "" && p.OwnerType == "" {
		return filter.NoMatch(IDMultiPropertyOwner, "Owner information unavailable")
	}
	if !p.EntityOwned() {
		return filter.NoMatch(IDMultiPropertyOwner, "Owner appears to be an individual")
	}
	if p.IsOwnerOccupied != nil && *p.IsOwnerOccupied {
		return filter.NoMatch(IDMultiPropertyOwner, "Entity-held but owner-occupied")
	}

	reasons := []string{"Entity ownership suggests a portfolio holder"}
	score := 75.0
	if p.MailingState != "" && p.State != "" && !sameState(p.MailingState, p.State) {
		score += 10
		reasons = append(reasons, "Entity mails from another state")
	}
	return filter.NewMatch(IDMultiPropertyOwner, score, reasons...)
}

// EquitySweetSpot matches equity inside the [minEquityPercent,
// maxEquityPercent] band (default 40-70): enough to deal, but still carrying
// a loan worth retiring. Score peaks at the band center.
func EquitySweetSpot(p *property.Record, params filter.Params) filter.Match {
	minEquity := params.Float("minEquityPercent", 40)
	maxEquity := params.Float("maxEquityPercent", 70)
	if maxEquity <= minEquity {
		maxEquity = minEquity + 1
	}

	eq, ok := equityPercent(p)
	if !ok {
		return filter.NoMatch(IDEquitySweetSpot, "Equity data unavailable")
	}
	if eq < minEquity || eq > maxEquity {
		return filter.NoMatch(IDEquitySweetSpot,
			fmt.Sprintf("Equity %.0f%% outside the %.0f-%.0f%% band", eq, minEquity, maxEquity))
	}

	mid := (minEquity + maxEquity) / 2
	half := (maxEquity - minEquity) / 2
	score := 70 + 30*(1-math.Abs(eq-mid)/half)
	return filter.NewMatch(IDEquitySweetSpot, score,
		fmt.Sprintf("Equity %.0f%% inside the %.0f-%.0f%% sweet spot", eq, minEquity, maxEquity))
}

// AccidentalLandlord matches individual owners who stopped occupying a home
// within maxOwnershipYears (default 3) of the occupancy flip but stayed in
// the area — renters by circumstance, not by plan.
func AccidentalLandlord(p *property.Record, params filter.Params) filter.Match {
	maxYears := params.Float("maxOwnershipYears", 3)

	if p.EntityOwned() {
		return filter.NoMatch(IDAccidentalLandlord, "Entity owners are deliberate landlords")
	}
	if p.IsOwnerOccupied == nil {
		return filter.NoMatch(IDAccidentalLandlord, "Occupancy unknown")
	}
	if *p.IsOwnerOccupied {
		return filter.NoMatch(IDAccidentalLandlord, "Owner occupies the property")
	}
	if !p.HasMailingInfo() {
		return filter.NoMatch(IDAccidentalLandlord, "Mailing address unavailable")
	}
	if p.MailingState != "" && p.State != "" && !sameState(p.MailingState, p.State) {
		return filter.NoMatch(IDAccidentalLandlord, "Owner moved out of state")
	}

	years, ok := p.OwnershipYears()
	if !ok {
		return filter.NoMatch(IDAccidentalLandlord, "Ownership duration unknown")
	}
	if years > maxYears {
		return filter.NoMatch(IDAccidentalLandlord,
			fmt.Sprintf("Owned %.1f years, past the %.0f-year window", years, maxYears))
	}

	reasons := []string{"Individual owner recently stopped occupying"}
	score := 70.0
	if p.MailingCity != "" && p.City != "" && normalizeAddress(p.MailingCity) == normalizeAddress(p.City) {
		score += 10
		reasons = append(reasons, "Owner still mails from the same city")
	}
	return filter.NewMatch(IDAccidentalLandlord, score, reasons...)
}
