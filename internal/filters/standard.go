package filters

import (
	"fmt"
	"strings"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Standard filter ids.
const (
	IDAbsenteeOwner   = "absentee-owner"
	IDHighEquity      = "high-equity"
	IDFreeAndClear    = "free-and-clear"
	IDTiredLandlord   = "tired-landlord"
	IDOutOfStateOwner = "out-of-state-owner"
	IDFailedListing   = "failed-listing"
)

// AbsenteeOwner matches owners whose mailing address differs from the
// property address. The explicit owner-occupancy flag always overrides the
// address comparison: a true flag is an authoritative negative, a false flag
// matches even when mailing data only partially confirms it.
func AbsenteeOwner(p *property.Record, _ filter.Params) filter.Match {
	if p.IsOwnerOccupied != nil && *p.IsOwnerOccupied {
		return filter.NoMatch(IDAbsenteeOwner, "Owner occupies the property")
	}

	flagAbsentee := p.IsOwnerOccupied != nil && !*p.IsOwnerOccupied

	if !p.HasMailingInfo() {
		if flagAbsentee {
			return filter.NewMatch(IDAbsenteeOwner, 75,
				"Owner-occupancy flag is false",
				"Mailing address unavailable for confirmation")
		}
		return filter.NoMatch(IDAbsenteeOwner,
			"Mailing address unavailable and occupancy unknown")
	}

	outOfState := p.MailingState != "" && p.State != "" && !sameState(p.MailingState, p.State)
	differentAddress := p.MailingAddress != "" && p.Address != "" && !sameAddress(p.MailingAddress, p.Address)

	switch {
	case flagAbsentee && outOfState:
		return filter.NewMatch(IDAbsenteeOwner, 95,
			"Owner-occupancy flag is false",
			fmt.Sprintf("Mailing state %s differs from property state %s", p.MailingState, p.State))
	case flagAbsentee && differentAddress:
		return filter.NewMatch(IDAbsenteeOwner, 85,
			"Owner-occupancy flag is false",
			"Mailing address differs from property address")
	case flagAbsentee:
		return filter.NewMatch(IDAbsenteeOwner, 75, "Owner-occupancy flag is false")
	case outOfState:
		return filter.NewMatch(IDAbsenteeOwner, 80,
			fmt.Sprintf("Mailing state %s differs from property state %s", p.MailingState, p.State))
	case differentAddress:
		return filter.NewMatch(IDAbsenteeOwner, 70,
			"Mailing address differs from property address")
	default:
		return filter.NoMatch(IDAbsenteeOwner, "Mailing address matches the property address")
	}
}

// HighEquity matches owners with equity at or above minEquityPercent
// (default 40). Score grows linearly with the margin above the threshold.
func HighEquity(p *property.Record, params filter.Params) filter.Match {
	minEquity := params.Float("minEquityPercent", 40)

	eq, ok := equityPercent(p)
	if !ok {
		return filter.NoMatch(IDHighEquity, "Equity data unavailable")
	}
	if eq < minEquity {
		return filter.NoMatch(IDHighEquity,
			fmt.Sprintf("Equity %.0f%% below %.0f%% threshold", eq, minEquity))
	}

	reasons := []string{fmt.Sprintf("Equity at %.0f%% (threshold %.0f%%)", eq, minEquity)}
	if eq >= 70 {
		reasons = append(reasons, "Very high equity (70%+)")
	}
	return filter.NewMatch(IDHighEquity, 60+(eq-minEquity), reasons...)
}

// FreeAndClear matches properties owned outright: 100% equity or an explicit
// zero mortgage balance.
func FreeAndClear(p *property.Record, _ filter.Params) filter.Match {
	eq, hasEquity := equityPercent(p)
	if hasEquity && eq >= 100 {
		return filter.NewMatch(IDFreeAndClear, 100, "Owned free and clear (100% equity)")
	}
	if p.MortgageBalance != nil && *p.MortgageBalance == 0 {
		return filter.NewMatch(IDFreeAndClear, 100, "No mortgage balance on record")
	}
	if !hasEquity && p.MortgageBalance == nil {
		return filter.NoMatch(IDFreeAndClear, "Mortgage and equity data unavailable")
	}
	return filter.NoMatch(IDFreeAndClear, "Property carries a mortgage")
}

// TiredLandlord matches long-term owners of non-owner-occupied rentals.
// minOwnershipYears defaults to 10.
func TiredLandlord(p *property.Record, params filter.Params) filter.Match {
	minYears := params.Float("minOwnershipYears", 10)

	if p.IsOwnerOccupied != nil && *p.IsOwnerOccupied {
		return filter.NoMatch(IDTiredLandlord, "Owner occupies the property")
	}
	flagRental := p.IsOwnerOccupied != nil && !*p.IsOwnerOccupied
	mailingDiffers := p.MailingState != "" && p.State != "" && !sameState(p.MailingState, p.State) ||
		p.MailingAddress != "" && p.Address != "" && !sameAddress(p.MailingAddress, p.Address)
	if !flagRental && !mailingDiffers {
		return filter.NoMatch(IDTiredLandlord, "No rental indicators on record")
	}

	years, ok := p.OwnershipYears()
	if !ok {
		return filter.NoMatch(IDTiredLandlord, "Ownership duration unknown")
	}
	if years < minYears {
		return filter.NoMatch(IDTiredLandlord,
			fmt.Sprintf("Owned %.1f years, below %.0f-year threshold", years, minYears))
	}

	reasons := []string{fmt.Sprintf("Landlord for %.0f years", years)}
	score := 70 + (years-minYears)*3
	if p.IsTaxDelinquent != nil && *p.IsTaxDelinquent {
		score += 10
		reasons = append(reasons, "Tax delinquency on file")
	}
	return filter.NewMatch(IDTiredLandlord, score, reasons...)
}

// OutOfStateOwner matches owners based in a different state than the
// property, from the owner state field or the mailing state.
func OutOfStateOwner(p *property.Record, _ filter.Params) filter.Match {
	ownerState := p.OwnerState
	if ownerState == "" {
		ownerState = p.MailingState
	}
	if ownerState == "" || p.State == "" {
		return filter.NoMatch(IDOutOfStateOwner, "Owner state unavailable")
	}
	if sameState(ownerState, p.State) {
		return filter.NoMatch(IDOutOfStateOwner, "Owner is in-state")
	}
	return filter.NewMatch(IDOutOfStateOwner, 90,
		fmt.Sprintf("Owner based in %s, property in %s", ownerState, p.State))
}

// FailedListing matches listings that expired, were withdrawn, or were
// cancelled. Sitting past minDaysOnMarket (default 90) adds a staleness bonus.
func FailedListing(p *property.Record, params filter.Params) filter.Match {
	minDays := params.Int("minDaysOnMarket", 90)

	status := strings.ToLower(p.ListingStatus)
	if status == "" {
		return filter.NoMatch(IDFailedListing, "Listing status unavailable")
	}
	switch status {
	case "expired", "withdrawn", "cancelled":
	default:
		return filter.NoMatch(IDFailedListing, "Listing did not fail")
	}

	reasons := []string{fmt.Sprintf("Listing %s without selling", status)}
	score := 75.0
	if p.DaysOnMarket != nil && *p.DaysOnMarket >= minDays {
		score += 15
		reasons = append(reasons, fmt.Sprintf("Sat %d days on market", *p.DaysOnMarket))
	}
	return filter.NewMatch(IDFailedListing, score, reasons...)
}
