package filters

import (
	"fmt"
	"strings"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Contrarian filter ids: non-obvious distress and motivation signals.
const (
	IDStalledContract    = "stalled-contract"
	IDShrinkingPortfolio = "shrinking-portfolio"
	IDNegativeCashflow   = "negative-cashflow"
	IDTaxSpike           = "tax-spike"
	IDLongHeldNoRefi     = "long-held-no-refi"
	IDUnderwaterPurchase = "underwater-purchase"
	IDFSBOFatigue        = "fsbo-fatigue"
	IDAgingInPlace       = "aging-in-place"
	IDLikelyVacant       = "likely-vacant"
	IDInvestorExit       = "investor-exit"
)

// monthlyDebtServiceRate approximates monthly principal and interest as a
// fraction of the remaining balance.
const monthlyDebtServiceRate = 0.006

// StalledContract matches pending or contingent listings stuck past
// minPendingDays (default 45) — deals that likely fell out of escrow.
func StalledContract(p *property.Record, params filter.Params) filter.Match {
	minDays := params.Int("minPendingDays", 45)

	status := strings.ToLower(p.ListingStatus)
	if status == "" {
		return filter.NoMatch(IDStalledContract, "Listing status unavailable")
	}
	if status != "pending" && status != "contingent" {
		return filter.NoMatch(IDStalledContract, "Listing is not under contract")
	}
	if p.DaysOnMarket == nil {
		return filter.NoMatch(IDStalledContract, "Days on market unknown")
	}
	days := *p.DaysOnMarket
	if days < minDays {
		return filter.NoMatch(IDStalledContract,
			fmt.Sprintf("Under contract only %d days, below %d-day threshold", days, minDays))
	}

	return filter.NewMatch(IDStalledContract, 75+float64(days-minDays)/3,
		fmt.Sprintf("Listing %s for %d days without closing", status, days))
}

// ShrinkingPortfolio matches entity owners actively listing rental
// inventory — a landlord reducing exposure.
func ShrinkingPortfolio(p *property.Record, _ filter.Params) filter.Match {
	if !p.EntityOwned() {
		return filter.NoMatch(IDShrinkingPortfolio, "Owner appears to be an individual")
	}
	if p.IsListed == nil {
		return filter.NoMatch(IDShrinkingPortfolio, "Listing flag unavailable")
	}
	if !*p.IsListed {
		return filter.NoMatch(IDShrinkingPortfolio, "Entity is not selling this property")
	}

	reasons := []string{"Entity owner listing rental inventory"}
	score := 70.0
	if p.IsTaxDelinquent != nil && *p.IsTaxDelinquent {
		score += 10
		reasons = append(reasons, "Tax delinquency on file")
	}
	return filter.NewMatch(IDShrinkingPortfolio, score, reasons...)
}

// NegativeCashflow matches rentals whose estimated rent no longer covers
// taxes and estimated debt service by at least minMonthlyLoss (default $200).
func NegativeCashflow(p *property.Record, params filter.Params) filter.Match {
	minLoss := params.Float("minMonthlyLoss", 200)

	if p.IsOwnerOccupied != nil && *p.IsOwnerOccupied {
		return filter.NoMatch(IDNegativeCashflow, "Owner occupies the property")
	}
	if p.RentEstimate == nil {
		return filter.NoMatch(IDNegativeCashflow, "Rent estimate unavailable")
	}

	var monthlyCost float64
	var hasCost bool
	if p.TaxAmount != nil {
		monthlyCost += *p.TaxAmount / 12
		hasCost = true
	}
	if p.MortgageBalance != nil && *p.MortgageBalance > 0 {
		monthlyCost += *p.MortgageBalance * monthlyDebtServiceRate
		hasCost = true
	}
	if !hasCost {
		return filter.NoMatch(IDNegativeCashflow, "Tax and mortgage data unavailable")
	}

	loss := monthlyCost - *p.RentEstimate
	if loss < minLoss {
		return filter.NoMatch(IDNegativeCashflow,
			fmt.Sprintf("Estimated shortfall $%.0f/mo below $%.0f threshold", loss, minLoss))
	}

	return filter.NewMatch(IDNegativeCashflow, 70+loss/50,
		fmt.Sprintf("Estimated carrying costs exceed rent by $%.0f/mo", loss))
}

// TaxSpike matches year-over-year property tax increases of at least
// minIncreasePercent (default 25%).
func TaxSpike(p *property.Record, params filter.Params) filter.Match {
	minIncrease := params.Float("minIncreasePercent", 25)

	if p.TaxAmount == nil || p.PriorTaxAmount == nil {
		return filter.NoMatch(IDTaxSpike, "Tax history unavailable")
	}
	if *p.PriorTaxAmount <= 0 {
		return filter.NoMatch(IDTaxSpike, "Prior-year tax amount not usable")
	}

	increase := (*p.TaxAmount - *p.PriorTaxAmount) / *p.PriorTaxAmount * 100
	if increase < minIncrease {
		return filter.NoMatch(IDTaxSpike,
			fmt.Sprintf("Tax increase %.0f%% below %.0f%% threshold", increase, minIncrease))
	}

	return filter.NewMatch(IDTaxSpike, 65+(increase-minIncrease),
		fmt.Sprintf("Property tax jumped %.0f%% year over year", increase))
}

// LongHeldNoRefi matches owners of minOwnershipYears (default 15) or longer
// whose remaining mortgage is small relative to value — no cash-out activity,
// often an owner nearing a transition.
func LongHeldNoRefi(p *property.Record, params filter.Params) filter.Match {
	minYears := params.Float("minOwnershipYears", 15)

	years, ok := p.OwnershipYears()
	if !ok {
		return filter.NoMatch(IDLongHeldNoRefi, "Ownership duration unknown")
	}
	if years < minYears {
		return filter.NoMatch(IDLongHeldNoRefi,
			fmt.Sprintf("Owned %.1f years, below %.0f-year threshold", years, minYears))
	}
	if p.MortgageBalance == nil {
		return filter.NoMatch(IDLongHeldNoRefi, "Mortgage balance unknown")
	}
	if p.EstimatedValue == nil || *p.EstimatedValue <= 0 {
		return filter.NoMatch(IDLongHeldNoRefi, "Estimated value unavailable")
	}

	ratio := *p.MortgageBalance / *p.EstimatedValue
	if ratio > 0.2 {
		return filter.NoMatch(IDLongHeldNoRefi,
			fmt.Sprintf("Loan balance at %.0f%% of value suggests refinancing", ratio*100))
	}

	return filter.NewMatch(IDLongHeldNoRefi, 70+(years-minYears),
		fmt.Sprintf("Owned %.0f years with loan at %.0f%% of value", years, ratio*100))
}

// UnderwaterPurchase matches properties now valued at least
// minDeclinePercent (default 5%) below their last sale price.
func UnderwaterPurchase(p *property.Record, params filter.Params) filter.Match {
	minDecline := params.Float("minDeclinePercent", 5)

	if p.EstimatedValue == nil || p.LastSalePrice == nil {
		return filter.NoMatch(IDUnderwaterPurchase, "Value or sale-price data unavailable")
	}
	if *p.LastSalePrice <= 0 {
		return filter.NoMatch(IDUnderwaterPurchase, "Last sale price not usable")
	}

	decline := (*p.LastSalePrice - *p.EstimatedValue) / *p.LastSalePrice * 100
	if decline < minDecline {
		return filter.NoMatch(IDUnderwaterPurchase,
			fmt.Sprintf("Value decline %.1f%% below %.0f%% threshold", decline, minDecline))
	}

	return filter.NewMatch(IDUnderwaterPurchase, 65+(decline-minDecline)*2,
		fmt.Sprintf("Estimated value %.0f%% below the last sale price", decline))
}

// FSBOFatigue matches for-sale-by-owner listings lingering past
// minDaysOnMarket (default 60) without an agent.
func FSBOFatigue(p *property.Record, params filter.Params) filter.Match {
	minDays := params.Int("minDaysOnMarket", 60)

	if strings.ToLower(p.ListingStatus) != "fsbo" {
		return filter.NoMatch(IDFSBOFatigue, "Not listed for sale by owner")
	}
	if p.DaysOnMarket == nil {
		return filter.NoMatch(IDFSBOFatigue, "Days on market unknown")
	}
	days := *p.DaysOnMarket
	if days < minDays {
		return filter.NoMatch(IDFSBOFatigue,
			fmt.Sprintf("FSBO only %d days, below %d-day threshold", days, minDays))
	}

	return filter.NewMatch(IDFSBOFatigue, 70+float64(days-minDays)/3,
		fmt.Sprintf("Owner-listed for %d days without selling", days))
}

// AgingInPlace matches individual owner-occupants with minOwnershipYears
// (default 30) or more of tenure — a likely life-stage transition.
func AgingInPlace(p *property.Record, params filter.Params) filter.Match {
	minYears := params.Float("minOwnershipYears", 30)

	if p.EntityOwned() {
		return filter.NoMatch(IDAgingInPlace, "Entity-held property")
	}
	if p.IsOwnerOccupied == nil {
		return filter.NoMatch(IDAgingInPlace, "Occupancy unknown")
	}
	if !*p.IsOwnerOccupied {
		return filter.NoMatch(IDAgingInPlace, "Owner does not occupy the property")
	}

	years, ok := p.OwnershipYears()
	if !ok {
		return filter.NoMatch(IDAgingInPlace, "Ownership duration unknown")
	}
	if years < minYears {
		return filter.NoMatch(IDAgingInPlace,
			fmt.Sprintf("Occupied %.1f years, below %.0f-year threshold", years, minYears))
	}

	return filter.NewMatch(IDAgingInPlace, 70+(years-minYears),
		fmt.Sprintf("Owner-occupant for %.0f years", years))
}

// LikelyVacant matches non-owner-occupied, unlisted properties with no
// rental income on record; distress markers raise the score.
func LikelyVacant(p *property.Record, _ filter.Params) filter.Match {
	if p.IsOwnerOccupied == nil {
		return filter.NoMatch(IDLikelyVacant, "Occupancy unknown")
	}
	if *p.IsOwnerOccupied {
		return filter.NoMatch(IDLikelyVacant, "Owner occupies the property")
	}
	if p.IsListed != nil && *p.IsListed {
		return filter.NoMatch(IDLikelyVacant, "Property is actively listed")
	}
	if p.RentEstimate != nil {
		return filter.NoMatch(IDLikelyVacant, "Rental income estimated, likely tenanted")
	}

	reasons := []string{"No occupant or rental income indicators"}
	score := 65.0
	if p.IsTaxDelinquent != nil && *p.IsTaxDelinquent {
		score += 15
		reasons = append(reasons, "Tax delinquency on file")
	}
	if p.IsPreForeclosure != nil && *p.IsPreForeclosure {
		score += 10
		reasons = append(reasons, "Pre-foreclosure on file")
	}
	return filter.NewMatch(IDLikelyVacant, score, reasons...)
}

// InvestorExit matches entity owners listing inside the 2-6 year
// flip-or-hold decision window.
func InvestorExit(p *property.Record, _ filter.Params) filter.Match {
	if !p.EntityOwned() {
		return filter.NoMatch(IDInvestorExit, "Owner appears to be an individual")
	}
	if p.IsListed == nil {
		return filter.NoMatch(IDInvestorExit, "Listing flag unavailable")
	}
	if !*p.IsListed {
		return filter.NoMatch(IDInvestorExit, "Property is not listed")
	}
	if p.OwnershipMonths == nil {
		return filter.NoMatch(IDInvestorExit, "Ownership duration unknown")
	}
	months := *p.OwnershipMonths
	if months < 24 || months > 72 {
		return filter.NoMatch(IDInvestorExit,
			fmt.Sprintf("Owned %d months, outside the 24-72 month exit window", months))
	}

	reasons := []string{fmt.Sprintf("Investor listing after %d months of ownership", months)}
	score := 75.0
	if eq, ok := equityPercent(p); ok && eq >= 40 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Equity at %.0f%%", eq))
	}
	return filter.NewMatch(IDInvestorExit, score, reasons...)
}
