package filters

import (
	"fmt"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Permit-data-dependent filter ids. Every filter here requires the Shovels
// permit join and short-circuits to unmatched without it.
const (
	IDRecentPermitActivity   = "recent-permit-activity"
	IDStalledProject         = "stalled-project"
	IDExpiredPermits         = "expired-permits"
	IDAbandonedProjectEquity = "abandoned-project-equity"
	IDFlipInProgress         = "flip-in-progress"
	IDDeferredMaintenance    = "deferred-maintenance"
	IDFailedInspections      = "failed-inspections"
	IDPermitRichExit         = "permit-rich-exit"
)

const noPermitDataReason = "No permit data for this property"

// permitData returns the permit join, or an unmatched result when absent.
func permitData(id string, p *property.Record) (*property.PermitData, filter.Match, bool) {
	if !p.HasPermitData() {
		return nil, filter.NoMatch(id, noPermitDataReason), false
	}
	return p.Permits, filter.Match{}, true
}

// RecentPermitActivity matches properties with at least minRecentPermits
// (default 1) pulled in the last two years.
func RecentPermitActivity(p *property.Record, params filter.Params) filter.Match {
	d, miss, ok := permitData(IDRecentPermitActivity, p)
	if !ok {
		return miss
	}
	minPermits := params.Int("minRecentPermits", 1)

	if d.RecentPermitCount == nil {
		return filter.NoMatch(IDRecentPermitActivity, "Recent permit count unavailable")
	}
	count := *d.RecentPermitCount
	if count < minPermits {
		return filter.NoMatch(IDRecentPermitActivity,
			fmt.Sprintf("%d recent permits, below %d threshold", count, minPermits))
	}

	reasons := []string{fmt.Sprintf("%d permits pulled in the last two years", count)}
	score := 65 + float64(count)*10
	if d.TotalJobValue != nil && *d.TotalJobValue > 0 {
		reasons = append(reasons, fmt.Sprintf("$%.0f in permitted work", *d.TotalJobValue))
	}
	return filter.NewMatch(IDRecentPermitActivity, score, reasons...)
}

// StalledProject matches an open permit with no progress.
func StalledProject(p *property.Record, _ filter.Params) filter.Match {
	d, miss, ok := permitData(IDStalledProject, p)
	if !ok {
		return miss
	}
	if d.HasStalledPermit == nil {
		return filter.NoMatch(IDStalledProject, "Stalled-permit flag unavailable")
	}
	if !*d.HasStalledPermit {
		return filter.NoMatch(IDStalledProject, "No stalled permits on record")
	}

	reasons := []string{"Permitted work started and stopped"}
	if d.TotalJobValue != nil && *d.TotalJobValue > 0 {
		reasons = append(reasons, fmt.Sprintf("$%.0f project on hold", *d.TotalJobValue))
	}
	return filter.NewMatch(IDStalledProject, 80, reasons...)
}

// ExpiredPermits matches permits that lapsed before final inspection.
func ExpiredPermits(p *property.Record, _ filter.Params) filter.Match {
	d, miss, ok := permitData(IDExpiredPermits, p)
	if !ok {
		return miss
	}
	if d.HasExpiredPermit == nil {
		return filter.NoMatch(IDExpiredPermits, "Expired-permit flag unavailable")
	}
	if !*d.HasExpiredPermit {
		return filter.NoMatch(IDExpiredPermits, "No expired permits on record")
	}
	return filter.NewMatch(IDExpiredPermits, 75, "Permit expired before final inspection")
}

// AbandonedProjectEquity matches high-equity owners sitting on a stalled or
// expired project — capital tied up in work they walked away from.
func AbandonedProjectEquity(p *property.Record, params filter.Params) filter.Match {
	d, miss, ok := permitData(IDAbandonedProjectEquity, p)
	if !ok {
		return miss
	}
	minEquity := params.Float("minEquityPercent", 50)

	stalled := d.HasStalledPermit != nil && *d.HasStalledPermit
	expired := d.HasExpiredPermit != nil && *d.HasExpiredPermit
	if !stalled && !expired {
		return filter.NoMatch(IDAbandonedProjectEquity, "No abandoned project on record")
	}

	eq, hasEq := equityPercent(p)
	if !hasEq {
		return filter.NoMatch(IDAbandonedProjectEquity, "Equity data unavailable")
	}
	if eq < minEquity {
		return filter.NoMatch(IDAbandonedProjectEquity,
			fmt.Sprintf("Equity %.0f%% below %.0f%% threshold", eq, minEquity))
	}

	reasons := []string{"High equity owner with abandoned project"}
	if eq >= 70 {
		reasons = append(reasons, "Very high equity (70%+)")
	}
	return filter.NewMatch(IDAbandonedProjectEquity, 85+(eq-minEquity)/2, reasons...)
}

// FlipInProgress matches recent investor purchases with active renovation
// permits — a flip that may be for sale before it finishes.
func FlipInProgress(p *property.Record, _ filter.Params) filter.Match {
	d, miss, ok := permitData(IDFlipInProgress, p)
	if !ok {
		return miss
	}
	if d.RecentPermitCount == nil || *d.RecentPermitCount == 0 {
		return filter.NoMatch(IDFlipInProgress, "No recent renovation permits")
	}
	if p.OwnershipMonths == nil {
		return filter.NoMatch(IDFlipInProgress, "Ownership duration unknown")
	}
	if *p.OwnershipMonths > 18 {
		return filter.NoMatch(IDFlipInProgress,
			fmt.Sprintf("Owned %d months, past the flip window", *p.OwnershipMonths))
	}

	absentee := AbsenteeOwner(p, nil)
	if !p.EntityOwned() && !absentee.Matched {
		return filter.NoMatch(IDFlipInProgress, "No investor indicators on the owner")
	}

	reasons := []string{
		fmt.Sprintf("Renovation permits within %d months of purchase", *p.OwnershipMonths),
	}
	score := 75.0
	if d.TotalJobValue != nil && *d.TotalJobValue >= 25000 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("$%.0f renovation underway", *d.TotalJobValue))
	}
	return filter.NewMatch(IDFlipInProgress, score, reasons...)
}

// DeferredMaintenance matches older homes with long ownership and no
// permitted work for minYearsSincePermit (default 15) years.
func DeferredMaintenance(p *property.Record, params filter.Params) filter.Match {
	d, miss, ok := permitData(IDDeferredMaintenance, p)
	if !ok {
		return miss
	}
	minYears := params.Float("minYearsSincePermit", 15)

	age, hasAge := p.Age(timeNow())
	if !hasAge {
		return filter.NoMatch(IDDeferredMaintenance, "Build year unknown")
	}
	if float64(age) < minYears {
		return filter.NoMatch(IDDeferredMaintenance,
			fmt.Sprintf("Home only %d years old", age))
	}

	years, reason := yearsSinceLastPermit(d, float64(age))
	if years < minYears {
		return filter.NoMatch(IDDeferredMaintenance,
			fmt.Sprintf("Permitted work %.0f years ago, inside the %.0f-year threshold", years, minYears))
	}

	return filter.NewMatch(IDDeferredMaintenance, 70+(years-minYears), reason)
}

// yearsSinceLastPermit returns the years since the most recent per-system
// permit date, falling back to the home age when no dates parse.
func yearsSinceLastPermit(d *property.PermitData, homeAge float64) (float64, string) {
	dates := []string{
		d.LastRoofingDate, d.LastHVACDate, d.LastElectricalDate,
		d.LastPlumbingDate, d.LastSolarDate, d.LastWaterHeaterDate,
	}
	best := -1.0
	for _, date := range dates {
		if y, ok := yearsSince(date); ok && (best < 0 || y < best) {
			best = y
		}
	}
	if best < 0 {
		return homeAge, fmt.Sprintf("No permitted work in %.0f years on record", homeAge)
	}
	return best, fmt.Sprintf("Last permitted work %.0f years ago", best)
}

// FailedInspections matches low inspection pass rates
// (maxPassRatePercent default 70); distress markers raise the score.
func FailedInspections(p *property.Record, params filter.Params) filter.Match {
	d, miss, ok := permitData(IDFailedInspections, p)
	if !ok {
		return miss
	}
	maxRate := params.Float("maxPassRatePercent", 70)

	if d.InspectionPassRate == nil {
		return filter.NoMatch(IDFailedInspections, "Inspection pass rate unavailable")
	}
	ratePct := *d.InspectionPassRate * 100
	if ratePct > maxRate {
		return filter.NoMatch(IDFailedInspections,
			fmt.Sprintf("Pass rate %.0f%% above %.0f%% threshold", ratePct, maxRate))
	}

	reasons := []string{fmt.Sprintf("Inspections passing at only %.0f%%", ratePct)}
	score := 70 + (maxRate - ratePct)
	if p.IsTaxDelinquent != nil && *p.IsTaxDelinquent {
		score += 10
		reasons = append(reasons, "Tax delinquency on file")
	}
	if p.IsPreForeclosure != nil && *p.IsPreForeclosure {
		score += 10
		reasons = append(reasons, "Pre-foreclosure on file")
	}
	return filter.NewMatch(IDFailedInspections, score, reasons...)
}

// PermitRichExit matches heavily renovated properties now listed for sale.
func PermitRichExit(p *property.Record, _ filter.Params) filter.Match {
	d, miss, ok := permitData(IDPermitRichExit, p)
	if !ok {
		return miss
	}
	if d.TotalJobValue == nil {
		return filter.NoMatch(IDPermitRichExit, "Permitted job value unavailable")
	}
	if *d.TotalJobValue < 50000 {
		return filter.NoMatch(IDPermitRichExit,
			fmt.Sprintf("$%.0f in permitted work below the $50000 bar", *d.TotalJobValue))
	}
	if p.IsListed == nil {
		return filter.NoMatch(IDPermitRichExit, "Listing flag unavailable")
	}
	if !*p.IsListed {
		return filter.NoMatch(IDPermitRichExit, "Renovated but not listed")
	}

	return filter.NewMatch(IDPermitRichExit, 75+*d.TotalJobValue/25000,
		fmt.Sprintf("$%.0f of permitted work now listed for sale", *d.TotalJobValue))
}
