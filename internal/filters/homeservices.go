package filters

import (
	"fmt"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Home-services filter ids: per-vertical readiness heuristics based on
// system age from permit history, with a build-year fallback.
const (
	IDRoofReplacementDue       = "roof-replacement-due"
	IDRoofAging                = "roof-aging"
	IDRoofNeverPermitted       = "roof-never-permitted"
	IDHVACReplacementDue       = "hvac-replacement-due"
	IDHVACAging                = "hvac-aging"
	IDHVACNeverPermitted       = "hvac-never-permitted"
	IDElectricalReplacementDue = "electrical-replacement-due"
	IDElectricalAging          = "electrical-aging"
	IDElectricalNeverPermitted = "electrical-never-permitted"
	IDPlumbingReplacementDue   = "plumbing-replacement-due"
	IDPlumbingAging            = "plumbing-aging"
	IDPlumbingNeverPermitted   = "plumbing-never-permitted"
	IDSolarReplacementDue      = "solar-replacement-due"
	IDSolarAging               = "solar-aging"
	IDSolarCandidate           = "solar-candidate"
)

// homeSystem describes one service vertical: where its last-worked dates
// live in the permit join and its expected life milestones in years.
type homeSystem struct {
	label        string
	dates        func(*property.PermitData) []string
	replaceAfter float64
	agingAfter   float64
}

var (
	roofSystem = homeSystem{
		label:        "Roof",
		dates:        func(d *property.PermitData) []string { return []string{d.LastRoofingDate} },
		replaceAfter: 20,
		agingAfter:   12,
	}
	hvacSystem = homeSystem{
		label:        "HVAC",
		dates:        func(d *property.PermitData) []string { return []string{d.LastHVACDate} },
		replaceAfter: 15,
		agingAfter:   8,
	}
	electricalSystem = homeSystem{
		label:        "Electrical",
		dates:        func(d *property.PermitData) []string { return []string{d.LastElectricalDate} },
		replaceAfter: 35,
		agingAfter:   25,
	}
	plumbingSystem = homeSystem{
		label: "Plumbing",
		dates: func(d *property.PermitData) []string {
			return []string{d.LastPlumbingDate, d.LastWaterHeaterDate}
		},
		replaceAfter: 40,
		agingAfter:   25,
	}
	solarSystem = homeSystem{
		label:        "Solar",
		dates:        func(d *property.PermitData) []string { return []string{d.LastSolarDate} },
		replaceAfter: 20,
		agingAfter:   12,
	}
)

// systemAge resolves the system age in years: most recent permit date first,
// build year as the fallback. The source is reported for the reason string.
func systemAge(p *property.Record, sys homeSystem) (years float64, source string, ok bool) {
	if p.HasPermitData() {
		best := -1.0
		for _, date := range sys.dates(p.Permits) {
			if y, parsed := yearsSince(date); parsed && (best < 0 || y < best) {
				best = y
			}
		}
		if best >= 0 {
			return best, "permit history", true
		}
	}
	if age, hasAge := p.Age(timeNow()); hasAge {
		return float64(age), "build year", true
	}
	return 0, "", false
}

// replacementDue builds a filter matching a system at or past its expected
// service life (minSystemAgeYears, default per vertical).
func replacementDue(id string, sys homeSystem) Func {
	return func(p *property.Record, params filter.Params) filter.Match {
		minAge := params.Float("minSystemAgeYears", sys.replaceAfter)

		age, source, ok := systemAge(p, sys)
		if !ok {
			return filter.NoMatch(id, sys.label+" system age unknown: no permit history or build year")
		}
		if age < minAge {
			return filter.NoMatch(id,
				fmt.Sprintf("%s system roughly %.0f years old, below the %.0f-year mark", sys.label, age, minAge))
		}
		return filter.NewMatch(id, 70+(age-minAge)*3,
			fmt.Sprintf("%s system roughly %.0f years old (%s)", sys.label, age, source))
	}
}

// agingSystem builds a filter matching the repair-likely window between
// minSystemAgeYears (default per vertical) and the replacement milestone.
func agingSystem(id string, sys homeSystem) Func {
	return func(p *property.Record, params filter.Params) filter.Match {
		minAge := params.Float("minSystemAgeYears", sys.agingAfter)

		age, source, ok := systemAge(p, sys)
		if !ok {
			return filter.NoMatch(id, sys.label+" system age unknown: no permit history or build year")
		}
		if age < minAge {
			return filter.NoMatch(id,
				fmt.Sprintf("%s system roughly %.0f years old, below the %.0f-year mark", sys.label, age, minAge))
		}
		if age >= sys.replaceAfter {
			return filter.NoMatch(id,
				fmt.Sprintf("%s system past the repair window; replacement due", sys.label))
		}
		score := 60 + (age-minAge)*2
		if score > 85 {
			score = 85
		}
		return filter.NewMatch(id, score,
			fmt.Sprintf("%s system in the repair window at roughly %.0f years (%s)", sys.label, age, source))
	}
}

// neverPermitted builds a filter matching older homes with no permit on
// record for the system. Requires the permit join: without it, absence of
// permits cannot be distinguished from absence of data.
func neverPermitted(id string, sys homeSystem) Func {
	return func(p *property.Record, params filter.Params) filter.Match {
		minHomeAge := params.Float("minHomeAgeYears", 20)

		if !p.HasPermitData() {
			return filter.NoMatch(id, noPermitDataReason)
		}
		for _, date := range sys.dates(p.Permits) {
			if _, parsed := yearsSince(date); parsed {
				return filter.NoMatch(id, sys.label+" work is on record")
			}
		}
		age, hasAge := p.Age(timeNow())
		if !hasAge {
			return filter.NoMatch(id, "Build year unknown")
		}
		if float64(age) < minHomeAge {
			return filter.NoMatch(id,
				fmt.Sprintf("Home only %d years old", age))
		}
		score := 65 + (float64(age)-minHomeAge)/2
		if score > 90 {
			score = 90
		}
		return filter.NewMatch(id, score,
			fmt.Sprintf("No %s permit on record for a %d-year-old home", sys.label, age))
	}
}

// SolarCandidate matches homes with no solar installation on record — an
// install opportunity rather than a wear-out signal. Higher-value homes
// score higher.
func SolarCandidate(p *property.Record, params filter.Params) filter.Match {
	base := neverPermitted(IDSolarCandidate, solarSystem)(p, params)
	if !base.Matched {
		return base
	}
	if p.EstimatedValue != nil && *p.EstimatedValue >= 400000 {
		return filter.NewMatch(IDSolarCandidate, base.Score+10,
			base.Reason, "Higher-value home")
	}
	return base
}

// The fourteen constructed vertical filters.
var (
	RoofReplacementDue       = replacementDue(IDRoofReplacementDue, roofSystem)
	RoofAging                = agingSystem(IDRoofAging, roofSystem)
	RoofNeverPermitted       = neverPermitted(IDRoofNeverPermitted, roofSystem)
	HVACReplacementDue       = replacementDue(IDHVACReplacementDue, hvacSystem)
	HVACAging                = agingSystem(IDHVACAging, hvacSystem)
	HVACNeverPermitted       = neverPermitted(IDHVACNeverPermitted, hvacSystem)
	ElectricalReplacementDue = replacementDue(IDElectricalReplacementDue, electricalSystem)
	ElectricalAging          = agingSystem(IDElectricalAging, electricalSystem)
	ElectricalNeverPermitted = neverPermitted(IDElectricalNeverPermitted, electricalSystem)
	PlumbingReplacementDue   = replacementDue(IDPlumbingReplacementDue, plumbingSystem)
	PlumbingAging            = agingSystem(IDPlumbingAging, plumbingSystem)
	PlumbingNeverPermitted   = neverPermitted(IDPlumbingNeverPermitted, plumbingSystem)
	SolarReplacementDue      = replacementDue(IDSolarReplacementDue, solarSystem)
	SolarAging               = agingSystem(IDSolarAging, solarSystem)
)
