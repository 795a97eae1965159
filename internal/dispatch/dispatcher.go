// Package dispatch resolves filter ids to their classifier implementations.
// It is the single point where "apply this filter" happens: unknown ids
// resolve to an unmatched result (stale client state is normal, not an
// error), panics inside a classifier are converted to unmatched results,
// and the result cache is consulted before evaluation.
package dispatch

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/parcelworks/dealfilter/internal/cache"
	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
	"github.com/parcelworks/dealfilter/internal/filters"
	"github.com/parcelworks/dealfilter/internal/metrics"
)

// Dispatcher applies filters by id, with caching and panic containment.
type Dispatcher struct {
	funcs  map[string]filters.Func
	cache  *cache.ResultCache
	logger *zap.Logger
}

// New creates a dispatcher over the full classifier table. The cache may be
// nil to disable memoization entirely.
func New(c *cache.ResultCache, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{funcs: classifierTable(), cache: c, logger: logger}
}

// classifierTable enumerates every filter id and its implementation. A unit
// test asserts 1:1 parity with the registry so the two cannot drift.
func classifierTable() map[string]filters.Func {
	return map[string]filters.Func{
		// standard
		filters.IDAbsenteeOwner:   filters.AbsenteeOwner,
		filters.IDHighEquity:      filters.HighEquity,
		filters.IDFreeAndClear:    filters.FreeAndClear,
		filters.IDTiredLandlord:   filters.TiredLandlord,
		filters.IDOutOfStateOwner: filters.OutOfStateOwner,
		filters.IDFailedListing:   filters.FailedListing,

		// enhanced
		filters.IDNewAbsentee:        filters.NewAbsentee,
		filters.IDDistantOwner:       filters.DistantOwner,
		filters.IDMultiPropertyOwner: filters.MultiPropertyOwner,
		filters.IDEquitySweetSpot:    filters.EquitySweetSpot,
		filters.IDAccidentalLandlord: filters.AccidentalLandlord,

		// contrarian
		filters.IDStalledContract:    filters.StalledContract,
		filters.IDShrinkingPortfolio: filters.ShrinkingPortfolio,
		filters.IDNegativeCashflow:   filters.NegativeCashflow,
		filters.IDTaxSpike:           filters.TaxSpike,
		filters.IDLongHeldNoRefi:     filters.LongHeldNoRefi,
		filters.IDUnderwaterPurchase: filters.UnderwaterPurchase,
		filters.IDFSBOFatigue:        filters.FSBOFatigue,
		filters.IDAgingInPlace:       filters.AgingInPlace,
		filters.IDLikelyVacant:       filters.LikelyVacant,
		filters.IDInvestorExit:       filters.InvestorExit,

		// shovels + combined
		filters.IDRecentPermitActivity:   filters.RecentPermitActivity,
		filters.IDStalledProject:         filters.StalledProject,
		filters.IDExpiredPermits:         filters.ExpiredPermits,
		filters.IDAbandonedProjectEquity: filters.AbandonedProjectEquity,
		filters.IDFlipInProgress:         filters.FlipInProgress,
		filters.IDDeferredMaintenance:    filters.DeferredMaintenance,
		filters.IDFailedInspections:      filters.FailedInspections,
		filters.IDPermitRichExit:         filters.PermitRichExit,

		// home services
		filters.IDRoofReplacementDue:       filters.RoofReplacementDue,
		filters.IDRoofAging:                filters.RoofAging,
		filters.IDRoofNeverPermitted:       filters.RoofNeverPermitted,
		filters.IDHVACReplacementDue:       filters.HVACReplacementDue,
		filters.IDHVACAging:                filters.HVACAging,
		filters.IDHVACNeverPermitted:       filters.HVACNeverPermitted,
		filters.IDElectricalReplacementDue: filters.ElectricalReplacementDue,
		filters.IDElectricalAging:          filters.ElectricalAging,
		filters.IDElectricalNeverPermitted: filters.ElectricalNeverPermitted,
		filters.IDPlumbingReplacementDue:   filters.PlumbingReplacementDue,
		filters.IDPlumbingAging:            filters.PlumbingAging,
		filters.IDPlumbingNeverPermitted:   filters.PlumbingNeverPermitted,
		filters.IDSolarReplacementDue:      filters.SolarReplacementDue,
		filters.IDSolarAging:               filters.SolarAging,
		filters.IDSolarCandidate:           filters.SolarCandidate,
	}
}

// Apply evaluates one active filter against one property. When useCache is
// true the result cache is consulted first and populated on miss.
func (d *Dispatcher) Apply(p *property.Record, active filter.Active, useCache bool) filter.Match {
	fn, ok := d.funcs[active.FilterID]
	if !ok {
		return filter.NoMatch(active.FilterID,
			fmt.Sprintf("No filter registered with id %q", active.FilterID))
	}

	if useCache && d.cache != nil {
		if m, hit := d.cache.Get(p.ID, active.FilterID, active.Params); hit {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return m
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	m := d.safeApply(fn, p, active)

	if useCache && d.cache != nil {
		d.cache.Set(p.ID, active.FilterID, active.Params, m)
	}
	return m
}

// safeApply runs the classifier and converts any panic into an unmatched
// result so one bad record never aborts a batch.
func (d *Dispatcher) safeApply(fn filters.Func, p *property.Record, active filter.Active) (m filter.Match) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("filter evaluation panicked",
				zap.String("filter_id", active.FilterID),
				zap.String("property_id", p.ID),
				zap.Any("panic", r),
			)
			m = filter.NoMatch(active.FilterID, "Filter evaluation failed internally")
		}
	}()

	m = fn(p, active.Params)
	metrics.FilterEvaluationsTotal.WithLabelValues(active.FilterID).Inc()
	return m
}

// Has reports whether a filter id has an implementation.
func (d *Dispatcher) Has(id string) bool {
	_, ok := d.funcs[id]
	return ok
}

// IDs returns every dispatchable filter id, sorted.
func (d *Dispatcher) IDs() []string {
	ids := make([]string, 0, len(d.funcs))
	for id := range d.funcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
