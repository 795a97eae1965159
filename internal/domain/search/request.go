// Package search defines the validated search request and the ranked
// response types returned by the orchestrator.
package search

import (
	"fmt"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
)

// Search parameter limits and defaults.
const (
	DefaultLimit         = 20
	MaxLimit             = 500
	DefaultMinMatchCount = 1
	DefaultMinScore      = 50.0
	MaxActiveFilters     = 100
)

// Request is a validated property search.
type Request struct {
	filters       []filter.Active
	mode          filter.Mode
	minMatchCount int
	minScore      float64
	offset        int
	limit         int
	skipCache     bool
}

// New validates and normalizes search parameters.
// Defaults: mode=AND, minMatchCount=1 (OR), minScore=50 (WEIGHTED), limit=20.
func New(
	filters []filter.Active,
	mode filter.Mode,
	minMatchCount int,
	minScore float64,
	offset, limit int,
) (Request, error) {
	if len(filters) == 0 {
		return Request{}, fmt.Errorf("at least one filter is required")
	}
	if len(filters) > MaxActiveFilters {
		return Request{}, fmt.Errorf("too many filters (max %d)", MaxActiveFilters)
	}
	for i, f := range filters {
		if f.FilterID == "" {
			return Request{}, fmt.Errorf("filter #%d: filterId is required", i)
		}
		if f.Weight < 0 {
			return Request{}, fmt.Errorf("filter %q: weight must not be negative", f.FilterID)
		}
	}
	if mode == "" {
		mode = filter.And
	}
	if !mode.IsValid() {
		return Request{}, fmt.Errorf("invalid filter mode: %q", mode)
	}
	if minMatchCount <= 0 {
		minMatchCount = DefaultMinMatchCount
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if minScore > filter.MaxScore {
		return Request{}, fmt.Errorf("minScore must not exceed %v", filter.MaxScore)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		filters:       filters,
		mode:          mode,
		minMatchCount: minMatchCount,
		minScore:      minScore,
		offset:        offset,
		limit:         limit,
	}, nil
}

// WithoutCache returns a copy of the request that bypasses the result cache.
func (r Request) WithoutCache() Request {
	r.skipCache = true
	return r
}

// UseCache reports whether cached filter results may be reused.
func (r *Request) UseCache() bool { return !r.skipCache }

// Filters returns the active filter set.
func (r *Request) Filters() []filter.Active { return r.filters }

// Mode returns the combination mode.
func (r *Request) Mode() filter.Mode { return r.mode }

// MinMatchCount returns the OR-mode match threshold.
func (r *Request) MinMatchCount() int { return r.minMatchCount }

// MinScore returns the WEIGHTED-mode passing score.
func (r *Request) MinScore() float64 { return r.minScore }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }

// Limit returns the pagination page size.
func (r *Request) Limit() int { return r.limit }

// FilterIDs returns the ids of the active filters, in request order.
func (r *Request) FilterIDs() []string {
	ids := make([]string, len(r.filters))
	for i, f := range r.filters {
		ids[i] = f.FilterID
	}
	return ids
}
