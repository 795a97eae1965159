// Package filters implements the heuristic property classifiers. Every
// classifier is a pure function of the property record and its parameters:
// no I/O, no shared state, deterministic for identical inputs. Missing data
// resolves to an unmatched result naming the missing field, never an error.
package filters

import (
	"strings"
	"time"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Func is the classifier contract.
type Func func(p *property.Record, params filter.Params) filter.Match

// timeNow is swapped in tests to pin age calculations.
var timeNow = time.Now

// dateLayouts are tried in order when parsing record dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// yearsSince parses a record date string and returns the elapsed years.
// Malformed or empty dates report ok=false rather than failing the filter.
func yearsSince(date string) (float64, bool) {
	if date == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			years := timeNow().Sub(t).Hours() / (24 * 365.25)
			if years < 0 {
				years = 0
			}
			return years, true
		}
	}
	return 0, false
}

// equityPercent resolves the owner's equity percentage in fixed priority
// order: the explicit field first, then the equity amount against value, then
// the mortgage balance against value. Returns false when none can be derived.
func equityPercent(p *property.Record) (float64, bool) {
	if p.EquityPercent != nil {
		return *p.EquityPercent, true
	}
	if p.EquityAmount != nil && p.EstimatedValue != nil && *p.EstimatedValue > 0 {
		return *p.EquityAmount / *p.EstimatedValue * 100, true
	}
	if p.MortgageBalance != nil && p.EstimatedValue != nil && *p.EstimatedValue > 0 {
		return (*p.EstimatedValue - *p.MortgageBalance) / *p.EstimatedValue * 100, true
	}
	return 0, false
}

var addressReplacer = strings.NewReplacer(".", "", ",", "", "#", "")

// normalizeAddress lowercases, strips punctuation, and collapses whitespace
// so "123 Main St." and "123 main st" compare equal.
func normalizeAddress(addr string) string {
	addr = strings.ToLower(addressReplacer.Replace(addr))
	return strings.Join(strings.Fields(addr), " ")
}

// sameAddress compares two address strings after normalization.
func sameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return normalizeAddress(a) == normalizeAddress(b)
}

// sameState compares two state codes case-insensitively.
func sameState(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
