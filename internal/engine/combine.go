// Package engine reduces per-filter matches into per-property decisions and
// runs whole-collection searches with ranking and pagination.
package engine

import (
	"github.com/parcelworks/dealfilter/internal/domain/filter"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Options holds the combination thresholds. Zero values fall back to the
// documented defaults (minMatchCount=1, minScore=50).
type Options struct {
	Mode          filter.Mode
	MinMatchCount int
	MinScore      float64
	UseCache      bool
}

// Applier applies one active filter to one property. Satisfied by
// *dispatch.Dispatcher.
type Applier interface {
	Apply(p *property.Record, active filter.Active, useCache bool) filter.Match
}

// Combine evaluates every active filter against one property and reduces the
// matches under the requested mode:
//
//   - AND: passes iff every filter matched; score is the mean of all scores.
//   - OR: passes iff at least minMatchCount filters matched; score is the
//     mean of the matched filters' scores only.
//   - WEIGHTED: score is sum(score*weight over matched) divided by
//     sum(weight over ALL filters) — unmatched filters dilute the score by
//     design; passes iff the score clears minScore.
func Combine(applier Applier, p *property.Record, active []filter.Active, opts Options) filter.Combined {
	matches := make([]filter.Match, len(active))
	var matchedIDs []string
	for i, a := range active {
		matches[i] = applier.Apply(p, a, opts.UseCache)
		if matches[i].Matched {
			matchedIDs = append(matchedIDs, a.FilterID)
		}
	}

	mode := opts.Mode
	if mode == "" {
		mode = filter.And
	}
	minMatchCount := opts.MinMatchCount
	if minMatchCount <= 0 {
		minMatchCount = 1
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = 50
	}

	var score float64
	var passes bool

	switch mode {
	case filter.Or:
		passes = len(matchedIDs) >= minMatchCount
		score = meanMatchedScore(matches)
	case filter.Weighted:
		score = weightedScore(active, matches)
		passes = score >= minScore
	default: // AND
		passes = len(matchedIDs) == len(active) && len(active) > 0
		score = meanScore(matches)
	}

	return filter.Combined{
		Property:      p,
		Matches:       matches,
		MatchedIDs:    matchedIDs,
		CombinedScore: score,
		Passes:        passes,
	}
}

// meanScore averages every score, matched or not.
func meanScore(matches []filter.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}

// meanMatchedScore averages only the matched filters' scores.
func meanMatchedScore(matches []filter.Match) float64 {
	var sum float64
	var n int
	for _, m := range matches {
		if m.Matched {
			sum += m.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// weightedScore computes sum(score*weight for matched) / sum(weight for all).
// Unmatched filters contribute weight to the denominator only.
func weightedScore(active []filter.Active, matches []filter.Match) float64 {
	var num, den float64
	for i, a := range active {
		w := a.EffectiveWeight()
		den += w
		if matches[i].Matched {
			num += matches[i].Score * w
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
