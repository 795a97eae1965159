// Package filter defines the classifier contract types: the match result,
// runtime parameters, the per-search active filter selection, and the
// combination mode semantics.
package filter

import "strings"

// Score bounds for a match.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Match is the outcome of evaluating one filter against one property.
// An unmatched result always carries score 0 and a non-empty reason.
type Match struct {
	FilterID string         `json:"filterId"`
	Matched  bool           `json:"matched"`
	Score    float64        `json:"score"`
	Reason   string         `json:"reason"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewMatch builds a matched result. The score is clamped to [0,100] and the
// reasons are joined into a single justification string.
func NewMatch(filterID string, score float64, reasons ...string) Match {
	if score < MinScore {
		score = MinScore
	}
	if score > MaxScore {
		score = MaxScore
	}
	return Match{
		FilterID: filterID,
		Matched:  true,
		Score:    score,
		Reason:   strings.Join(reasons, "; "),
	}
}

// NoMatch builds an unmatched result with score 0. Used both for "evaluated
// and did not match" and for "insufficient data"; the reason states which.
func NoMatch(filterID, reason string) Match {
	return Match{FilterID: filterID, Matched: false, Score: MinScore, Reason: reason}
}

// WithData attaches a structured payload for UI and debugging.
func (m Match) WithData(data map[string]any) Match {
	m.Data = data
	return m
}
