package search

import "github.com/parcelworks/dealfilter/internal/domain/filter"

// Ranked is one passing property with its 1-based position after the final
// descending sort by combined score.
type Ranked struct {
	Result filter.Combined `json:"result"`
	Rank   int             `json:"rank"`
}

// Response is the orchestrator output: the requested page of ranked results
// plus pagination and timing metadata. Total counts all passing properties,
// not just the returned page. ExecutionTimeMs is wall-clock start-to-finish
// of the whole evaluation.
type Response struct {
	Results         []Ranked `json:"results"`
	Total           int      `json:"total"`
	Offset          int      `json:"offset"`
	Limit           int      `json:"limit"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
	AppliedFilters  []string `json:"appliedFilters"`
}
