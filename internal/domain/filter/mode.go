package filter

// Mode is the combination semantics used to reduce many matches into one
// pass/fail decision and combined score.
type Mode string

// Combination mode constants.
const (
	// And passes only when every active filter matched.
	And Mode = "AND"
	// Or passes when at least minMatchCount filters matched.
	Or Mode = "OR"
	// Weighted passes when the weight-normalized score clears minScore.
	Weighted Mode = "WEIGHTED"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == And || m == Or || m == Weighted
}
