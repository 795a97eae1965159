package filter

// Active is a user-selected filter for one search request: the filter id,
// optional parameter overrides, and an optional weight consumed only by the
// weighted combination mode. Constructed per request, discarded after use.
type Active struct {
	FilterID string  `json:"filterId"`
	Params   Params  `json:"params,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
}

// EffectiveWeight returns the filter weight, defaulting to 1 when unset or
// non-positive.
func (a Active) EffectiveWeight() float64 {
	if a.Weight <= 0 {
		return 1
	}
	return a.Weight
}
