package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Params carries per-search parameter overrides for one filter. Classifiers
// read through the typed getters, which fall back to the documented default
// when the key is absent or of the wrong type — an invalid override never
// fails an evaluation.
type Params map[string]any

// DefaultParamsHash is the cache-key sentinel for a nil parameter set. It is
// distinct from the hash of an explicitly empty Params{}.
const DefaultParamsHash = "default"

// Float returns the value for key as a float64, or def when absent.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// Int returns the value for key as an int, or def when absent.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Bool returns the value for key as a bool, or def when absent.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// String returns the value for key as a string, or def when absent.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Hash returns a deterministic serialization of the parameter set for cache
// keying. A nil set hashes to the fixed "default" sentinel; an empty non-nil
// set hashes to a distinct value.
func (p Params) Hash() string {
	if p == nil {
		return DefaultParamsHash
	}
	if len(p) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%v", k, p[k])
	}
	return b.String()
}
