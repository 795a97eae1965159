package registry

import (
	"fmt"

	"github.com/parcelworks/dealfilter/internal/domain/filter"
)

// ValidateActive checks an active-filter set against the registry: every
// filterId must be registered and every supplied parameter must match the
// declared type and bounds. Returns one human-readable error string per
// violation; an empty slice means the set is valid.
//
// Validation is advisory — the engine applies documented defaults for any
// parameter that is absent or unusable at runtime, so callers may choose to
// run an invalid set anyway.
func ValidateActive(active []filter.Active) []string {
	var errs []string
	for _, a := range active {
		cfg, ok := ByID(a.FilterID)
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown filter id %q", a.FilterID))
			continue
		}
		if a.Weight < 0 {
			errs = append(errs, fmt.Sprintf("filter %q: weight must not be negative", a.FilterID))
		}
		errs = append(errs, validateParams(cfg, a.Params)...)
	}
	return errs
}

func validateParams(cfg Config, params filter.Params) []string {
	var errs []string
	declared := make(map[string]Param, len(cfg.Params))
	for _, p := range cfg.Params {
		declared[p.Key] = p
	}

	for key, val := range params {
		p, ok := declared[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("filter %q: unknown parameter %q", cfg.ID, key))
			continue
		}
		if msg := checkParamValue(cfg.ID, p, val); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

func checkParamValue(filterID string, p Param, val any) string {
	switch p.Type {
	case Number:
		n, ok := asFloat(val)
		if !ok {
			return fmt.Sprintf("filter %q: parameter %q must be a number", filterID, p.Key)
		}
		if p.Min != nil && n < *p.Min {
			return fmt.Sprintf("filter %q: parameter %q must be at least %v", filterID, p.Key, *p.Min)
		}
		if p.Max != nil && n > *p.Max {
			return fmt.Sprintf("filter %q: parameter %q must be at most %v", filterID, p.Key, *p.Max)
		}
	case Boolean:
		if _, ok := val.(bool); !ok {
			return fmt.Sprintf("filter %q: parameter %q must be a boolean", filterID, p.Key)
		}
	case Select:
		s, ok := val.(string)
		if !ok {
			return fmt.Sprintf("filter %q: parameter %q must be a string", filterID, p.Key)
		}
		for _, opt := range p.Options {
			if s == opt {
				return ""
			}
		}
		return fmt.Sprintf("filter %q: parameter %q must be one of %v", filterID, p.Key, p.Options)
	}
	return ""
}

func asFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
