package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed or out-of-range search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidFilterConfig signals an active-filter set that fails registry validation.
	ErrInvalidFilterConfig = errors.New("invalid filter config")
	// ErrSourceUnavailable signals a property source that cannot be reached.
	ErrSourceUnavailable = errors.New("property source unavailable")
)
