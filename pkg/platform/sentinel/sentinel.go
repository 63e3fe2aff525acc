package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Lower layers return these as the
// cause of a normalized error so callers can still test the underlying fact
// with errors.Is:
// - ErrUnavailable: the upstream could not deliver anything
// - ErrInvalidState: a component was driven into a state it cannot be in
var (
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
