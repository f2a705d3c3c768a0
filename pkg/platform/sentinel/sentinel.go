package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and persisters return these
// (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: entity or snapshot does not exist
// - ErrAlreadyUsed: unique key (wallet, wallet+election pair) already taken
// - ErrCorrupt: stored bytes could not be decoded
// - ErrUnavailable: backend temporarily unavailable
// - ErrStale: a write was refused because the store holds newer data
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnavailable = errors.New("unavailable")
	ErrStale       = errors.New("stale")
)
