package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Caches and the directory client
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrNotFound: the record does not exist upstream or in the cache
//   - ErrUnavailable: the upstream directory or cache backend cannot be reached
//
// For validation errors (bad input), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
