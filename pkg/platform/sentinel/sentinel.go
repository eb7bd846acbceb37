package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these
// (optionally wrapped) so services can translate them into coded domain
// errors without leaking storage details.
//
// These represent factual states about stored entities, not validation
// failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint or concurrent-write conflict
// - ErrInvalidState: entity in wrong lifecycle state for the operation
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
