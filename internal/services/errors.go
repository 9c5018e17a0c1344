// internal/services/errors.go
package services

import "errors"

// Failure taxonomy for one ingestion cycle. Per-listing and per-source
// failures are isolated and counted; they never abort the cycle.
var (
	// ErrAdapterFailure wraps an adapter-internal error; the source is
	// skipped for the cycle.
	ErrAdapterFailure = errors.New("source adapter failure")

	// ErrNormalizationRejected marks a raw listing missing mandatory fields;
	// the listing is skipped.
	ErrNormalizationRejected = errors.New("listing rejected")

	// ErrLedgerUnavailable marks a storage failure while touching price
	// history; the identity's whole update is abandoned for the cycle so a
	// real price change is never masked as "unchanged".
	ErrLedgerUnavailable = errors.New("price history ledger unavailable")

	// ErrCycleInProgress is returned when a cycle is requested while the
	// previous one is still running.
	ErrCycleInProgress = errors.New("ingestion cycle already in progress")
)
