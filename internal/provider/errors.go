package provider

import "errors"

// Failure taxonomy surfaced to the orchestrator's caller. Providers never
// retry internally; whichever strategy was randomly selected reports its
// first failure, and a caller-level retry re-randomizes the choice.
var (
	// ErrUnavailable covers network/HTTP failures and timeouts.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrRateLimited means the provider signaled throttling.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrNotFound means the provider has no data for the address.
	ErrNotFound = errors.New("provider has no data for address")

	// ErrNoTransactions means the address is confirmed to have zero history.
	ErrNoTransactions = errors.New("address has no transaction history")
	// ErrPaginationLimitExceeded means the page ceiling was reached before
	// the walk terminated; the program has more history than the engine is
	// willing to traverse.
	ErrPaginationLimitExceeded = errors.New("pagination page limit exceeded")
	// ErrTimestampUnavailable means the signature resolved but the node
	// could not supply a block time for it.
	ErrTimestampUnavailable = errors.New("block time unavailable")
)

// classifiedError ties a taxonomy sentinel to the underlying cause so that
// errors.Is matches the sentinel while the cause stays inspectable.
type classifiedError struct {
	kind  error
	cause error
}

func (e *classifiedError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *classifiedError) Is(target error) bool {
	return target == e.kind
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}
