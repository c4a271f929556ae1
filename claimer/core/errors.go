package core

import (
	"errors"
	"fmt"
)

// The settlement error taxonomy. Every error escalated out of a settlement
// is one of these; the processor boundary catches them all and marks the
// claim failed. Only NetworkError is retried inside the ledger adapter.

// StorageError wraps a queue or claim record read-write failure. Fatal for
// the invocation, no claim state is changed.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NetworkError marks a transient ledger or indexer call failure. Retried per
// the configured fixed-delay budget, then escalated.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError marks a transaction the ledger refused, e.g. an invalid
// authority. Never retried.
type RejectedError struct {
	Op  string
	Err error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("ledger rejected %s: %v", e.Op, e.Err)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// MalformedClaimError marks a claim violating a data invariant, e.g. a
// collectible amount that is not an exact multiple of the inscribe amount.
// Escalated immediately.
type MalformedClaimError struct {
	ClaimID string
	Err     error
}

func (e *MalformedClaimError) Error() string {
	return fmt.Sprintf("malformed claim %s: %v", e.ClaimID, e.Err)
}

func (e *MalformedClaimError) Unwrap() error { return e.Err }

// InsufficientInventoryError marks a collectible shortfall: the signer wallet
// does not hold enough verified collectibles to fulfill the claim. Escalated
// immediately, requires operator action.
type InsufficientInventoryError struct {
	Required int
	Found    int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient collectible inventory: required %d, found %d", e.Required, e.Found)
}

func IsRetryableSettlementErr(err error) bool {
	var netErr *NetworkError

	return errors.As(err, &netErr)
}
