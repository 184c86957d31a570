package service

import (
	"fmt"
)

// ValidationError reports malformed or out-of-range input. Recoverable;
// the ledger is never mutated before validation passes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientFundsError reports a treasury withdrawal exceeding the
// available balance. No mutation is performed.
type InsufficientFundsError struct {
	Requested int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient treasury funds: requested %d melange, have %d", e.Requested, e.Available)
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConcurrencyError reports exhausted session-acquisition retries.
// The whole command may be retried by the caller.
type ConcurrencyError struct {
	Attempts int
	Err      error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("failed to acquire database session after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}
