package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")
	// ErrInUse is returned when deleting a number or pool that an active campaign or pool still references.
	ErrInUse             = errors.New("resource is in use")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotActive         = errors.New("resource is not active")
	// ErrPurchaseFailed means not a single number could be obtained; the whole operation was rolled back.
	ErrPurchaseFailed   = errors.New("failed to purchase any phone numbers")
	ErrInvalidSwapRules = errors.New("invalid swap rules")
	ErrInvalidNumber    = errors.New("invalid phone number")
	// ErrKeywordPoolExists enforces one live keyword tracking pool per company.
	ErrKeywordPoolExists = errors.New("company already has a keyword tracking pool")
	// ErrNoNumberAvailable is returned when every number of a keyword pool is held by an unexpired session.
	ErrNoNumberAvailable   = errors.New("no number available for a new session")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 100")
	ErrSessionKeyRequired  = errors.New("session key is required")
	ErrIdempotencyInFlight = errors.New("a request with this idempotency key is still in progress")
	ErrIdempotencyMismatch = errors.New("idempotency key was used for a different operation")
)

// InsufficientNumbersError reports that fewer numbers exist than were requested.
type InsufficientNumbersError struct {
	Requested int
	Available int
}

func (e *InsufficientNumbersError) Error() string {
	return fmt.Sprintf("not enough phone numbers available: requested %d, available %d", e.Requested, e.Available)
}

// SwapRulesError describes the first problem found while validating a swap rule document.
type SwapRulesError struct {
	Field  string
	Reason string
}

func (e *SwapRulesError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *SwapRulesError) Unwrap() error { return ErrInvalidSwapRules }
