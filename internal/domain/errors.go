package domain

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks failures that are safe for the caller to retry:
// pool exhaustion, lock wait timeouts, dropped connections.
var ErrUnavailable = errors.New("temporarily unavailable")

// ValidationError reports missing or malformed client input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// CutoffError rejects a delivery date under the cutoff rule. Message already
// carries the configured cutoff formatted HH:MM where relevant.
type CutoffError struct {
	Message string
}

func (e *CutoffError) Error() string { return e.Message }

// NotFoundError names a referenced entity that does not exist or is inactive.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// InsufficientStockError carries everything the buyer needs to adjust the
// line: product name, requested and available quantities, and the unit.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
	Unit        string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %q. Requested %d %s, available %d %s.",
		e.ProductName, e.Requested, e.Unit, e.Available, e.Unit)
}

// TransitionError rejects a status change the fulfillment graph does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ConflictError reports a uniqueness collision, e.g. duplicate email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
