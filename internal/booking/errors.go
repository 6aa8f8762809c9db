// Package booking implements the checkout flow for a movie-ticket purchase:
// seat selection against a seat map snapshot, the price breakdown computation
// and the staged state machine that carries a selection from seat picking
// through summary review to payment.  The package is pure domain logic; all
// I/O happens through the collaborator interfaces defined in collaborators.go.
package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection is returned when an operation requires at least one
// chosen seat but the selection is empty.
var ErrInvalidSelection = errors.New("selection is empty")

// ErrSelectionTooLarge is returned by the pricing function when the number
// of seats exceeds the configured maximum.  Callers should never reach this
// state because ToggleSeat enforces the cap, but the pricing function guards
// against it independently.
var ErrSelectionTooLarge = errors.New("selection exceeds seat limit")

// ErrSeatUnavailable is returned when the user attempts to choose a seat
// that the seat map snapshot marks as taken.  The selection is not changed.
var ErrSeatUnavailable = errors.New("seat is not available")

// ErrSeatUnknown is returned when a toggled label does not exist in the
// seat map at all (e.g. "Z99" on a 10x12 grid).
var ErrSeatUnknown = errors.New("seat does not exist")

// ErrSelectionLimitReached is returned by ToggleSeat when adding one more
// seat would exceed the per-booking maximum.
var ErrSelectionLimitReached = errors.New("seat limit reached")

// ErrMixedTierNotAllowed is returned when the toggled seat's tier differs
// from the tier of the seats already chosen.  A single booking carries one
// tier only.
var ErrMixedTierNotAllowed = errors.New("cannot mix seat tiers in one booking")

// ErrInvalidTransition is returned when a stage-specific operation is called
// while the checkout is in a different stage.  State is never mutated on
// this error.
var ErrInvalidTransition = errors.New("invalid checkout transition")

// ErrAuthRequired is returned by ConfirmSummary when no authenticated user
// is present.  The checkout stays in the summary stage so the caller can
// obtain credentials and retry the same transition without losing state.
var ErrAuthRequired = errors.New("authentication required")

// ErrSeatsNoLongerAvailable indicates that seats in the selection were taken
// server-side after the seat map snapshot was fetched.  SeatsTakenError
// wraps this sentinel and carries the affected labels.
var ErrSeatsNoLongerAvailable = errors.New("seats no longer available")

// SeatsTakenError reports which seat labels were rejected by the order
// processor because another buyer got them first.  It unwraps to
// ErrSeatsNoLongerAvailable so callers can use errors.Is for the class and
// errors.As for the labels.
type SeatsTakenError struct {
	Labels []string // seat labels that are no longer free
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats no longer available: %v", e.Labels)
}

func (e *SeatsTakenError) Unwrap() error { return ErrSeatsNoLongerAvailable }

// PaymentError is an opaque rejection from the payment collaborator.  The
// code and message come from the external processor and are passed through
// to the user untouched.  The checkout stage is not advanced on this error.
type PaymentError struct {
	Code    string // processor-assigned error code
	Message string // human-readable description from the processor
}

func (e *PaymentError) Error() string {
	if e.Code == "" {
		return "payment failed: " + e.Message
	}
	return fmt.Sprintf("payment failed (%s): %s", e.Code, e.Message)
}
