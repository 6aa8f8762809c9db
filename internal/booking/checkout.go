package booking

import (
	"context"
	"errors"
)

// Checkout is the full state of one in-progress ticket purchase: the seat
// map snapshot fetched when the checkout was opened, the chosen seat labels
// and the current stage.  Checkout is an immutable value; every operation
// returns a new Checkout plus a result and leaves the receiver untouched.
// On any error the returned Checkout equals the receiver, so a failed
// transition never loses state.
type Checkout struct {
	ShowID      uint64   `json:"show_id"`
	SeatMap     SeatMap  `json:"seat_map"`
	ChosenSeats []string `json:"chosen_seats"` // labels in selection order; order matters for display only
	Stage       Stage    `json:"stage"`
	OrderRef    string   `json:"order_ref,omitempty"` // set once an order was created
}

// Open fetches the seat map snapshot for a show and returns a fresh
// checkout in the seat-selection stage.  Any provider failure is returned
// as-is; there is no checkout to work with in that case.
func Open(ctx context.Context, provider SeatMapProvider, showID uint64) (Checkout, error) {
	m, err := provider.FetchSeatMap(ctx, showID)
	if err != nil {
		return Checkout{}, err
	}
	return Checkout{
		ShowID:  showID,
		SeatMap: m,
		Stage:   StageSelectingSeats,
	}, nil
}

// Tier returns the tier shared by the chosen seats, or "" when the
// selection is empty.  The tier is always derived, never stored.
func (co Checkout) Tier() Tier {
	if len(co.ChosenSeats) == 0 {
		return ""
	}
	s, ok := co.SeatMap.Seat(co.ChosenSeats[0])
	if !ok {
		return ""
	}
	return s.Tier
}

// seats resolves the chosen labels against the seat map snapshot.
func (co Checkout) seats() []Seat {
	out := make([]Seat, 0, len(co.ChosenSeats))
	for _, label := range co.ChosenSeats {
		if s, ok := co.SeatMap.Seat(label); ok {
			out = append(out, s)
		}
	}
	return out
}

// chosen reports whether the label is already in the selection.
func (co Checkout) chosen(label string) bool {
	for _, l := range co.ChosenSeats {
		if l == label {
			return true
		}
	}
	return false
}

// without returns the chosen labels minus the given set.
func (co Checkout) without(labels []string) []string {
	drop := make(map[string]bool, len(labels))
	for _, l := range labels {
		drop[l] = true
	}
	kept := make([]string, 0, len(co.ChosenSeats))
	for _, l := range co.ChosenSeats {
		if !drop[l] {
			kept = append(kept, l)
		}
	}
	return kept
}

// ToggleSeat adds the labeled seat to the selection, or removes it when it
// is already chosen.  Toggling the same seat twice returns to the prior
// selection.  Adding fails with ErrSeatUnknown for labels outside the grid,
// ErrSeatUnavailable for taken seats, ErrSelectionLimitReached at the cap
// and ErrMixedTierNotAllowed when the seat's tier differs from the tier of
// the seats already chosen.
func (co Checkout) ToggleSeat(label string, cfg PricingConfig) (Checkout, error) {
	if co.Stage != StageSelectingSeats {
		return co, ErrInvalidTransition
	}
	if co.chosen(label) {
		co.ChosenSeats = co.without([]string{label})
		return co, nil
	}
	seat, ok := co.SeatMap.Seat(label)
	if !ok {
		return co, ErrSeatUnknown
	}
	if !seat.IsAvailable {
		return co, ErrSeatUnavailable
	}
	if cfg.MaxSeats > 0 && len(co.ChosenSeats) >= cfg.MaxSeats {
		return co, ErrSelectionLimitReached
	}
	if t := co.Tier(); t != "" && t != seat.Tier {
		return co, ErrMixedTierNotAllowed
	}
	chosen := make([]string, len(co.ChosenSeats), len(co.ChosenSeats)+1)
	copy(chosen, co.ChosenSeats)
	co.ChosenSeats = append(chosen, label)
	return co, nil
}

// ClearSelection empties the chosen seats.  It always succeeds.
func (co Checkout) ClearSelection() Checkout {
	co.ChosenSeats = nil
	return co
}

// Breakdown recomputes the price breakdown from the current selection.  It
// fails with ErrInvalidSelection when no seats are chosen.
func (co Checkout) Breakdown(cfg PricingConfig) (Breakdown, error) {
	return PriceSeats(co.seats(), cfg)
}

// FinalizeSeats closes the seat-selection stage: it prices the selection
// and advances to the summary review stage.  An empty selection fails with
// ErrInvalidSelection and the stage does not move.
func (co Checkout) FinalizeSeats(cfg PricingConfig) (Checkout, Breakdown, error) {
	if co.Stage != StageSelectingSeats {
		return co, Breakdown{}, ErrInvalidTransition
	}
	if len(co.ChosenSeats) == 0 {
		return co, Breakdown{}, ErrInvalidSelection
	}
	bd, err := PriceSeats(co.seats(), cfg)
	if err != nil {
		return co, Breakdown{}, err
	}
	co.Stage = StageReviewingSummary
	return co, bd, nil
}

// ConfirmSummary moves from summary review to awaiting payment.  It first
// consults the identity collaborator: without an authenticated user it
// fails with ErrAuthRequired and keeps the full state so the same
// transition can be retried after login.  It then creates the order, which
// performs the authoritative seat check; seats taken in the meantime are
// deselected, the snapshot is corrected, and the checkout stays in the
// summary stage with a SeatsTakenError.
func (co Checkout) ConfirmSummary(ctx context.Context, ident IdentityProvider, orders OrderProcessor, cfg PricingConfig) (Checkout, error) {
	if co.Stage != StageReviewingSummary {
		return co, ErrInvalidTransition
	}
	user, err := ident.CurrentUser(ctx)
	if err != nil {
		return co, err
	}
	if user == nil {
		return co, ErrAuthRequired
	}
	bd, err := PriceSeats(co.seats(), cfg)
	if err != nil {
		return co, err
	}
	ref, err := orders.CreateOrder(ctx, *user, co.ShowID, co.ChosenSeats, co.Tier(), bd.TotalCents)
	if err != nil {
		if taken, ok := asSeatsTaken(err); ok {
			co.ChosenSeats = co.without(taken.Labels)
			co.SeatMap = co.SeatMap.markTaken(taken.Labels)
		}
		return co, err
	}
	co.OrderRef = ref
	co.Stage = StageAwaitingPayment
	return co, nil
}

// RecordPaymentSuccess confirms the payment for the created order.  On
// success the purchase is complete and the selection resets to empty.  When
// the order's seats were resold before the payment settled, the checkout
// returns to summary review with the stale seats deselected.  Any other
// processor rejection is passed through as a *PaymentError without moving
// the stage.
func (co Checkout) RecordPaymentSuccess(ctx context.Context, orders OrderProcessor, proof PaymentProof) (Checkout, Receipt, error) {
	if co.Stage != StageAwaitingPayment {
		return co, Receipt{}, ErrInvalidTransition
	}
	rcpt, err := orders.ConfirmPayment(ctx, co.OrderRef, proof)
	if err != nil {
		if taken, ok := asSeatsTaken(err); ok {
			co.ChosenSeats = co.without(taken.Labels)
			co.SeatMap = co.SeatMap.markTaken(taken.Labels)
			co.OrderRef = ""
			co.Stage = StageReviewingSummary
		}
		return co, Receipt{}, err
	}
	done := Checkout{ShowID: co.ShowID, SeatMap: co.SeatMap, Stage: StageCompleted}
	return done, rcpt, nil
}

// RestartSelection goes back from summary review to seat selection and
// clears the chosen seats.
func (co Checkout) RestartSelection() (Checkout, error) {
	if !CanTransition(co.Stage, StageSelectingSeats) {
		return co, ErrInvalidTransition
	}
	co.ChosenSeats = nil
	co.Stage = StageSelectingSeats
	return co, nil
}

// Abort cancels the checkout from any non-terminal stage and resets the
// selection.  Aborting a terminal checkout fails with ErrInvalidTransition.
func (co Checkout) Abort() (Checkout, error) {
	if !CanTransition(co.Stage, StageCancelled) {
		return co, ErrInvalidTransition
	}
	co.ChosenSeats = nil
	co.OrderRef = ""
	co.Stage = StageCancelled
	return co, nil
}

// asSeatsTaken extracts a *SeatsTakenError from an error chain.
func asSeatsTaken(err error) (*SeatsTakenError, bool) {
	var taken *SeatsTakenError
	if errors.As(err, &taken) {
		return taken, true
	}
	return nil, false
}
