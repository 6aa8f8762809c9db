// This file implements the order side of the checkout flow: creating a
// PENDING booking with a seat hold, and confirming it once payment proof
// arrives. It is the authoritative seat-availability check; the seat map
// snapshot a client holds is only a hint.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kavehz/movie-booking/internal/booking"
)

// OrderProcessor implements booking.OrderProcessor on top of the booking,
// payment and show repositories.  All operations run in a single
// transaction so a failed step never leaves a half-created order behind.
type OrderProcessor struct {
	db       *sql.DB
	bookings *BookingRepo
	payments *PaymentRepo
	shows    *ShowRepo
	holdTTL  time.Duration // how long a PENDING booking keeps its seats
}

// NewOrderProcessor constructs an OrderProcessor.  All repositories must be
// non-nil.  A non-positive holdTTL falls back to five minutes.
func NewOrderProcessor(db *sql.DB, bookings *BookingRepo, payments *PaymentRepo, shows *ShowRepo, holdTTL time.Duration) *OrderProcessor {
	if db == nil || bookings == nil || payments == nil || shows == nil {
		panic("nil dependency passed to NewOrderProcessor")
	}
	if holdTTL <= 0 {
		holdTTL = 5 * time.Minute
	}
	return &OrderProcessor{db: db, bookings: bookings, payments: payments, shows: shows, holdTTL: holdTTL}
}

// CreateOrder creates a PENDING booking for the given seats.  Seats already
// held or sold are reported via *booking.SeatsTakenError and nothing is
// written.
func (p *OrderProcessor) CreateOrder(ctx context.Context, user booking.UserIdentity, showID uint64, seatLabels []string, tier booking.Tier, totalCents uint32) (string, error) {
	if len(seatLabels) == 0 {
		return "", booking.ErrInvalidSelection
	}
	show, err := p.shows.GetByID(ctx, showID)
	if err != nil {
		return "", err
	}
	unitPrice := show.ClassicPriceCents
	if tier == booking.TierPremium {
		unitPrice = show.PremiumPriceCents
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Release overdue holds first so their seats count as free.
	if err := p.bookings.ExpirePendingTx(ctx, tx, showID); err != nil {
		return "", err
	}
	taken, err := p.bookings.TakenLabelsTx(ctx, tx, showID, seatLabels, 0)
	if err != nil {
		return "", err
	}
	if len(taken) > 0 {
		return "", &booking.SeatsTakenError{Labels: taken}
	}

	ref, err := NewOrderRef()
	if err != nil {
		return "", err
	}
	rec := &BookingRecord{
		OrderRef:   ref,
		UserID:     user.ID,
		ShowID:     showID,
		Tier:       string(tier),
		TotalCents: totalCents,
		ExpiresAt:  sql.NullTime{Time: time.Now().UTC().Add(p.holdTTL), Valid: true},
	}
	seats := make([]BookingSeatRecord, 0, len(seatLabels))
	for _, label := range seatLabels {
		seats = append(seats, BookingSeatRecord{
			ShowID:     showID,
			SeatLabel:  label,
			PriceCents: unitPrice,
		})
	}
	if err := p.bookings.CreateTx(ctx, tx, rec, seats); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return ref, nil
}

// ConfirmPayment settles a pending order.  An unknown or already-cancelled
// order yields a *booking.PaymentError; an order whose hold expired and
// whose seats were resold yields a *booking.SeatsTakenError.  Confirming an
// already-confirmed order is idempotent.
func (p *OrderProcessor) ConfirmPayment(ctx context.Context, orderRef string, proof booking.PaymentProof) (booking.Receipt, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return booking.Receipt{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := p.bookings.GetByOrderRefTx(ctx, tx, orderRef)
	if err != nil {
		if err == ErrBookingNotFound {
			return booking.Receipt{}, &booking.PaymentError{Code: "ORDER_NOT_FOUND", Message: "order does not exist"}
		}
		return booking.Receipt{}, err
	}

	switch rec.Status {
	case "CONFIRMED":
		// Duplicate confirmation of the same order is not an error.
		if err := tx.Commit(); err != nil {
			return booking.Receipt{}, err
		}
		committed = true
		return booking.Receipt{BookingID: rec.ID, ConfirmationRef: rec.OrderRef, AmountCents: rec.TotalCents}, nil
	case "CANCELLED", "EXPIRED":
		return booking.Receipt{}, &booking.PaymentError{Code: "ORDER_CLOSED", Message: "order is no longer payable"}
	}

	// The hold may have lapsed while the user was paying.  If the seats
	// are still free the payment wins; if another buyer got them the
	// order is dead.
	if rec.ExpiresAt.Valid && !rec.ExpiresAt.Time.After(time.Now().UTC()) {
		labels, err := p.bookings.SeatLabelsTx(ctx, tx, rec.ID)
		if err != nil {
			return booking.Receipt{}, err
		}
		resold, err := p.bookings.TakenLabelsTx(ctx, tx, rec.ShowID, labels, rec.ID)
		if err != nil {
			return booking.Receipt{}, err
		}
		if len(resold) > 0 {
			if err := p.bookings.SetStatusTx(ctx, tx, rec.ID, "EXPIRED"); err != nil {
				return booking.Receipt{}, err
			}
			if err := tx.Commit(); err != nil {
				return booking.Receipt{}, err
			}
			committed = true
			return booking.Receipt{}, &booking.SeatsTakenError{Labels: resold}
		}
	}

	if err := p.bookings.SetStatusTx(ctx, tx, rec.ID, "CONFIRMED"); err != nil {
		return booking.Receipt{}, err
	}
	pay := &PaymentRecord{
		BookingID:   rec.ID,
		Method:      proof.Method,
		Status:      "SUCCESS",
		AmountCents: rec.TotalCents,
		ProviderRef: proof.ProviderRef,
	}
	if err := p.payments.CreateTx(ctx, tx, pay); err != nil {
		return booking.Receipt{}, err
	}
	if err := tx.Commit(); err != nil {
		return booking.Receipt{}, err
	}
	committed = true
	return booking.Receipt{BookingID: rec.ID, ConfirmationRef: rec.OrderRef, AmountCents: rec.TotalCents}, nil
}
