// This file records payments against bookings. The gateway interaction
// itself happens client-side; the server stores the proof and the outcome.
package repository

import (
	"context"
	"database/sql"
	"time"
)

// PaymentRecord mirrors a row of the payments table.
type PaymentRecord struct {
	ID          uint64    // primary key
	BookingID   uint64    // booking this payment settles
	Method      string    // RAZORPAY, UPI, CARD, NETBANKING or WALLET
	Status      string    // PENDING, SUCCESS, FAILED or REFUNDED
	AmountCents uint32    // amount charged
	ProviderRef string    // gateway transaction reference
	CreatedAt   time.Time // creation timestamp
}

// PaymentRepo provides data access to the payments table.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment row within the caller's transaction.  The
// record's ID is populated on success.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *PaymentRecord) error {
	const q = `INSERT INTO payments (booking_id, method, status, amount_cents, provider_ref)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.BookingID, p.Method, p.Status, p.AmountCents, p.ProviderRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// MarkRefundedByBookingTx flips a booking's successful payment to REFUNDED.
// Used when a future show's booking is cancelled.
func (r *PaymentRepo) MarkRefundedByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE payments SET status = 'REFUNDED' WHERE booking_id = ? AND status = 'SUCCESS'",
		bookingID)
	return err
}
