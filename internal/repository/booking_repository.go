// This file provides persistence for bookings and their seats. A booking is
// created PENDING with a short expiry (the server-side seat hold), becomes
// CONFIRMED when its payment settles, and is lazily marked EXPIRED when the
// hold runs out. Seat labels of PENDING and CONFIRMED bookings are what
// makes seats unavailable in the seat map snapshot.
package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// BookingRecord mirrors a row of the bookings table.
type BookingRecord struct {
	ID         uint64       // primary key
	OrderRef   string       // opaque reference handed to the checkout flow
	UserID     uint64       // owner of the booking
	ShowID     uint64       // show being booked
	Status     string       // PENDING, CONFIRMED, CANCELLED or EXPIRED
	Tier       string       // seat tier of the whole booking (CLASSIC or PREMIUM)
	TotalCents uint32       // charged total including fee and tax
	ExpiresAt  sql.NullTime // hold expiry while PENDING
	CreatedAt  time.Time    // creation timestamp
}

// BookingSeatRecord is one seat line of a booking.
type BookingSeatRecord struct {
	BookingID  uint64 // owning booking
	ShowID     uint64 // denormalized show id for availability queries
	SeatLabel  string // grid label such as "C7"
	PriceCents uint32 // unit price at booking time
}

// TicketDetail is a booking joined with its show, movie and theater for the
// my-tickets listing.
type TicketDetail struct {
	BookingID   uint64   `json:"booking_id"`
	OrderRef    string   `json:"order_ref"`
	Status      string   `json:"status"`
	MovieTitle  string   `json:"movie_title"`
	TheaterName string   `json:"theater_name"`
	City        string   `json:"city"`
	Screen      uint32   `json:"screen"`
	StartsAt    string   `json:"starts_at"`
	Tier        string   `json:"tier"`
	SeatLabels  []string `json:"seats"`
	TotalCents  uint32   `json:"total_cents"`
	CreatedAt   string   `json:"created_at"`
}

// BookingStats summarizes bookings for the admin dashboard.
type BookingStats struct {
	TotalBookings     uint64 `json:"total_bookings"`
	ConfirmedBookings uint64 `json:"confirmed_bookings"`
	CancelledBookings uint64 `json:"cancelled_bookings"`
	GrossRevenueCents uint64 `json:"gross_revenue_cents"`
}

// ErrBookingNotFound is returned when a booking cannot be found.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides data access to the bookings and booking_seats
// tables.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need transactions
// spanning bookings and payments.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// ExpirePendingTx marks all overdue PENDING bookings of a show as EXPIRED,
// releasing their seats.  Expiry is evaluated lazily on every availability
// check, so stale holds never block a new order.
func (r *BookingRepo) ExpirePendingTx(ctx context.Context, tx *sql.Tx, showID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'EXPIRED'
		 WHERE show_id = ? AND status = 'PENDING' AND expires_at <= UTC_TIMESTAMP()`,
		showID)
	return err
}

// TakenLabelsTx returns which of the given labels are held by a live
// booking of the show, locking the matching rows for the duration of the
// transaction.  excludeBooking skips one booking's own seats (used when
// re-validating an order at payment time).
func (r *BookingRepo) TakenLabelsTx(ctx context.Context, tx *sql.Tx, showID uint64, labels []string, excludeBooking uint64) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(labels))
	placeholders = placeholders[:len(placeholders)-1]
	q := `SELECT bs.seat_label
	      FROM booking_seats bs
	      JOIN bookings b ON b.id = bs.booking_id
	      WHERE bs.show_id = ?
	        AND bs.seat_label IN (` + placeholders + `)
	        AND b.id <> ?
	        AND (b.status = 'CONFIRMED'
	             OR (b.status = 'PENDING' AND b.expires_at > UTC_TIMESTAMP()))
	      FOR UPDATE`
	args := make([]any, 0, len(labels)+2)
	args = append(args, showID)
	for _, l := range labels {
		args = append(args, l)
	}
	args = append(args, excludeBooking)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		taken = append(taken, label)
	}
	return taken, rows.Err()
}

// CreateTx inserts a PENDING booking and its seat rows.  The record's ID is
// populated on success.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *BookingRecord, seats []BookingSeatRecord) error {
	const q = `INSERT INTO bookings (order_ref, user_id, show_id, status, tier, total_cents, expires_at)
	           VALUES (?, ?, ?, 'PENDING', ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rec.OrderRef, rec.UserID, rec.ShowID, rec.Tier, rec.TotalCents, rec.ExpiresAt.Time)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	rec.Status = "PENDING"

	if len(seats) == 0 {
		return nil
	}
	ins := "INSERT INTO booking_seats (booking_id, show_id, seat_label, price_cents) VALUES "
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			ins += ","
		}
		ins += "(?, ?, ?, ?)"
		args = append(args, rec.ID, s.ShowID, s.SeatLabel, s.PriceCents)
	}
	_, err = tx.ExecContext(ctx, ins, args...)
	return err
}

// GetByOrderRefTx loads a booking by its order reference, locking the row.
// Returns ErrBookingNotFound when the reference is unknown.
func (r *BookingRepo) GetByOrderRefTx(ctx context.Context, tx *sql.Tx, orderRef string) (*BookingRecord, error) {
	const q = `SELECT id, order_ref, user_id, show_id, status, tier, total_cents, expires_at, created_at
	           FROM bookings WHERE order_ref = ? FOR UPDATE`
	var b BookingRecord
	err := tx.QueryRowContext(ctx, q, orderRef).Scan(&b.ID, &b.OrderRef, &b.UserID,
		&b.ShowID, &b.Status, &b.Tier, &b.TotalCents, &b.ExpiresAt, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SeatLabelsTx returns the seat labels of one booking.
func (r *BookingRepo) SeatLabelsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY seat_label", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// SetStatusTx updates a booking's status.  Confirming clears the hold
// expiry.
func (r *BookingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string) error {
	var err error
	if status == "CONFIRMED" {
		_, err = tx.ExecContext(ctx,
			"UPDATE bookings SET status = ?, expires_at = NULL WHERE id = ?", status, bookingID)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE bookings SET status = ? WHERE id = ?", status, bookingID)
	}
	return err
}

// ListByUser returns the user's bookings newest first, with show, movie and
// theater details and the seat labels of each booking.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*TicketDetail, error) {
	const q = `SELECT b.id, b.order_ref, b.status, m.title, t.name, t.city, s.screen,
	                  s.starts_at, b.tier, b.total_cents, b.created_at
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           JOIN movies m ON m.id = s.movie_id
	           JOIN theaters t ON t.id = s.theater_id
	           WHERE b.user_id = ? AND b.status <> 'EXPIRED'
	           ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []*TicketDetail
		ids []uint64
	)
	byID := make(map[uint64]*TicketDetail)
	for rows.Next() {
		d := new(TicketDetail)
		var createdAt time.Time
		if err := rows.Scan(&d.BookingID, &d.OrderRef, &d.Status, &d.MovieTitle,
			&d.TheaterName, &d.City, &d.Screen, &d.StartsAt, &d.Tier,
			&d.TotalCents, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		d.SeatLabels = []string{}
		out = append(out, d)
		ids = append(ids, d.BookingID)
		byID[d.BookingID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*TicketDetail{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	seatRows, err := r.db.QueryContext(ctx,
		"SELECT booking_id, seat_label FROM booking_seats WHERE booking_id IN ("+placeholders+") ORDER BY seat_label",
		args...)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()
	for seatRows.Next() {
		var (
			bid   uint64
			label string
		)
		if err := seatRows.Scan(&bid, &label); err != nil {
			return nil, err
		}
		if d, ok := byID[bid]; ok {
			d.SeatLabels = append(d.SeatLabels, label)
		}
	}
	if err := seatRows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInfoForUserTx loads a booking's show, start time and owner inside a
// transaction, for cancellation checks.  Returns sql.ErrNoRows when the
// booking does not exist and ErrForbidden when it belongs to someone else.
func (r *BookingRepo) GetInfoForUserTx(ctx context.Context, tx *sql.Tx, bookingID, userID uint64) (showID uint64, startsAt time.Time, status string, err error) {
	var owner uint64
	err = tx.QueryRowContext(ctx,
		`SELECT b.user_id, b.show_id, s.starts_at, b.status
		 FROM bookings b JOIN shows s ON s.id = b.show_id
		 WHERE b.id = ? FOR UPDATE`,
		bookingID).Scan(&owner, &showID, &startsAt, &status)
	if err != nil {
		return 0, time.Time{}, "", err
	}
	if owner != userID {
		return 0, time.Time{}, "", ErrForbidden
	}
	return showID, startsAt, status, nil
}

// Stats aggregates booking counts and confirmed revenue.
func (r *BookingRepo) Stats(ctx context.Context) (BookingStats, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(status = 'CONFIRMED'), 0),
	                  COALESCE(SUM(status = 'CANCELLED'), 0),
	                  COALESCE(SUM(CASE WHEN status = 'CONFIRMED' THEN total_cents ELSE 0 END), 0)
	           FROM bookings`
	var st BookingStats
	err := r.db.QueryRowContext(ctx, q).Scan(&st.TotalBookings, &st.ConfirmedBookings,
		&st.CancelledBookings, &st.GrossRevenueCents)
	return st, err
}

// NewOrderRef returns a random 32-character hex order reference.
func NewOrderRef() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
