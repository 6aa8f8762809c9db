// This file defines the Show model and repository methods. A Show schedules
// a movie on a theater screen at a point in time and carries the two tier
// prices plus the seat grid dimensions from which the seat map is built.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
)

// Show represents one screening.  Prices are integer cents per tier.  The
// seat grid is SeatRows x SeatCols with the last PremiumRows rows priced at
// the premium tier.
// NOTE: Time strings are stored in DB format "2006-01-02 15:04:05" (UTC).
type Show struct {
	ID                uint64 // ID is the primary key of the show
	MovieID           uint64 // MovieID references the movie being screened
	TheaterID         uint64 // TheaterID references the theater
	Screen            uint32 // Screen is the screen number within the theater
	StartsAt          string // StartsAt is the DB timestamp when the show begins ("YYYY-MM-DD HH:MM:SS" UTC)
	EndsAt            string // EndsAt is the DB timestamp when the show ends
	ClassicPriceCents uint32 // ClassicPriceCents is the classic tier seat price
	PremiumPriceCents uint32 // PremiumPriceCents is the premium tier seat price
	SeatRows          uint32 // SeatRows is the number of rows in the grid
	SeatCols          uint32 // SeatCols is the number of seats per row
	PremiumRows       uint32 // PremiumRows is how many back rows are premium
	Status            string // Status is the state of the show (SCHEDULED, CANCELLED, FINISHED)
	CreatedAt         string // CreatedAt records row creation time
	UpdatedAt         string // UpdatedAt records last update time
}

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo given a DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

const showColumns = `id, movie_id, theater_id, screen, starts_at, ends_at,
	classic_price_cents, premium_price_cents, seat_rows, seat_cols, premium_rows,
	status, created_at, updated_at`

func scanShow(row interface{ Scan(...any) error }, s *Show) error {
	return row.Scan(&s.ID, &s.MovieID, &s.TheaterID, &s.Screen, &s.StartsAt, &s.EndsAt,
		&s.ClassicPriceCents, &s.PremiumPriceCents, &s.SeatRows, &s.SeatCols,
		&s.PremiumRows, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new show.  On success the ID and DB-default fields
// (status, timestamps) are populated on the given Show.
func (r *ShowRepo) Create(ctx context.Context, s *Show) error {
	const q = `INSERT INTO shows (movie_id, theater_id, screen, starts_at, ends_at,
	           classic_price_cents, premium_price_cents, seat_rows, seat_cols, premium_rows)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.TheaterID, s.Screen, s.StartsAt,
		s.EndsAt, s.ClassicPriceCents, s.PremiumPriceCents, s.SeatRows, s.SeatCols, s.PremiumRows)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = "SELECT " + showColumns + " FROM shows WHERE id = ?"
	return scanShow(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID fetches a show.  It returns ErrShowNotFound when no row exists.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*Show, error) {
	const q = "SELECT " + showColumns + " FROM shows WHERE id = ?"
	var s Show
	if err := scanShow(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByMovie returns upcoming scheduled shows for a movie ordered by start
// time.
func (r *ShowRepo) ListByMovie(ctx context.Context, movieID uint64) ([]*Show, error) {
	const q = "SELECT " + showColumns + ` FROM shows
	           WHERE movie_id = ? AND status = 'SCHEDULED' AND starts_at > UTC_TIMESTAMP()
	           ORDER BY starts_at, id`
	return r.list(ctx, q, movieID)
}

// ListByTheater returns upcoming scheduled shows in a theater ordered by
// start time.
func (r *ShowRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]*Show, error) {
	const q = "SELECT " + showColumns + ` FROM shows
	           WHERE theater_id = ? AND status = 'SCHEDULED' AND starts_at > UTC_TIMESTAMP()
	           ORDER BY starts_at, id`
	return r.list(ctx, q, theaterID)
}

func (r *ShowRepo) list(ctx context.Context, q string, args ...any) ([]*Show, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Show
	for rows.Next() {
		s := new(Show)
		if err := scanShow(rows, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites schedule and pricing fields of a show.  Grid dimensions
// are immutable once created because seat labels in bookings depend on
// them.  Returns ErrShowNotFound when the id does not exist.
func (r *ShowRepo) Update(ctx context.Context, s *Show) error {
	const q = `UPDATE shows SET movie_id = ?, theater_id = ?, screen = ?, starts_at = ?,
	           ends_at = ?, classic_price_cents = ?, premium_price_cents = ?, status = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.TheaterID, s.Screen, s.StartsAt,
		s.EndsAt, s.ClassicPriceCents, s.PremiumPriceCents, s.Status, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a show.  It returns ErrConflict when bookings exist for it
// and ErrShowNotFound when the id does not exist.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE show_id = ? AND status IN ('PENDING','CONFIRMED')", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM shows WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrShowNotFound
	}
	return nil
}
