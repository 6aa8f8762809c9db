// This file builds the per-show seat map snapshot served to clients and to
// the checkout flow. The grid is derived from the show's stored dimensions;
// availability comes from pending and confirmed booking seats.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kavehz/movie-booking/internal/booking"
)

// SeatMapRepo assembles seat map snapshots.  It implements
// booking.SeatMapProvider.
type SeatMapRepo struct {
	db    *sql.DB
	shows *ShowRepo
}

// NewSeatMapRepo constructs a SeatMapRepo.  Both dependencies must be
// non-nil.
func NewSeatMapRepo(db *sql.DB, shows *ShowRepo) *SeatMapRepo {
	if db == nil || shows == nil {
		panic("nil dependency passed to NewSeatMapRepo")
	}
	return &SeatMapRepo{db: db, shows: shows}
}

// FetchSeatMap returns the availability and pricing snapshot for a show.
// Seats of currently pending (not expired) and confirmed bookings are
// marked unavailable.  Returns ErrShowNotFound for unknown shows.
func (r *SeatMapRepo) FetchSeatMap(ctx context.Context, showID uint64) (booking.SeatMap, error) {
	show, err := r.shows.GetByID(ctx, showID)
	if err != nil {
		return booking.SeatMap{}, err
	}
	taken, err := r.takenLabels(ctx, showID)
	if err != nil {
		return booking.SeatMap{}, err
	}
	return BuildSeatMap(show, taken), nil
}

// takenLabels returns the seat labels held by live bookings for a show.
// PENDING bookings count only while their hold has not expired.
func (r *SeatMapRepo) takenLabels(ctx context.Context, showID uint64) (map[string]bool, error) {
	const q = `SELECT bs.seat_label
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE bs.show_id = ?
	             AND (b.status = 'CONFIRMED'
	                  OR (b.status = 'PENDING' AND b.expires_at > UTC_TIMESTAMP()))`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		taken[label] = true
	}
	return taken, rows.Err()
}

// BuildSeatMap expands a show's grid dimensions into the full seat list.
// Rows are labeled A, B, ... from the screen backwards; the last
// PremiumRows rows carry the premium tier and price.
func BuildSeatMap(show *Show, taken map[string]bool) booking.SeatMap {
	m := booking.SeatMap{
		ShowID: show.ID,
		Rows:   show.SeatRows,
		Cols:   show.SeatCols,
		Seats:  make([]booking.Seat, 0, show.SeatRows*show.SeatCols),
	}
	for row := uint32(0); row < show.SeatRows; row++ {
		rowLabel := indexToRowLabel(int(row))
		tier := booking.TierClassic
		price := show.ClassicPriceCents
		if show.PremiumRows > 0 && row >= show.SeatRows-show.PremiumRows {
			tier = booking.TierPremium
			price = show.PremiumPriceCents
		}
		for col := uint32(1); col <= show.SeatCols; col++ {
			label := fmt.Sprintf("%s%d", rowLabel, col)
			m.Seats = append(m.Seats, booking.Seat{
				Label:       label,
				Row:         rowLabel,
				Number:      col,
				Tier:        tier,
				PriceCents:  price,
				IsAvailable: !taken[label],
			})
		}
	}
	return m
}

// indexToRowLabel converts a zero-based index to an alphabetical row label
// like A, B, ..., Z, AA.
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
