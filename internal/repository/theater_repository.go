// This file defines the Theater model and repository methods. A Theater is a
// venue with one or more numbered screens; shows are scheduled on a screen.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Theater represents a theater persisted in the database.
type Theater struct {
	ID        uint64 // ID is the unique identifier of the theater
	Name      string // Name is the human-friendly name of the theater
	City      string // City the theater is located in
	Address   string // Address is the street address
	Screens   uint32 // Screens is the number of screens in the building
	CreatedAt string // CreatedAt stores when the row was created
	UpdatedAt string // UpdatedAt stores when the row was last updated
}

// ErrTheaterNotFound is returned when a theater cannot be found in the DB.
var ErrTheaterNotFound = errors.New("theater not found")

// TheaterRepo encapsulates all database queries related to theaters.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the provided DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

// Create inserts a new theater.  On success the ID and timestamp fields are
// populated on the given Theater.
func (r *TheaterRepo) Create(ctx context.Context, t *Theater) error {
	const qInsert = "INSERT INTO theaters (name, city, address, screens) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, t.Name, t.City, t.Address, t.Screens)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const qSelect = "SELECT name, city, address, screens, created_at, updated_at FROM theaters WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, t.ID).
		Scan(&t.Name, &t.City, &t.Address, &t.Screens, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID fetches a theater by its ID.  It returns ErrTheaterNotFound when
// no row exists.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*Theater, error) {
	const q = "SELECT id, name, city, address, screens, created_at, updated_at FROM theaters WHERE id = ?"
	var t Theater
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.Screens, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all theaters, optionally filtered by city (case-insensitive
// exact match), ordered by name.
func (r *TheaterRepo) List(ctx context.Context, city string) ([]*Theater, error) {
	q := "SELECT id, name, city, address, screens, created_at, updated_at FROM theaters"
	var args []any
	if c := strings.TrimSpace(city); c != "" {
		q += " WHERE LOWER(city) = LOWER(?)"
		args = append(args, c)
	}
	q += " ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Theater
	for rows.Next() {
		t := new(Theater)
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.Screens, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the mutable fields of a theater.  It returns
// ErrTheaterNotFound when the id does not exist.
func (r *TheaterRepo) Update(ctx context.Context, t *Theater) error {
	const q = "UPDATE theaters SET name = ?, city = ?, address = ?, screens = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, t.Name, t.City, t.Address, t.Screens, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a theater.  It returns ErrConflict when shows are still
// scheduled there and ErrTheaterNotFound when the id does not exist.
func (r *TheaterRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shows WHERE theater_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM theaters WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTheaterNotFound
	}
	return nil
}
