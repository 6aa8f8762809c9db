// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Movie model and repository methods for CRUD, listing
// and search. A Movie is catalog reference data; shows link a movie to a
// theater screen at a time.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
	"strings"      // strings normalizes filter input
)

// Movie represents a movie persisted in the database.  Duration is in
// minutes; Certification is one of U, UA, A, S.
type Movie struct {
	ID            uint64 // ID is the unique identifier of the movie
	Title         string // Title is the display title
	Description   string // Description is the synopsis shown on the details page
	Genre         string // Genre such as "Action" or "Drama"
	Language      string // Language such as "English" or "Hindi"
	Certification string // Certification is the censor rating (U, UA, A, S)
	DurationMin   uint32 // DurationMin is the runtime in minutes
	PosterURL     string // PosterURL points at the poster image
	ReleaseDate   string // ReleaseDate is the DB date ("YYYY-MM-DD")
	CreatedAt     string // CreatedAt stores when the row was created
	UpdatedAt     string // UpdatedAt stores when the row was last updated
}

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, title, description, genre, language, certification, duration_min, poster_url, release_date, created_at, updated_at"

func scanMovie(row interface{ Scan(...any) error }, m *Movie) error {
	return row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Language,
		&m.Certification, &m.DurationMin, &m.PosterURL, &m.ReleaseDate,
		&m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a new movie.  On success the ID and DB-default timestamp
// fields are populated on the given Movie.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	const qInsert = `INSERT INTO movies (title, description, genre, language, certification, duration_min, poster_url, release_date)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, m.Title, m.Description, m.Genre,
		m.Language, m.Certification, m.DurationMin, m.PosterURL, m.ReleaseDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const qSelect = "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	return scanMovie(r.db.QueryRowContext(ctx, qSelect, m.ID), m)
}

// GetByID fetches a movie by its ID.  It returns ErrMovieNotFound when no
// row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	var m Movie
	if err := scanMovie(r.db.QueryRowContext(ctx, q, id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns movies ordered by release date descending.  Optional genre
// and language filters narrow the result when non-empty.
func (r *MovieRepo) List(ctx context.Context, genre, language string) ([]*Movie, error) {
	q := "SELECT " + movieColumns + " FROM movies"
	var (
		conds []string
		args  []any
	)
	if g := strings.TrimSpace(genre); g != "" {
		conds = append(conds, "genre = ?")
		args = append(args, g)
	}
	if l := strings.TrimSpace(language); l != "" {
		conds = append(conds, "language = ?")
		args = append(args, l)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY release_date DESC, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Movie
	for rows.Next() {
		m := new(Movie)
		if err := scanMovie(rows, m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns movies whose title contains the query, case-insensitively,
// ordered by title.  An empty query yields an empty result.
func (r *MovieRepo) Search(ctx context.Context, query string) ([]*Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Movie{}, nil
	}
	const q = "SELECT " + movieColumns + " FROM movies WHERE title LIKE ? ORDER BY title, id LIMIT 50"
	rows, err := r.db.QueryContext(ctx, q, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Movie
	for rows.Next() {
		m := new(Movie)
		if err := scanMovie(rows, m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the mutable fields of a movie.  It returns
// ErrMovieNotFound when the id does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *Movie) error {
	const q = `UPDATE movies SET title = ?, description = ?, genre = ?, language = ?,
	           certification = ?, duration_min = ?, poster_url = ?, release_date = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Genre, m.Language,
		m.Certification, m.DurationMin, m.PosterURL, m.ReleaseDate, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or unchanged; distinguish by existence.
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie.  It returns ErrConflict when shows still
// reference the movie and ErrMovieNotFound when the id does not exist.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shows WHERE movie_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMovieNotFound
	}
	return nil
}
