package handler // handler defines http handlers

import (
	"github.com/kavehz/movie-booking/internal/repository" // repository holds data access layer
)

// AdminHandler bundles repositories for the back office: catalog
// management, show scheduling and user administration.
type AdminHandler struct {
	Movies   *repository.MovieRepo   // Movies provides movie persistence
	Theaters *repository.TheaterRepo // Theaters provides theater persistence
	Shows    *repository.ShowRepo    // Shows provides show persistence
	Users    *repository.UserRepo    // Users provides account administration
	Bookings *repository.BookingRepo // Bookings provides dashboard aggregates
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(movies *repository.MovieRepo, theaters *repository.TheaterRepo, shows *repository.ShowRepo, users *repository.UserRepo, bookings *repository.BookingRepo) *AdminHandler {
	if movies == nil || theaters == nil || shows == nil || users == nil || bookings == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{
		Movies:   movies,
		Theaters: theaters,
		Shows:    shows,
		Users:    users,
		Bookings: bookings,
	}
}
