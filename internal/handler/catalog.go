package handler

import (
	"net/http" // HTTP status codes
	"strings"  // query normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kavehz/movie-booking/internal/repository" // repository layer
)

// CatalogHandler serves the unauthenticated browse surface: movies,
// theaters, shows and per-show seat maps.  Responses contain sanitized
// data only, so guests can explore the catalog before registering.
type CatalogHandler struct {
	Movies   *repository.MovieRepo
	Theaters *repository.TheaterRepo
	Shows    *repository.ShowRepo
	SeatMaps *repository.SeatMapRepo
}

// NewCatalogHandler constructs a CatalogHandler.  All dependencies must be
// non-nil.
func NewCatalogHandler(movies *repository.MovieRepo, theaters *repository.TheaterRepo, shows *repository.ShowRepo, seatMaps *repository.SeatMapRepo) *CatalogHandler {
	if movies == nil || theaters == nil || shows == nil || seatMaps == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Movies: movies, Theaters: theaters, Shows: shows, SeatMaps: seatMaps}
}

// ListMovies handles GET /v1/movies.  Optional ?genre= and ?language=
// query parameters filter the result.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	genre := strings.TrimSpace(c.QueryParam("genre"))
	language := strings.TrimSpace(c.QueryParam("language"))
	movies, err := h.Movies.List(c.Request().Context(), genre, language)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

// SearchMovies handles GET /v1/search/movies?q=.  The query matches title
// and description.
func (h *CatalogHandler) SearchMovies(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	movies, err := h.Movies.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": m})
}

// ListTheaters handles GET /v1/theaters.  Optional ?city= filters by city.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	theaters, err := h.Theaters.List(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theaters"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": theaters})
}

// GetTheater handles GET /v1/theaters/:id.
func (h *CatalogHandler) GetTheater(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	t, err := h.Theaters.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTheaterNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theater"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": t})
}

// ListShowsByMovie handles GET /v1/movies/:id/shows.  Only scheduled,
// not-yet-started shows are returned.
func (h *CatalogHandler) ListShowsByMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	if _, err := h.Movies.GetByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	shows, err := h.Shows.ListByMovie(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// ListShowsByTheater handles GET /v1/theaters/:id/shows.
func (h *CatalogHandler) ListShowsByTheater(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	if _, err := h.Theaters.GetByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrTheaterNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	shows, err := h.Shows.ListByTheater(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// GetShow handles GET /v1/shows/:id.
func (h *CatalogHandler) GetShow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	s, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": s})
}

// GetShowSeats handles GET /v1/shows/:id/seats.  It returns the current
// seat map for the show: grid dimensions and every seat with its label,
// tier, price and availability.  Availability reflects confirmed bookings
// and unexpired pending holds at the time of the request.
func (h *CatalogHandler) GetShowSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	m, err := h.SeatMaps.FetchSeatMap(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": m})
}
