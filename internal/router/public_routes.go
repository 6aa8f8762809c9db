package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes return sanitized catalog data so guests can explore movies,
// theaters, shows and seat availability before registering.  The optional
// cacheMW (Redis response cache) is applied to every browse route; pass
// nil when caching is disabled.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cacheMW != nil {
		g.Use(cacheMW)
	}
	// Movies
	g.GET("/movies", h.ListMovies)
	g.GET("/movies/:id", h.GetMovie)
	g.GET("/movies/:id/shows", h.ListShowsByMovie)
	g.GET("/search/movies", h.SearchMovies)
	// Theaters
	g.GET("/theaters", h.ListTheaters)
	g.GET("/theaters/:id", h.GetTheater)
	g.GET("/theaters/:id/shows", h.ListShowsByTheater)
	// Shows and their seat maps.  Seat availability is point-in-time; the
	// checkout flow re-verifies seats at order time.
	g.GET("/shows/:id", h.GetShow)
	g.GET("/shows/:id/seats", h.GetShowSeats)
}
