package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/handler"
	"github.com/kavehz/movie-booking/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Movies ----
	g.POST("/movies", a.CreateMovie)
	g.PUT("/movies/:id", a.UpdateMovie)
	g.PATCH("/movies/:id", a.UpdateMovie) // allow partial-style updates via PATCH as well
	g.DELETE("/movies/:id", a.DeleteMovie)

	// ---- Theaters ----
	g.POST("/theaters", a.CreateTheater)
	g.PUT("/theaters/:id", a.UpdateTheater)
	g.PATCH("/theaters/:id", a.UpdateTheater)
	g.DELETE("/theaters/:id", a.DeleteTheater)

	// ---- Shows ----
	// NOTE: Listing shows is handled by the public browse API.  Admin
	// list endpoints were dropped to avoid route conflicts with the
	// public /v1 handlers.
	g.POST("/shows", a.CreateShow)
	g.PUT("/shows/:id", a.UpdateShow)
	g.PATCH("/shows/:id", a.UpdateShow)
	g.DELETE("/shows/:id", a.DeleteShow)

	// ---- Users and dashboard ----
	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/active", a.SetUserActive)
	g.GET("/stats", a.DashboardStats)
}
