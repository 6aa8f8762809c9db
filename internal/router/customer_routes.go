package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/handler"
	"github.com/kavehz/movie-booking/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the USER role.  Customers drive the
// checkout flow (open, pick seats, review, pay), list their tickets and
// cancel upcoming bookings.
func RegisterCustomer(e *echo.Echo, co *handler.CheckoutHandler, tk *handler.TicketsHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER"),
	)

	// ---- Checkout flow ----
	// One checkout per user at a time; opening a new one replaces any
	// unfinished session.
	g.POST("/checkout/shows/:id", co.Open)
	g.GET("/checkout", co.Current)
	g.POST("/checkout/seats/toggle", co.ToggleSeat)
	g.POST("/checkout/seats/clear", co.ClearSeats)
	g.POST("/checkout/finalize", co.Finalize)
	g.POST("/checkout/confirm", co.Confirm)
	g.POST("/checkout/payment", co.Payment)
	g.POST("/checkout/restart", co.Restart)
	g.DELETE("/checkout", co.Abort)

	// ---- Tickets ----
	g.GET("/my-tickets", tk.ListTickets)
	g.DELETE("/bookings/:id", tk.CancelBooking)
}
