package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/repository"
)

// TicketsHandler serves a customer's own bookings: listing purchased
// tickets and cancelling a booking before the show starts.  JWT and role
// checks happen in middleware; every method still returns 401 when the
// user id cannot be read from the context.  Cancellation runs inside a
// transaction so the status change and the refund marker land together.
type TicketsHandler struct {
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
}

// NewTicketsHandler constructs a TicketsHandler.  Both repositories must
// be non-nil.
func NewTicketsHandler(bookings *repository.BookingRepo, payments *repository.PaymentRepo) *TicketsHandler {
	if bookings == nil || payments == nil {
		panic("nil repository passed to NewTicketsHandler")
	}
	return &TicketsHandler{Bookings: bookings, Payments: payments}
}

// ListTickets handles GET /v1/my-tickets.  It returns the user's bookings
// with show, movie, theater and seat details, newest first.
func (h *TicketsHandler) ListTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelBooking handles DELETE /v1/bookings/:id.  A confirmed booking can
// be cancelled while the show has not started; its payment is marked
// refunded and the seats become available again.  Returns 204 on success,
// 404 for unknown bookings, 403 for someone else's booking and 409 when
// the booking is not cancellable.
func (h *TicketsHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	_, startsAt, status, err := h.Bookings.GetInfoForUserTx(ctx, tx, bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not cancellable"})
	}
	if !startsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "show already started"})
	}
	if err := h.Bookings.SetStatusTx(ctx, tx, bookingID, "CANCELLED"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := h.Payments.MarkRefundedByBookingTx(ctx, tx, bookingID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark refund"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}
