package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/repository"
)

// dbTime is the timestamp layout stored in the shows table.
const dbTime = "2006-01-02 15:04:05"

type showBody struct {
	MovieID           uint64 `json:"movie_id"`
	TheaterID         uint64 `json:"theater_id"`
	Screen            uint32 `json:"screen"`
	StartsAt          string `json:"starts_at"` // "YYYY-MM-DD HH:MM:SS" UTC
	EndsAt            string `json:"ends_at"`
	ClassicPriceCents uint32 `json:"classic_price_cents"`
	PremiumPriceCents uint32 `json:"premium_price_cents"`
	SeatRows          uint32 `json:"seat_rows"`
	SeatCols          uint32 `json:"seat_cols"`
	PremiumRows       uint32 `json:"premium_rows"`
}

// validate checks referential and structural rules shared by create and
// update.  The seat grid is fixed once bookings exist, which Update
// enforces separately.
func (h *AdminHandler) validateShowBody(c echo.Context, body *showBody) (string, int) {
	body.StartsAt = strings.TrimSpace(body.StartsAt)
	body.EndsAt = strings.TrimSpace(body.EndsAt)
	if body.MovieID == 0 || body.TheaterID == 0 {
		return "movie_id and theater_id are required", http.StatusBadRequest
	}
	start, err := time.Parse(dbTime, body.StartsAt)
	if err != nil {
		return "starts_at must be formatted as YYYY-MM-DD HH:MM:SS", http.StatusBadRequest
	}
	end, err := time.Parse(dbTime, body.EndsAt)
	if err != nil {
		return "ends_at must be formatted as YYYY-MM-DD HH:MM:SS", http.StatusBadRequest
	}
	if !end.After(start) {
		return "ends_at must be after starts_at", http.StatusBadRequest
	}
	if body.ClassicPriceCents == 0 || body.PremiumPriceCents == 0 {
		return "classic_price_cents and premium_price_cents are required", http.StatusBadRequest
	}
	if body.SeatRows == 0 || body.SeatCols == 0 {
		return "seat_rows and seat_cols are required", http.StatusBadRequest
	}
	if body.PremiumRows > body.SeatRows {
		return "premium_rows cannot exceed seat_rows", http.StatusBadRequest
	}
	if _, err := h.Movies.GetByID(c.Request().Context(), body.MovieID); err != nil {
		if err == repository.ErrMovieNotFound {
			return "movie not found", http.StatusNotFound
		}
		return "db error", http.StatusInternalServerError
	}
	theater, err := h.Theaters.GetByID(c.Request().Context(), body.TheaterID)
	if err != nil {
		if err == repository.ErrTheaterNotFound {
			return "theater not found", http.StatusNotFound
		}
		return "db error", http.StatusInternalServerError
	}
	if body.Screen == 0 || body.Screen > theater.Screens {
		return "screen is out of range for this theater", http.StatusBadRequest
	}
	return "", 0
}

// CreateShow handles POST /v1/admin/shows.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg, code := h.validateShowBody(c, &body); msg != "" {
		return c.JSON(code, map[string]string{"error": msg})
	}
	s := &repository.Show{
		MovieID:           body.MovieID,
		TheaterID:         body.TheaterID,
		Screen:            body.Screen,
		StartsAt:          body.StartsAt,
		EndsAt:            body.EndsAt,
		ClassicPriceCents: body.ClassicPriceCents,
		PremiumPriceCents: body.PremiumPriceCents,
		SeatRows:          body.SeatRows,
		SeatCols:          body.SeatCols,
		PremiumRows:       body.PremiumRows,
		Status:            "SCHEDULED",
	}
	if err := h.Shows.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create show"})
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateShow handles PUT/PATCH /v1/admin/shows/:id.
func (h *AdminHandler) UpdateShow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	existing, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg, code := h.validateShowBody(c, &body); msg != "" {
		return c.JSON(code, map[string]string{"error": msg})
	}
	// Seat grid changes would invalidate existing seat labels.
	if body.SeatRows != existing.SeatRows || body.SeatCols != existing.SeatCols || body.PremiumRows != existing.PremiumRows {
		return c.JSON(http.StatusConflict, map[string]string{"error": "seat grid cannot be changed"})
	}
	existing.MovieID = body.MovieID
	existing.TheaterID = body.TheaterID
	existing.Screen = body.Screen
	existing.StartsAt = body.StartsAt
	existing.EndsAt = body.EndsAt
	existing.ClassicPriceCents = body.ClassicPriceCents
	existing.PremiumPriceCents = body.PremiumPriceCents
	if err := h.Shows.Update(c.Request().Context(), existing); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteShow handles DELETE /v1/admin/shows/:id.  Shows with pending or
// confirmed bookings cannot be deleted.
func (h *AdminHandler) DeleteShow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Shows.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "show not found"})
		}
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, map[string]string{"error": "show has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
