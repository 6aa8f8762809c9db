package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/repository"
)

// adminUserView hides the password hash from user listings.
type adminUserView struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load users"})
	}
	items := make([]adminUserView, 0, len(users))
	for _, u := range users {
		items = append(items, adminUserView{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Phone:    u.Phone,
			Role:     u.Role,
			IsActive: u.IsActive,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SetUserActive handles PATCH /v1/admin/users/:id/active.  Deactivated
// users cannot log in; their existing bookings are untouched.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.Users.SetActive(c.Request().Context(), id, body.Active); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DashboardStats handles GET /v1/admin/stats.  It aggregates booking
// counts, confirmed revenue and the registered user count.
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	stats, err := h.Bookings.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
	}
	users, err := h.Users.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings": stats,
		"users":    users,
	})
}
