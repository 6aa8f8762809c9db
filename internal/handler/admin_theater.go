package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kavehz/movie-booking/internal/repository"
)

type theaterBody struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
	Screens uint32 `json:"screens"`
}

// CreateTheater handles POST /v1/admin/theaters.
func (h *AdminHandler) CreateTheater(c echo.Context) error {
	var body theaterBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	city := strings.TrimSpace(body.City)
	if name == "" || city == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and city are required"})
	}
	if body.Screens == 0 {
		body.Screens = 1
	}
	t := &repository.Theater{
		Name:    name,
		City:    city,
		Address: strings.TrimSpace(body.Address),
		Screens: body.Screens,
	}
	if err := h.Theaters.Create(c.Request().Context(), t); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "theater already exists in this city"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create theater"})
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTheater handles PUT/PATCH /v1/admin/theaters/:id.
func (h *AdminHandler) UpdateTheater(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	existing, err := h.Theaters.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTheaterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	var body theaterBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	city := strings.TrimSpace(body.City)
	if name == "" || city == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and city are required"})
	}
	existing.Name = name
	existing.City = city
	existing.Address = strings.TrimSpace(body.Address)
	if body.Screens > 0 {
		existing.Screens = body.Screens
	}
	if err := h.Theaters.Update(c.Request().Context(), existing); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "theater already exists in this city"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteTheater handles DELETE /v1/admin/theaters/:id.  A theater with
// scheduled shows cannot be deleted.
func (h *AdminHandler) DeleteTheater(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Theaters.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrTheaterNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "theater not found"})
		}
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, map[string]string{"error": "theater has scheduled shows"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
