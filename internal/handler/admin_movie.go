package handler // handler package contains admin-scoped movie handlers

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/kavehz/movie-booking/internal/repository" // repository holds database models
)

// certifications enumerates the censor ratings a movie may carry.
var certifications = map[string]bool{"U": true, "UA": true, "A": true, "S": true}

// movieBody is the JSON payload for creating or updating a movie.
type movieBody struct {
	Title         string `json:"title"`          // Title is the display title
	Description   string `json:"description"`    // Description is the synopsis
	Genre         string `json:"genre"`          // Genre such as "Action"
	Language      string `json:"language"`       // Language such as "Hindi"
	Certification string `json:"certification"`  // Certification is U, UA, A or S
	DurationMin   uint32 `json:"duration_min"`   // DurationMin is the runtime in minutes
	PosterURL     string `json:"poster_url"`     // PosterURL points at the poster image
	ReleaseDate   string `json:"release_date"`   // ReleaseDate is "YYYY-MM-DD"
}

// validate trims the payload and reports the first problem, if any.
func (b *movieBody) validate() string {
	b.Title = strings.TrimSpace(b.Title)
	b.Genre = strings.TrimSpace(b.Genre)
	b.Language = strings.TrimSpace(b.Language)
	b.Certification = strings.ToUpper(strings.TrimSpace(b.Certification))
	if b.Title == "" {
		return "title is required"
	}
	if b.DurationMin == 0 {
		return "duration_min is required"
	}
	if b.Certification != "" && !certifications[b.Certification] {
		return "certification must be one of U, UA, A, S"
	}
	return ""
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var body movieBody
	if err := c.Bind(&body); err != nil { // bind the request body into the struct
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	m := &repository.Movie{
		Title:         body.Title,
		Description:   body.Description,
		Genre:         body.Genre,
		Language:      body.Language,
		Certification: body.Certification,
		DurationMin:   body.DurationMin,
		PosterURL:     body.PosterURL,
		ReleaseDate:   body.ReleaseDate,
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		if strings.Contains(err.Error(), "1062") { // duplicate title+language
			return c.JSON(http.StatusConflict, map[string]string{"error": "movie already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create movie"})
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMovie handles PUT/PATCH /v1/admin/movies/:id.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	existing, err := h.Movies.GetByID(c.Request().Context(), id) // verify the movie exists
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	var body movieBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}
	existing.Title = body.Title
	existing.Description = body.Description
	existing.Genre = body.Genre
	existing.Language = body.Language
	existing.Certification = body.Certification
	existing.DurationMin = body.DurationMin
	existing.PosterURL = body.PosterURL
	existing.ReleaseDate = body.ReleaseDate
	if err := h.Movies.Update(c.Request().Context(), existing); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "movie already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteMovie handles DELETE /v1/admin/movies/:id.  A movie with scheduled
// shows cannot be deleted.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "movie not found"})
		}
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, map[string]string{"error": "movie has scheduled shows"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
