package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/repository"
)

// CatalogHandler serves the public browse surface: movies, cinemas,
// repertoires and screenings.  All endpoints are read only and need no
// authentication, which also makes them safe to put behind the response
// cache.
type CatalogHandler struct {
	Movies     *repository.MovieRepo
	Cinemas    *repository.CinemaRepo
	Screenings *repository.ScreeningRepo
}

func NewCatalogHandler(m *repository.MovieRepo, c *repository.CinemaRepo, s *repository.ScreeningRepo) *CatalogHandler {
	return &CatalogHandler{Movies: m, Cinemas: c, Screenings: s}
}

// ListMovies: GET /v1/movies
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	movies, err := h.Movies.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, movies)
}

// GetMovie: GET /v1/movies/:id
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, movie)
}

// ListCategories: GET /v1/categories
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Movies.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cats)
}

// ListCinemas: GET /v1/cinemas
func (h *CatalogHandler) ListCinemas(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cinemas, err := h.Cinemas.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cinemas)
}

// ListRepertoire: GET /v1/cinemas/:id/repertoire
func (h *CatalogHandler) ListRepertoire(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	entries, err := h.Cinemas.ListRepertoire(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, entries)
}

// ListScreenings: GET /v1/repertoire/:id/screenings
func (h *CatalogHandler) ListScreenings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repertoire id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	screenings, err := h.Screenings.ListByRepertoire(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, screenings)
}

// GetScreening: GET /v1/screenings/:id
func (h *CatalogHandler) GetScreening(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	detail, err := h.Screenings.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, detail)
}
