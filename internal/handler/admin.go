package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
)

// AdminHandler serves the ADMIN-only catalog management endpoints.
type AdminHandler struct {
	Movies     *repository.MovieRepo
	Cinemas    *repository.CinemaRepo
	Screenings *repository.ScreeningRepo
	Rooms      *repository.RoomRepo
}

func NewAdminHandler(m *repository.MovieRepo, c *repository.CinemaRepo, s *repository.ScreeningRepo, r *repository.RoomRepo) *AdminHandler {
	return &AdminHandler{Movies: m, Cinemas: c, Screenings: s, Rooms: r}
}

type createMovieReq struct {
	Title           string  `json:"title"`
	CategoryID      *uint64 `json:"category_id"`
	AgeRestrictions *uint32 `json:"age_restrictions"`
	Description     *string `json:"description"`
	TrailerLink     *string `json:"trailer_link"`
	DurationMinutes *uint32 `json:"duration_minutes"`
}

// CreateMovie: POST /v1/admin/movies
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Movies.Create(ctx, model.Movie{
		Title:           strings.TrimSpace(req.Title),
		CategoryID:      req.CategoryID,
		AgeRestrictions: req.AgeRestrictions,
		Description:     req.Description,
		TrailerLink:     req.TrailerLink,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// DeleteMovie: DELETE /v1/admin/movies/:id
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	switch err := h.Movies.Delete(ctx, id); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie is in a repertoire"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movie failed"})
	}
}

type createCategoryReq struct {
	Name string `json:"name"`
}

// CreateCategory: POST /v1/admin/categories
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req createCategoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Movies.CreateCategory(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type createCinemaReq struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// CreateCinema: POST /v1/admin/cinemas
func (h *AdminHandler) CreateCinema(c echo.Context) error {
	var req createCinemaReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Location) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/location required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Cinemas.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Location))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create cinema failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type addRepertoireReq struct {
	MovieID uint64 `json:"movie_id"`
}

// AddToRepertoire: POST /v1/admin/cinemas/:id/repertoire
func (h *AdminHandler) AddToRepertoire(c echo.Context) error {
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	var req addRepertoireReq
	if err := c.Bind(&req); err != nil || req.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Cinemas.AddToRepertoire(ctx, cinemaID, req.MovieID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema or movie not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already in repertoire"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add to repertoire failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type createScreeningReq struct {
	RepertoireID uint64  `json:"repertoire_id"`
	StartTime    string  `json:"start_time"` // RFC 3339
	RoomNumber   uint32  `json:"room_number"`
	Translation  string  `json:"translation"`
	ImageFormat  string  `json:"image_format"`
	TicketPrice  float64 `json:"ticket_price"`
}

func validTranslation(t string) bool {
	switch t {
	case model.TranslationDubbing, model.TranslationSubtitles, model.TranslationVoiceOver:
		return true
	}
	return false
}

func validImageFormat(f string) bool {
	return f == model.ImageFormat2D || f == model.ImageFormat3D
}

// CreateScreening: POST /v1/admin/screenings
func (h *AdminHandler) CreateScreening(c echo.Context) error {
	var req createScreeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RepertoireID == 0 || req.RoomNumber == 0 || req.TicketPrice <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "repertoire_id/room_number/ticket_price required"})
	}
	if !validTranslation(req.Translation) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid translation"})
	}
	if !validImageFormat(req.ImageFormat) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image_format"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
	}
	if !start.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be in the future"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// The room must exist before any seats in it can be sold.
	if _, err := h.Rooms.GetByNumber(ctx, req.RoomNumber); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	id, err := h.Screenings.Create(ctx, model.Screening{
		RepertoireID: req.RepertoireID,
		StartTime:    start.UTC(),
		RoomNumber:   req.RoomNumber,
		Translation:  req.Translation,
		ImageFormat:  req.ImageFormat,
		TicketPrice:  req.TicketPrice,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "repertoire entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create screening failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// DeleteScreening: DELETE /v1/admin/screenings/:id
func (h *AdminHandler) DeleteScreening(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	switch err := h.Screenings.Delete(ctx, id); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "screening has reservations"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete screening failed"})
	}
}

type upsertRoomReq struct {
	RowsTotal   uint32 `json:"rows_total"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// UpsertRoom: PUT /v1/admin/rooms/:number
func (h *AdminHandler) UpsertRoom(c echo.Context) error {
	num, err := pathID(c, "number")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room number"})
	}
	var req upsertRoomReq
	if err := c.Bind(&req); err != nil || req.RowsTotal == 0 || req.SeatsPerRow == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows_total/seats_per_row required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	room := model.Room{RoomNumber: uint32(num), RowsTotal: req.RowsTotal, SeatsPerRow: req.SeatsPerRow}
	if err := h.Rooms.Upsert(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save room failed"})
	}
	return c.JSON(http.StatusOK, room)
}
