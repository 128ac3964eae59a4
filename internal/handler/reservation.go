package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/queue"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
	"github.com/kzaleska/cinema-ticketing/internal/service"
)

// SeatReserver is the booking surface the handler depends on.  It is
// satisfied by service.ReservationService.
type SeatReserver interface {
	ReserveSeat(ctx context.Context, userID, screeningID uint64, row, seat uint32) (model.Reservation, error)
	ScreeningSeats(ctx context.Context, screeningID uint64) (model.Room, []model.Reservation, error)
}

// ScreeningInfo supplies screening lookups for the cancellation cutoff
// and the confirmation event payload.  It is satisfied by
// repository.ScreeningRepo.
type ScreeningInfo interface {
	GetByID(ctx context.Context, id uint64) (model.Screening, error)
	GetDetail(ctx context.Context, id uint64) (repository.ScreeningDetail, error)
}

// ReservationHandler serves the customer-facing booking endpoints.
type ReservationHandler struct {
	Reserver     SeatReserver
	Reservations *repository.ReservationRepo
	Screenings   ScreeningInfo

	// publish overrides the confirmation event sink; nil means the
	// RabbitMQ publisher.
	publish func(context.Context, queue.ReservationConfirmedEvent) error
}

func NewReservationHandler(r SeatReserver, res *repository.ReservationRepo, scr ScreeningInfo) *ReservationHandler {
	return &ReservationHandler{Reserver: r, Reservations: res, Screenings: scr}
}

type reserveSeatReq struct {
	RowNumber  uint32 `json:"row_number"`
	SeatNumber uint32 `json:"seat_number"`
}

// ReserveSeat: POST /v1/screenings/:id/reservations
//
// Commits the seat or reports why it could not, mapping the service
// outcomes onto HTTP statuses.  Conflicts are ordinary responses here,
// not errors: under load most concurrent attempts on a popular seat end
// in 409.
func (h *ReservationHandler) ReserveSeat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	screeningID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req reserveSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Reserver.ReserveSeat(ctx, uid, screeningID, req.RowNumber, req.SeatNumber)
	switch {
	case err == nil:
		// fall through to success
	case errors.Is(err, service.ErrInvalidSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat does not exist for this screening"})
	case errors.Is(err, service.ErrScreeningClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "screening already started"})
	case errors.Is(err, service.ErrSeatAlreadyReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already reserved"})
	case errors.Is(err, service.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reservation store unavailable, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	h.publishConfirmed(res)
	return c.JSON(http.StatusCreated, res)
}

// publishConfirmed emits the reservation.confirmed event.  Best effort:
// the reservation is already committed, so a broker outage or a missing
// detail source only costs the downstream notification.
func (h *ReservationHandler) publishConfirmed(res model.Reservation) {
	if h.Screenings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	detail, err := h.Screenings.GetDetail(ctx, res.ScreeningID)
	if err != nil {
		log.Printf("reservation: load screening detail for event failed: %v", err)
		return
	}
	publish := h.publish
	if publish == nil {
		publish = queue.PublishReservationConfirmed
	}
	_ = publish(ctx, queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ScreeningID:   res.ScreeningID,
		RowNumber:     res.RowNumber,
		SeatNumber:    res.SeatNumber,
		MovieTitle:    detail.MovieTitle,
		CinemaName:    detail.CinemaName,
		RoomNumber:    detail.RoomNumber,
		StartTime:     detail.StartTime.Format(time.RFC3339),
		TicketPrice:   detail.TicketPrice,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ScreeningSeats: GET /v1/screenings/:id/seats
//
// Returns the room grid plus the taken seats so clients can render
// availability.  The response reflects a moment in time; a seat shown
// free can still be lost to a faster booking.
func (h *ReservationHandler) ScreeningSeats(c echo.Context) error {
	screeningID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, taken, err := h.Reserver.ScreeningSeats(ctx, screeningID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type takenSeat struct {
		RowNumber  uint32 `json:"row_number"`
		SeatNumber uint32 `json:"seat_number"`
	}
	seats := make([]takenSeat, 0, len(taken))
	for _, r := range taken {
		seats = append(seats, takenSeat{RowNumber: r.RowNumber, SeatNumber: r.SeatNumber})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_number":   room.RoomNumber,
		"rows_total":    room.RowsTotal,
		"seats_per_row": room.SeatsPerRow,
		"taken":         seats,
	})
}

// ListMyReservations: GET /v1/reservations
func (h *ReservationHandler) ListMyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// GetReservation: GET /v1/reservations/:id
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Reservations.GetByIDForUser(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteReservation: DELETE /v1/reservations/:id
//
// Cancellation is allowed only before the screening starts; the freed
// seat becomes bookable again immediately.
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Reservations.GetByIDForUser(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	scr, err := h.Screenings.GetByID(ctx, res.ScreeningID)
	if err == nil && !scr.StartTime.After(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "screening already started"})
	}
	if err := h.Reservations.DeleteByIDForUser(ctx, id, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
