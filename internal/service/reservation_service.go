// Package service contains the booking orchestration layer.  It owns the
// domain outcomes of a seat booking attempt and keeps the handlers free of
// storage concerns.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
)

// Booking attempt outcomes.  All of them are client-visible conditions;
// only ErrStorageUnavailable indicates a server-side fault.
var (
	// ErrInvalidSeat means the seat does not exist for the screening:
	// the screening is unknown, the room is unknown, or row/seat fall
	// outside the room's seating grid.
	ErrInvalidSeat = errors.New("invalid seat")

	// ErrScreeningClosed means the screening's start time has passed
	// and the booking window is over.
	ErrScreeningClosed = errors.New("screening closed")

	// ErrSeatAlreadyReserved means another reservation won the seat.
	// It is an ordinary business outcome of concurrent booking and is
	// never retried on the caller's behalf.
	ErrSeatAlreadyReserved = errors.New("seat already reserved")

	// ErrStorageUnavailable means the reservation store could not be
	// reached or left the attempt in an unknown state that could not
	// be reconciled.  The whole ReserveSeat call is safe to retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ScreeningCatalog supplies screening metadata for seat validation.  It is
// satisfied by repository.ScreeningRepo.
type ScreeningCatalog interface {
	GetByID(ctx context.Context, id uint64) (model.Screening, error)
}

// RoomDirectory supplies room seating grids.  It is satisfied by
// repository.RoomRepo.
type RoomDirectory interface {
	GetByNumber(ctx context.Context, roomNumber uint32) (model.Room, error)
}

// ReservationLedger is the authoritative reservation store.  Create must
// be an atomic conditional insert: of any set of concurrent calls for the
// same seat exactly one succeeds and the rest fail with
// repository.ErrSeatTaken.  It is satisfied by repository.ReservationRepo.
type ReservationLedger interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetBySeat(ctx context.Context, seat model.SeatRef) (model.Reservation, error)
	ListByScreening(ctx context.Context, screeningID uint64) ([]model.Reservation, error)
}

// ReservationService validates booking requests and commits them through
// the ledger.  It holds no locks and no mutable state: seat uniqueness is
// enforced by the ledger's storage constraint, so any number of
// ReservationService instances (and server processes) can run against the
// same store.
type ReservationService struct {
	catalog ScreeningCatalog
	rooms   RoomDirectory
	ledger  ReservationLedger
	now     func() time.Time
}

// NewReservationService constructs a ReservationService.  All
// dependencies must be non-nil.
func NewReservationService(catalog ScreeningCatalog, rooms RoomDirectory, ledger ReservationLedger) *ReservationService {
	if catalog == nil || rooms == nil || ledger == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		catalog: catalog,
		rooms:   rooms,
		ledger:  ledger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ReserveSeat books one seat of a screening for a user.  The attempt
// moves through validation and a single commit; there is no hold phase
// and no retry on conflict.  Outcomes:
//
//	ErrInvalidSeat         – row/seat out of the room's grid, or no such screening/room
//	ErrScreeningClosed     – the screening has already started
//	ErrSeatAlreadyReserved – another reservation holds the seat
//	ErrStorageUnavailable  – the store failed; safe to retry the whole call
//
// On success the committed reservation is returned.
func (s *ReservationService) ReserveSeat(ctx context.Context, userID, screeningID uint64, row, seat uint32) (model.Reservation, error) {
	if row < 1 || seat < 1 {
		return model.Reservation{}, ErrInvalidSeat
	}

	scr, err := s.catalog.GetByID(ctx, screeningID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrInvalidSeat
		}
		return model.Reservation{}, fmt.Errorf("%w: load screening: %v", ErrStorageUnavailable, err)
	}
	room, err := s.rooms.GetByNumber(ctx, scr.RoomNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrInvalidSeat
		}
		return model.Reservation{}, fmt.Errorf("%w: load room: %v", ErrStorageUnavailable, err)
	}
	if row > room.RowsTotal || seat > room.SeatsPerRow {
		return model.Reservation{}, ErrInvalidSeat
	}
	if !scr.StartTime.After(s.now()) {
		return model.Reservation{}, ErrScreeningClosed
	}

	res := model.Reservation{
		UserID:      userID,
		ScreeningID: screeningID,
		RowNumber:   row,
		SeatNumber:  seat,
	}
	switch err := s.ledger.Create(ctx, &res); {
	case err == nil:
		return res, nil
	case errors.Is(err, repository.ErrSeatTaken):
		return model.Reservation{}, ErrSeatAlreadyReserved
	default:
		// The commit outcome is unknown (timeout, dropped connection).
		// Never assume failure: re-read the seat to learn the truth
		// before reporting anything to the caller.
		return s.reconcile(userID, res.Seat(), err)
	}
}

// reconcile resolves an ambiguous commit outcome by looking the seat up
// again.  The read runs on a fresh context because the request context
// may already be past its deadline.
func (s *ReservationService) reconcile(userID uint64, seat model.SeatRef, cause error) (model.Reservation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	committed, err := s.ledger.GetBySeat(ctx, seat)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The seat is free: the insert did not land.
			return model.Reservation{}, fmt.Errorf("%w: commit failed: %v", ErrStorageUnavailable, cause)
		}
		return model.Reservation{}, fmt.Errorf("%w: reconcile read: %v (commit: %v)", ErrStorageUnavailable, err, cause)
	}
	if committed.UserID == userID {
		// Our insert landed before the connection died.
		log.Printf("reservation: recovered committed seat %d/%d of screening %d after ambiguous commit",
			seat.RowNumber, seat.SeatNumber, seat.ScreeningID)
		return committed, nil
	}
	return model.Reservation{}, ErrSeatAlreadyReserved
}

// ScreeningSeats reports the seating grid of a screening's room together
// with the seats already taken, for availability displays.
func (s *ReservationService) ScreeningSeats(ctx context.Context, screeningID uint64) (model.Room, []model.Reservation, error) {
	scr, err := s.catalog.GetByID(ctx, screeningID)
	if err != nil {
		return model.Room{}, nil, err
	}
	room, err := s.rooms.GetByNumber(ctx, scr.RoomNumber)
	if err != nil {
		return model.Room{}, nil, err
	}
	taken, err := s.ledger.ListByScreening(ctx, screeningID)
	if err != nil {
		return model.Room{}, nil, err
	}
	return room, taken, nil
}
