package model

import "time"

// Reservation records a committed claim on a single seat of a
// screening.  Rows are immutable once inserted; cancellation is a
// plain delete, never an update.  The `reservations` table carries a
// unique key over (screening_id, row_number, seat_number) so that
// for any screening each seat pair appears at most once.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – user who booked the seat.
//	ScreeningID – screening the seat belongs to.
//	RowNumber   – 1-based row within the room.
//	SeatNumber  – 1-based seat within the row.
//	CreatedAt   – creation timestamp.
type Reservation struct {
	ID          uint64    `json:"id"`           // reservations.id
	UserID      uint64    `json:"user_id"`      // reservations.user_id
	ScreeningID uint64    `json:"screening_id"` // reservations.screening_id
	RowNumber   uint32    `json:"row_number"`   // reservations.row_number
	SeatNumber  uint32    `json:"seat_number"`  // reservations.seat_number
	CreatedAt   time.Time `json:"created_at"`   // reservations.created_at
}

// SeatRef identifies one bookable seat within one screening.  It is
// a plain comparable value: two SeatRefs are equal exactly when all
// three components match, and the type can be used as a map key.
// Range validation is the reservation service's job, not this
// type's.
type SeatRef struct {
	ScreeningID uint64 `json:"screening_id"`
	RowNumber   uint32 `json:"row_number"`
	SeatNumber  uint32 `json:"seat_number"`
}

// NewSeatRef builds a SeatRef from its three components.
func NewSeatRef(screeningID uint64, row, seat uint32) SeatRef {
	return SeatRef{ScreeningID: screeningID, RowNumber: row, SeatNumber: seat}
}

// Seat returns the seat identity of a committed reservation.
func (r Reservation) Seat() SeatRef {
	return NewSeatRef(r.ScreeningID, r.RowNumber, r.SeatNumber)
}
