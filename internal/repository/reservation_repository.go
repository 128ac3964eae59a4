package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kzaleska/cinema-ticketing/internal/model"
)

// ReservationRepo is the authoritative store of committed seat
// reservations.  Correctness under concurrent booking rests entirely on
// the `uq_screening_seat_row` unique key over (screening_id, row_number,
// seat_number): the insert in Create is the atomic check-and-claim, so no
// application-level locking is used anywhere in the booking path and the
// guarantee holds across any number of server processes sharing the
// database.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = "id, user_id, screening_id, row_number, seat_number, created_at"

// Create attempts to commit a reservation for the seat identified by
// res.Seat().  When another reservation already holds that seat the
// storage layer rejects the row and ErrSeatTaken is returned; exactly one
// of any set of racing inserts for the same seat can succeed.  On success
// the generated ID and creation timestamp are populated on res.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, screening_id, row_number, seat_number) VALUES (?,?,?,?)`
	result, err := r.db.ExecContext(ctx, q, res.UserID, res.ScreeningID, res.RowNumber, res.SeatNumber)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSeatTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate the DB-generated timestamp
	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	if err := r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt); err != nil {
		return err
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return nil
}

// GetBySeat returns the reservation currently holding a seat, or
// ErrNotFound when the seat is free.  The reservation service uses this
// as the reconciliation read after an ambiguous commit outcome.
func (r *ReservationRepo) GetBySeat(ctx context.Context, seat model.SeatRef) (model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE screening_id = ? AND row_number = ? AND seat_number = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, seat.ScreeningID, seat.RowNumber, seat.SeatNumber).
		Scan(&res.ID, &res.UserID, &res.ScreeningID, &res.RowNumber, &res.SeatNumber, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

// ListByScreening returns all reservations committed for a screening.
// No ordering is promised; rows come back in index order.
func (r *ReservationRepo) ListByScreening(ctx context.Context, screeningID uint64) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + " FROM reservations WHERE screening_id = ?"
	return r.list(ctx, q, screeningID)
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + " FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	return r.list(ctx, q, userID)
}

// GetByIDForUser returns a single reservation owned by the given user.
// ErrNotFound is returned when the reservation does not exist and
// ErrForbidden when it belongs to someone else.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (model.Reservation, error) {
	const q = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, reservationID).
		Scan(&res.ID, &res.UserID, &res.ScreeningID, &res.RowNumber, &res.SeatNumber, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if res.UserID != userID {
		return model.Reservation{}, ErrForbidden
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

// DeleteByIDForUser removes a reservation owned by the given user.  The
// delete frees the seat for rebooking; a committed row is never updated
// in place.  Returns ErrNotFound / ErrForbidden like GetByIDForUser.
func (r *ReservationRepo) DeleteByIDForUser(ctx context.Context, reservationID, userID uint64) error {
	if _, err := r.GetByIDForUser(ctx, reservationID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ? AND user_id = ?", reservationID, userID)
	return err
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.ScreeningID, &res.RowNumber, &res.SeatNumber, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.CreatedAt = res.CreatedAt.UTC()
		out = append(out, res)
	}
	return out, rows.Err()
}
