package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kzaleska/cinema-ticketing/internal/model"
)

// RoomRepo provides access to the `rooms` table, which records the
// seating grid of every physical room.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// GetByNumber returns the room with the given number or ErrNotFound.
func (r *RoomRepo) GetByNumber(ctx context.Context, roomNumber uint32) (model.Room, error) {
	var m model.Room
	err := r.db.QueryRowContext(ctx,
		"SELECT room_number, rows_total, seats_per_row FROM rooms WHERE room_number=?",
		roomNumber).Scan(&m.RoomNumber, &m.RowsTotal, &m.SeatsPerRow)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrNotFound
	}
	return m, err
}

// Upsert registers a room or updates its seating grid.  Shrinking a grid
// does not touch existing reservations; operators are expected to retire
// rooms between runs of the repertoire, not mid-sales.
func (r *RoomRepo) Upsert(ctx context.Context, m model.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_number, rows_total, seats_per_row) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE rows_total=VALUES(rows_total), seats_per_row=VALUES(seats_per_row)`,
		m.RoomNumber, m.RowsTotal, m.SeatsPerRow)
	return err
}
