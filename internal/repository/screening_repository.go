package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kzaleska/cinema-ticketing/internal/model"
)

// ScreeningRepo provides access to the `screenings` table.  Together with
// RoomRepo it forms the screening catalog the reservation service
// validates seats against.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo returns a new ScreeningRepo bound to the given database.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{db: db} }

// DB exposes the underlying handle for transaction management in handlers.
func (r *ScreeningRepo) DB() *sql.DB { return r.db }

const screeningColumns = "id, repertoire_id, start_time, room_number, translation, image_format, ticket_price"

// GetByID returns a screening or ErrNotFound.  Times are stored and
// returned in UTC.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (model.Screening, error) {
	var s model.Screening
	err := r.db.QueryRowContext(ctx,
		"SELECT "+screeningColumns+" FROM screenings WHERE id=?", id).
		Scan(&s.ID, &s.RepertoireID, &s.StartTime, &s.RoomNumber, &s.Translation, &s.ImageFormat, &s.TicketPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Screening{}, ErrNotFound
	}
	if err != nil {
		return model.Screening{}, err
	}
	s.StartTime = s.StartTime.UTC()
	return s, nil
}

// ListByRepertoire returns upcoming screenings for a repertoire entry
// ordered by start time.
func (r *ScreeningRepo) ListByRepertoire(ctx context.Context, repertoireID uint64) ([]model.Screening, error) {
	const q = "SELECT " + screeningColumns + " FROM screenings WHERE repertoire_id = ? ORDER BY start_time"
	rows, err := r.db.QueryContext(ctx, q, repertoireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Screening, 0)
	for rows.Next() {
		var s model.Screening
		if err := rows.Scan(&s.ID, &s.RepertoireID, &s.StartTime, &s.RoomNumber, &s.Translation, &s.ImageFormat, &s.TicketPrice); err != nil {
			return nil, err
		}
		s.StartTime = s.StartTime.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// ScreeningDetail joins a screening with the movie and cinema it belongs
// to, for public listings and event payloads.
type ScreeningDetail struct {
	model.Screening
	MovieID    uint64 `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	CinemaID   uint64 `json:"cinema_id"`
	CinemaName string `json:"cinema_name"`
}

// GetDetail returns a screening together with its movie and cinema, or
// ErrNotFound.
func (r *ScreeningRepo) GetDetail(ctx context.Context, id uint64) (ScreeningDetail, error) {
	const q = `SELECT s.id, s.repertoire_id, s.start_time, s.room_number, s.translation, s.image_format, s.ticket_price,
	                  m.id, m.title, c.id, c.name
	           FROM screenings s
	           JOIN repertoire rp ON rp.id = s.repertoire_id
	           JOIN movies m ON m.id = rp.movie_id
	           JOIN cinemas c ON c.id = rp.cinema_id
	           WHERE s.id = ?`
	var d ScreeningDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.RepertoireID, &d.StartTime, &d.RoomNumber, &d.Translation, &d.ImageFormat, &d.TicketPrice,
		&d.MovieID, &d.MovieTitle, &d.CinemaID, &d.CinemaName)
	if errors.Is(err, sql.ErrNoRows) {
		return ScreeningDetail{}, ErrNotFound
	}
	if err != nil {
		return ScreeningDetail{}, err
	}
	d.StartTime = d.StartTime.UTC()
	return d, nil
}

// Create schedules a screening and returns its ID.  A missing repertoire
// entry or room surfaces as ErrNotFound via the foreign key rejection.
func (r *ScreeningRepo) Create(ctx context.Context, s model.Screening) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO screenings (repertoire_id, start_time, room_number, translation, image_format, ticket_price) VALUES (?,?,?,?,?,?)",
		s.RepertoireID, s.StartTime.UTC(), s.RoomNumber, s.Translation, s.ImageFormat, s.TicketPrice)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes a screening.  Screenings with committed reservations
// cannot be removed and yield ErrConflict.
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM screenings WHERE id=?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
