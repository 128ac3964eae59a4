package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kzaleska/cinema-ticketing/internal/model"
)

// CinemaRepo provides access to the `cinemas` and `repertoire` tables.
type CinemaRepo struct {
	db *sql.DB
}

// NewCinemaRepo returns a new CinemaRepo bound to the given database.
func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{db: db} }

// List returns all cinemas ordered by name.
func (r *CinemaRepo) List(ctx context.Context) ([]model.Cinema, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, location FROM cinemas ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Cinema, 0)
	for rows.Next() {
		var c model.Cinema
		if err := rows.Scan(&c.ID, &c.Name, &c.Location); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns a single cinema or ErrNotFound.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (model.Cinema, error) {
	var c model.Cinema
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, location FROM cinemas WHERE id=?", id).
		Scan(&c.ID, &c.Name, &c.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cinema{}, ErrNotFound
	}
	return c, err
}

// Create inserts a cinema and returns its ID.
func (r *CinemaRepo) Create(ctx context.Context, name, location string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO cinemas (name, location) VALUES (?,?)", name, location)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// RepertoireMovie is a repertoire entry joined with its movie for the
// public per-cinema listing.
type RepertoireMovie struct {
	RepertoireID uint64  `json:"repertoire_id"`
	MovieID      uint64  `json:"movie_id"`
	Title        string  `json:"title"`
	Category     *string `json:"category,omitempty"`
}

// ListRepertoire returns the movies currently playing at a cinema.  It
// verifies cinema existence first so that an unknown id yields ErrNotFound
// rather than an empty list.
func (r *CinemaRepo) ListRepertoire(ctx context.Context, cinemaID uint64) ([]RepertoireMovie, error) {
	if _, err := r.GetByID(ctx, cinemaID); err != nil {
		return nil, err
	}
	const q = `SELECT rp.id, m.id, m.title, c.name
	           FROM repertoire rp
	           JOIN movies m ON m.id = rp.movie_id
	           LEFT JOIN categories c ON c.id = m.category_id
	           WHERE rp.cinema_id = ?
	           ORDER BY m.title`
	rows, err := r.db.QueryContext(ctx, q, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RepertoireMovie, 0)
	for rows.Next() {
		var (
			rm       RepertoireMovie
			category sql.NullString
		)
		if err := rows.Scan(&rm.RepertoireID, &rm.MovieID, &rm.Title, &category); err != nil {
			return nil, err
		}
		if category.Valid {
			v := category.String
			rm.Category = &v
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// AddToRepertoire links a movie to a cinema and returns the new
// repertoire entry id.  A missing cinema or movie surfaces as
// ErrNotFound via the foreign key rejection.
func (r *CinemaRepo) AddToRepertoire(ctx context.Context, cinemaID, movieID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO repertoire (cinema_id, movie_id) VALUES (?,?)", cinemaID, movieID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrNotFound
		}
		if isDuplicateEntry(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
