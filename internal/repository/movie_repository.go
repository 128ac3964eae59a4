package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kzaleska/cinema-ticketing/internal/model"
)

// MovieRepo provides access to the `movies` and `categories` tables.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// MovieDetail is a movie joined with its category name for display.
type MovieDetail struct {
	ID              uint64  `json:"id"`
	Title           string  `json:"title"`
	Category        *string `json:"category,omitempty"`
	AgeRestrictions *uint32 `json:"age_restrictions,omitempty"`
	Description     *string `json:"description,omitempty"`
	TrailerLink     *string `json:"trailer_link,omitempty"`
	DurationMinutes *uint32 `json:"duration_minutes,omitempty"`
}

// List returns all movies with their category names, ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]MovieDetail, error) {
	const q = `SELECT m.id, m.title, c.name, m.age_restrictions, m.description, m.trailer_link, m.duration_minutes
	           FROM movies m
	           LEFT JOIN categories c ON c.id = m.category_id
	           ORDER BY m.title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MovieDetail, 0)
	for rows.Next() {
		d, err := scanMovieDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID returns a single movie with its category name.  ErrNotFound is
// returned when no movie with the given id exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (MovieDetail, error) {
	const q = `SELECT m.id, m.title, c.name, m.age_restrictions, m.description, m.trailer_link, m.duration_minutes
	           FROM movies m
	           LEFT JOIN categories c ON c.id = m.category_id
	           WHERE m.id = ?`
	d, err := scanMovieDetail(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return MovieDetail{}, ErrNotFound
	}
	return d, err
}

// Create inserts a movie and returns its ID.
func (r *MovieRepo) Create(ctx context.Context, m model.Movie) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, category_id, age_restrictions, description, trailer_link, duration_minutes) VALUES (?,?,?,?,?,?)",
		m.Title, m.CategoryID, m.AgeRestrictions, m.Description, m.TrailerLink, m.DurationMinutes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete removes a movie.  When the movie is still referenced by a
// repertoire entry the foreign key rejects the delete and ErrConflict is
// returned.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
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

// CreateCategory inserts a category and returns its ID.
func (r *MovieRepo) CreateCategory(ctx context.Context, name string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
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

// ListCategories returns all categories ordered by name.
func (r *MovieRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovieDetail(row rowScanner) (MovieDetail, error) {
	var (
		d        MovieDetail
		category sql.NullString
		age      sql.NullInt64
		desc     sql.NullString
		trailer  sql.NullString
		duration sql.NullInt64
	)
	if err := row.Scan(&d.ID, &d.Title, &category, &age, &desc, &trailer, &duration); err != nil {
		return MovieDetail{}, err
	}
	if category.Valid {
		v := category.String
		d.Category = &v
	}
	if age.Valid {
		v := uint32(age.Int64)
		d.AgeRestrictions = &v
	}
	if desc.Valid {
		v := desc.String
		d.Description = &v
	}
	if trailer.Valid {
		v := trailer.String
		d.TrailerLink = &v
	}
	if duration.Valid {
		v := uint32(duration.Int64)
		d.DurationMinutes = &v
	}
	return d, nil
}
