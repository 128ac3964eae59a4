package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/utils"
)

// UserRepo provides persistence for the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,first_name,last_name,date_of_birth,phone,role,reset_token,is_active,created_at,updated_at"

// Create inserts a user and returns its ID.  The email is normalized to
// lower case and the password hashed with bcrypt before storage.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time, phone *string, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, date_of_birth, phone, role) VALUES (?,?,?,?,?,?,?)",
		email, hash, firstName, lastName, dateOfBirth, phone, role)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// UpdatePassword replaces the stored bcrypt hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, newHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", newHash, userID)
	return err
}

// SetResetToken stores a password reset token for the user.  Passing nil
// clears any active token.
func (r *UserRepo) SetResetToken(ctx context.Context, userID uint64, token *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=? WHERE id=?", token, userID)
	return err
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...interface{}) (model.User, error) {
	var (
		u          model.User
		phone      sql.NullString
		resetToken sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.DateOfBirth, &phone, &u.Role, &resetToken, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	if resetToken.Valid {
		t := resetToken.String
		u.ResetToken = &t
	}
	return u, nil
}
