package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzaleska/cinema-ticketing/internal/config"
	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/queue"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
	"github.com/kzaleska/cinema-ticketing/internal/utils"
)

// stubUserStore implements UserStore with overridable func fields.
type stubUserStore struct {
	create         func(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time, phone *string, role string, cost int) (uint64, error)
	getByEmail     func(ctx context.Context, email string) (model.User, error)
	getByID        func(ctx context.Context, id uint64) (model.User, error)
	updatePassword func(ctx context.Context, userID uint64, newHash string) error
	setResetToken  func(ctx context.Context, userID uint64, token *string) error
}

func (s *stubUserStore) Create(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time, phone *string, role string, cost int) (uint64, error) {
	return s.create(ctx, email, password, firstName, lastName, dateOfBirth, phone, role, cost)
}
func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getByEmail(ctx, email)
}
func (s *stubUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return s.getByID(ctx, id)
}
func (s *stubUserStore) UpdatePassword(ctx context.Context, userID uint64, newHash string) error {
	return s.updatePassword(ctx, userID, newHash)
}
func (s *stubUserStore) SetResetToken(ctx context.Context, userID uint64, token *string) error {
	return s.setResetToken(ctx, userID, token)
}

// stubTokenStore implements TokenStore; unset fields act as no-ops.
type stubTokenStore struct {
	stored   []string
	revoked  []string
	validate func(ctx context.Context, tokenHash string) (uint64, error)
}

func (s *stubTokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.stored = append(s.stored, tokenHash)
	return nil
}
func (s *stubTokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	if s.validate == nil {
		return 0, sql.ErrNoRows
	}
	return s.validate(ctx, tokenHash)
}
func (s *stubTokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	s.revoked = append(s.revoked, tokenHash)
	return nil
}
func (s *stubTokenStore) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return nil
}

func testAuthConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4, // minimum cost keeps the suite fast
		ResetURL:       "http://localhost:3000/reset-password",
	}
}

func newAuthContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func hashFor(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, 4)
	require.NoError(t, err)
	return h
}

func TestRegister_Created(t *testing.T) {
	users := &stubUserStore{
		create: func(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time, phone *string, role string, cost int) (uint64, error) {
			assert.Equal(t, "new@example.com", email)
			assert.Equal(t, "USER", role, "self-registration never grants ADMIN")
			assert.Equal(t, 1990, dateOfBirth.Year())
			return 7, nil
		},
	}
	tokens := &stubTokenStore{}
	h := NewAuthHandler(testAuthConfig(), users, tokens)

	c, rec := newAuthContext(`{"email":"New@Example.com","password":"pw","first_name":"Kaja","last_name":"Nowak","date_of_birth":"1990-04-02"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"new@example.com"`)
	assert.Len(t, tokens.stored, 1, "a refresh token must be persisted")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &stubUserStore{
		create: func(ctx context.Context, email, password, firstName, lastName string, dateOfBirth time.Time, phone *string, role string, cost int) (uint64, error) {
			return 0, repository.ErrEmailExists
		},
	}
	h := NewAuthHandler(testAuthConfig(), users, &stubTokenStore{})

	c, rec := newAuthContext(`{"email":"dup@example.com","password":"pw","first_name":"Kaja","last_name":"Nowak","date_of_birth":"1990-04-02"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_BadDateOfBirth(t *testing.T) {
	h := NewAuthHandler(testAuthConfig(), &stubUserStore{}, &stubTokenStore{})
	c, rec := newAuthContext(`{"email":"a@b.c","password":"pw","first_name":"Kaja","last_name":"Nowak","date_of_birth":"02.04.1990"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	stored := hashFor(t, "right-pass")
	users := &stubUserStore{
		getByEmail: func(ctx context.Context, email string) (model.User, error) {
			if email != "kaja@example.com" {
				return model.User{}, sql.ErrNoRows
			}
			return model.User{ID: 7, Email: email, PasswordHash: stored, Role: "USER"}, nil
		},
	}
	tokens := &stubTokenStore{}
	h := NewAuthHandler(testAuthConfig(), users, tokens)

	t.Run("success", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"kaja@example.com","password":"right-pass"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"access"`)
		assert.Contains(t, rec.Body.String(), `"refresh"`)
	})
	t.Run("wrong password", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"kaja@example.com","password":"wrong"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("unknown email", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"nobody@example.com","password":"pw"}`)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := &stubUserStore{
		getByID: func(ctx context.Context, id uint64) (model.User, error) {
			return model.User{ID: id, Email: "kaja@example.com", Role: "USER"}, nil
		},
	}
	tokens := &stubTokenStore{
		validate: func(ctx context.Context, tokenHash string) (uint64, error) { return 7, nil },
	}
	h := NewAuthHandler(testAuthConfig(), users, tokens)

	c, rec := newAuthContext(`{"refresh_token":"old-raw-token"}`)
	require.NoError(t, h.Refresh(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tokens.revoked, 1, "the presented token must be revoked")
	require.Len(t, tokens.stored, 1, "a replacement token must be stored")
	assert.NotEqual(t, tokens.revoked[0], tokens.stored[0])
}

func TestRefresh_InvalidToken(t *testing.T) {
	h := NewAuthHandler(testAuthConfig(), &stubUserStore{}, &stubTokenStore{})
	c, rec := newAuthContext(`{"refresh_token":"bogus"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_WithRefreshToken(t *testing.T) {
	tokens := &stubTokenStore{
		validate: func(ctx context.Context, tokenHash string) (uint64, error) { return 7, nil },
	}
	h := NewAuthHandler(testAuthConfig(), &stubUserStore{}, tokens)

	c, rec := newAuthContext(`{"refresh_token":"raw-token"}`)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, tokens.revoked, 1)
}

func TestChangePassword(t *testing.T) {
	stored := hashFor(t, "old-pass")
	var updated string
	users := &stubUserStore{
		getByID: func(ctx context.Context, id uint64) (model.User, error) {
			return model.User{ID: id, PasswordHash: stored}, nil
		},
		updatePassword: func(ctx context.Context, userID uint64, newHash string) error {
			updated = newHash
			return nil
		},
	}
	h := NewAuthHandler(testAuthConfig(), users, &stubTokenStore{})

	t.Run("wrong old password", func(t *testing.T) {
		c, rec := newAuthContext(`{"old_password":"nope","new_password":"next"}`)
		c.Set("user_id", uint64(7))
		require.NoError(t, h.ChangePassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, updated)
	})
	t.Run("success", func(t *testing.T) {
		c, rec := newAuthContext(`{"old_password":"old-pass","new_password":"next"}`)
		c.Set("user_id", uint64(7))
		require.NoError(t, h.ChangePassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, updated)
		assert.NotEqual(t, stored, updated)
	})
}

func TestForgotPassword(t *testing.T) {
	var savedToken *string
	users := &stubUserStore{
		getByEmail: func(ctx context.Context, email string) (model.User, error) {
			if email != "kaja@example.com" {
				return model.User{}, sql.ErrNoRows
			}
			return model.User{ID: 7, Email: email}, nil
		},
		setResetToken: func(ctx context.Context, userID uint64, token *string) error {
			savedToken = token
			return nil
		},
	}
	h := NewAuthHandler(testAuthConfig(), users, &stubTokenStore{})
	var sent queue.PasswordResetRequestedEvent
	h.publishReset = func(ctx context.Context, ev queue.PasswordResetRequestedEvent) error {
		sent = ev
		return nil
	}

	t.Run("unknown email", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"nobody@example.com"}`)
		require.NoError(t, h.ForgotPassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("success", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"kaja@example.com"}`)
		require.NoError(t, h.ForgotPassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, savedToken)
		assert.Equal(t, "kaja@example.com", sent.Email)
		assert.Equal(t, "http://localhost:3000/reset-password/"+*savedToken, sent.ResetLink)
	})
}

func TestResetPassword(t *testing.T) {
	token := "reset-token-123"
	var (
		updated string
		cleared bool
	)
	users := &stubUserStore{
		getByEmail: func(ctx context.Context, email string) (model.User, error) {
			return model.User{ID: 7, Email: email, ResetToken: &token}, nil
		},
		updatePassword: func(ctx context.Context, userID uint64, newHash string) error {
			updated = newHash
			return nil
		},
		setResetToken: func(ctx context.Context, userID uint64, tok *string) error {
			cleared = tok == nil
			return nil
		},
	}
	h := NewAuthHandler(testAuthConfig(), users, &stubTokenStore{})

	t.Run("invalid token", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"kaja@example.com","reset_token":"wrong","new_password":"next"}`)
		require.NoError(t, h.ResetPassword(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, updated)
	})
	t.Run("success", func(t *testing.T) {
		c, rec := newAuthContext(`{"email":"kaja@example.com","reset_token":"reset-token-123","new_password":"next"}`)
		require.NoError(t, h.ResetPassword(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, updated)
		assert.True(t, cleared, "the used token must be cleared")
	})
}
