package auth

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/cartloom/cartloom-backend/pkg/auth"
	"github.com/cartloom/cartloom-backend/pkg/config"
	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/security"
)

type stubSessions struct {
	generated []string
	revoked   []string
	failGen   bool
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	if s.failGen {
		return "", assert.AnError
	}
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-1234",
		Issuer:                 "cartloom-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  addresses TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func seedAuthUser(t *testing.T, db *gorm.DB, email, password string, active bool) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Priya Sharma",
		Role:         enums.UserRoleCustomer,
		IsActive:     active,
	}
	require.NoError(t, db.Create(user).Error)
	if !active {
		// the is_active column defaults to true, so gorm drops the
		// zero value on insert and it must be set explicitly
		require.NoError(t, db.Model(user).UpdateColumn("is_active", false).Error)
	}
	return user
}

func newAuthService(t *testing.T, db *gorm.DB, sessions SessionStore) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), sessions, testJWTConfig(), logg)
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	db := setupAuthTestDB(t)
	user := seedAuthUser(t, db, "priya@example.com", "s3cret-pass", true)
	sessions := &stubSessions{}
	svc := newAuthService(t, db, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "Priya@Example.com ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)

	require.Len(t, sessions.generated, 1)
	assert.Equal(t, claims.ID, sessions.generated[0])
	assert.Equal(t, "refresh-"+claims.ID, result.RefreshToken)
	assert.Equal(t, 15*60, result.ExpiresIn)
	assert.Equal(t, user.Email, result.User.Email)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	seedAuthUser(t, db, "priya@example.com", "s3cret-pass", true)
	svc := newAuthService(t, db, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "priya@example.com",
		Password: "wrong-pass",
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginUnknownEmailMatchesWrongPasswordError(t *testing.T) {
	db := setupAuthTestDB(t)
	seedAuthUser(t, db, "priya@example.com", "s3cret-pass", true)
	svc := newAuthService(t, db, &stubSessions{})

	_, unknownErr := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	})
	_, wrongErr := svc.Login(context.Background(), LoginInput{
		Email:    "priya@example.com",
		Password: "bad",
	})
	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginInactiveUser(t *testing.T) {
	db := setupAuthTestDB(t)
	seedAuthUser(t, db, "priya@example.com", "s3cret-pass", false)
	svc := newAuthService(t, db, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "priya@example.com",
		Password: "s3cret-pass",
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &stubSessions{}
	svc := newAuthService(t, db, sessions)

	require.NoError(t, svc.Logout(context.Background(), "access-id-1"))
	assert.Equal(t, []string{"access-id-1"}, sessions.revoked)

	err := svc.Logout(context.Background(), "")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}
