package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelhaven/reelhaven/internal/config"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret"}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, testConfig())

	t.Run("register", func(t *testing.T) {
		user, err := service.Register("alice", "password1")
		assert.NoError(t, err)
		assert.False(t, user.IsAdmin)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := service.Register("alice", "password2")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("short username", func(t *testing.T) {
		_, err := service.Register("al", "password1")
		assert.ErrorIs(t, err, ErrUsernameTooShort)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := service.Register("robert", "pw")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		token, user, err := service.Login("alice", "password1")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		_, _, err := service.Login("alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login with unknown user", func(t *testing.T) {
		_, _, err := service.Login("nobody", "password1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Tokens(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, testConfig())

	user, err := service.Register("carol", "password1")
	assert.NoError(t, err)

	token, _, err := service.Login("carol", "password1")
	assert.NoError(t, err)

	t.Run("valid token round-trips claims", func(t *testing.T) {
		claims, err := service.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "carol", claims.Username)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewAuthService(db, config.Config{JWTSecret: "different"})
		stolen, _, err := other.Login("carol", "password1")
		assert.NoError(t, err)

		_, err = service.ValidateToken(stolen)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, testConfig())

	user, err := service.Register("dave", "password1")
	assert.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := service.ChangePassword(user.ID, "wrong", "newpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid change", func(t *testing.T) {
		assert.NoError(t, service.ChangePassword(user.ID, "password1", "newpassword"))

		_, _, err := service.Login("dave", "password1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = service.Login("dave", "newpassword")
		assert.NoError(t, err)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, testConfig())

	t.Run("seeds admin on empty database", func(t *testing.T) {
		assert.NoError(t, service.EnsureAdmin("bootpass"))

		_, user, err := service.Login("admin", "bootpass")
		assert.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("no-op when users exist", func(t *testing.T) {
		assert.NoError(t, service.EnsureAdmin("otherpass"))

		_, _, err := service.Login("admin", "otherpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
