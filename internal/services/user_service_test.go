package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelhaven/reelhaven/internal/models"
)

func TestUserService_Create(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	t.Run("creates viewer", func(t *testing.T) {
		user, err := service.Create(1, "192.0.2.99", "viewer1", "password1", false)
		assert.NoError(t, err)
		assert.False(t, user.IsAdmin)
	})

	t.Run("creates admin", func(t *testing.T) {
		user, err := service.Create(1, "192.0.2.99", "admin2", "password1", true)
		assert.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := service.Create(1, "192.0.2.99", "viewer1", "password1", false)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("audit row carries the actor address", func(t *testing.T) {
		var entry models.AdminAccessLog
		err := db.Where("action = ?", "Created user viewer1").First(&entry).Error
		assert.NoError(t, err)
		assert.Equal(t, "192.0.2.99", entry.IPAddress)
	})

	t.Run("rejects short credentials", func(t *testing.T) {
		_, err := service.Create(1, "192.0.2.99", "ab", "password1", false)
		assert.ErrorIs(t, err, ErrUsernameTooShort)

		_, err = service.Create(1, "192.0.2.99", "validname", "pw", false)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestUserService_SetAdmin(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	admin, err := service.Create(0, "192.0.2.99", "theadmin", "password1", true)
	assert.NoError(t, err)
	viewer, err := service.Create(admin.ID, "192.0.2.99", "theviewer", "password1", false)
	assert.NoError(t, err)

	t.Run("promote viewer", func(t *testing.T) {
		user, err := service.SetAdmin(admin.ID, "192.0.2.99", viewer.ID, true)
		assert.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		_, err := service.SetAdmin(admin.ID, "192.0.2.99", admin.ID, false)
		assert.ErrorIs(t, err, ErrSelfDemotion)
	})

	t.Run("demote other admin", func(t *testing.T) {
		user, err := service.SetAdmin(admin.ID, "192.0.2.99", viewer.ID, false)
		assert.NoError(t, err)
		assert.False(t, user.IsAdmin)
	})

	t.Run("cannot demote last admin", func(t *testing.T) {
		_, err := service.SetAdmin(viewer.ID, "192.0.2.99", admin.ID, false)
		assert.ErrorIs(t, err, ErrLastAdminRemoval)
	})
}

func TestUserService_Delete(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	admin, err := service.Create(0, "192.0.2.99", "rootadmin", "password1", true)
	assert.NoError(t, err)
	viewer, err := service.Create(admin.ID, "192.0.2.99", "somebody", "password1", false)
	assert.NoError(t, err)

	t.Run("cannot delete self", func(t *testing.T) {
		err := service.Delete(admin.ID, "192.0.2.99", admin.ID)
		assert.ErrorIs(t, err, ErrSelfDeletion)
	})

	t.Run("cannot delete last admin", func(t *testing.T) {
		err := service.Delete(viewer.ID, "192.0.2.99", admin.ID)
		assert.ErrorIs(t, err, ErrLastAdminRemoval)
	})

	t.Run("delete viewer cascades their records", func(t *testing.T) {
		db.Create(&models.MovieRequest{UserID: viewer.ID, Title: "Stalker", Status: "pending"})
		db.Create(&models.AccessLog{UserID: &viewer.ID, IPAddress: "192.0.2.77"})

		assert.NoError(t, service.Delete(admin.ID, "192.0.2.99", viewer.ID))
		err := service.Delete(admin.ID, "192.0.2.99", viewer.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)

		var requests, logs int64
		db.Model(&models.MovieRequest{}).Where("user_id = ?", viewer.ID).Count(&requests)
		db.Model(&models.AccessLog{}).Where("user_id = ?", viewer.ID).Count(&logs)
		assert.Zero(t, requests)
		assert.Zero(t, logs)
	})
}

func TestUserService_Rename(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	admin, err := service.Create(0, "192.0.2.99", "headadmin", "password1", true)
	assert.NoError(t, err)
	viewer, err := service.Create(admin.ID, "192.0.2.99", "oldname", "password1", false)
	assert.NoError(t, err)

	t.Run("renames user", func(t *testing.T) {
		user, err := service.Rename(admin.ID, "192.0.2.99", viewer.ID, "newname")
		assert.NoError(t, err)
		assert.Equal(t, "newname", user.Username)
	})

	t.Run("rename to own name is a no-op", func(t *testing.T) {
		user, err := service.Rename(admin.ID, "192.0.2.99", viewer.ID, "newname")
		assert.NoError(t, err)
		assert.Equal(t, "newname", user.Username)
	})

	t.Run("rejects taken name", func(t *testing.T) {
		_, err := service.Rename(admin.ID, "192.0.2.99", viewer.ID, "headadmin")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("rejects short name", func(t *testing.T) {
		_, err := service.Rename(admin.ID, "192.0.2.99", viewer.ID, "ab")
		assert.ErrorIs(t, err, ErrUsernameTooShort)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.Rename(admin.ID, "192.0.2.99", 9999, "whoever")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_ListAndCounts(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)

	admin, err := service.Create(0, "192.0.2.99", "counter", "password1", true)
	assert.NoError(t, err)
	_, err = service.Create(admin.ID, "192.0.2.99", "watcher", "password1", false)
	assert.NoError(t, err)

	rows, err := service.List()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)

	total, admins, err := service.Counts()
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 1, admins)
}

func TestUserService_ResetPassword(t *testing.T) {
	db := setupTestDB(t)
	service := NewUserService(db)
	auth := NewAuthService(db, testConfig())

	admin, err := service.Create(0, "192.0.2.99", "resetter", "password1", true)
	assert.NoError(t, err)

	t.Run("short password rejected", func(t *testing.T) {
		err := service.ResetPassword(admin.ID, "192.0.2.99", admin.ID, "pw")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("reset allows login with new password", func(t *testing.T) {
		assert.NoError(t, service.ResetPassword(admin.ID, "192.0.2.99", admin.ID, "freshpass"))

		_, _, err := auth.Login("resetter", "freshpass")
		assert.NoError(t, err)
	})
}
