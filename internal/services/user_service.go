package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSelfDemotion     = errors.New("cannot remove your own admin role")
	ErrSelfDeletion     = errors.New("cannot delete your own account")
	ErrLastAdminRemoval = errors.New("cannot remove the last admin")
)

// UserService covers the admin-facing user management surface. Account
// self-service (login, registration, password change) lives in AuthService.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, audit: NewAuditService(db)}
}

// UserRow is a user annotated with activity counts for the admin table.
type UserRow struct {
	models.User
	MovieRequestCount int64 `json:"movie_request_count"`
	AccessLogCount    int64 `json:"access_log_count"`
}

// List returns all users with per-user activity counts, oldest first.
func (s *UserService) List() ([]UserRow, error) {
	var rows []UserRow
	err := s.db.Model(&models.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM movie_requests WHERE movie_requests.user_id = users.id) AS movie_request_count,
			(SELECT COUNT(*) FROM access_logs WHERE access_logs.user_id = users.id) AS access_log_count`).
		Order("users.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Counts returns total and admin user counts for the dashboard.
func (s *UserService) Counts() (total, admins int64, err error) {
	if err = s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
		return 0, 0, err
	}
	return total, admins, nil
}

// Create adds a user on behalf of an admin.
func (s *UserService) Create(actorID uint, actorIP, username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return nil, ErrUsernameTooShort
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		UUID:     uuid.New().String(),
		Username: username,
		IsAdmin:  isAdmin,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	s.audit.LogAdmin(&actorID, actorIP, "Created user "+username, true)
	return user, nil
}

// SetAdmin grants or revokes a user's admin role. An admin cannot demote
// themselves, and the last remaining admin cannot be demoted.
func (s *UserService) SetAdmin(actorID uint, actorIP string, userID uint, isAdmin bool) (*models.User, error) {
	user, err := s.get(userID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		if userID == actorID {
			return nil, ErrSelfDemotion
		}
		if user.IsAdmin {
			var admins int64
			if err := s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
				return nil, err
			}
			if admins <= 1 {
				return nil, ErrLastAdminRemoval
			}
		}
	}

	user.IsAdmin = isAdmin
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	role := "viewer"
	if isAdmin {
		role = "admin"
	}
	s.audit.LogAdmin(&actorID, actorIP, "Set role of "+user.Username+" to "+role, true)
	return user, nil
}

// Rename changes a user's username. The new name must meet the same
// length rule as registration and must not collide with another account.
func (s *UserService) Rename(actorID uint, actorIP string, userID uint, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return nil, ErrUsernameTooShort
	}
	user, err := s.get(userID)
	if err != nil {
		return nil, err
	}
	if username == user.Username {
		return user, nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ? AND id <> ?", username, userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	old := user.Username
	user.Username = username
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	s.audit.LogAdmin(&actorID, actorIP, "Renamed user "+old+" to "+username, true)
	return user, nil
}

// ResetPassword sets a new password for a user on behalf of an admin.
func (s *UserService) ResetPassword(actorID uint, actorIP string, userID uint, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.get(userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.db.Save(user).Error; err != nil {
		return err
	}
	s.audit.LogAdmin(&actorID, actorIP, "Reset password for "+user.Username, true)
	return nil
}

// Delete removes a user account along with their movie requests and access
// logs. Admins cannot delete themselves.
func (s *UserService) Delete(actorID uint, actorIP string, userID uint) error {
	if userID == actorID {
		return ErrSelfDeletion
	}
	user, err := s.get(userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		var admins int64
		if err := s.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdminRemoval
		}
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.MovieRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.AccessLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}
	s.audit.LogAdmin(&actorID, actorIP, "Deleted user "+user.Username, true)
	return nil
}

func (s *UserService) get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
