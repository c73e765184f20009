package services

import (
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/logger"
	"github.com/reelhaven/reelhaven/internal/models"
)

// AuditService appends access events to the audit tables. Writes are
// best-effort: a failed audit write is logged and swallowed so it can never
// take down the request that triggered it.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// LogAccess records a general access event.
func (s *AuditService) LogAccess(userID *uint, ip, action string, success bool) {
	entry := models.AccessLog{
		UserID:    userID,
		IPAddress: ip,
		Action:    action,
		Success:   success,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"ip":     ip,
			"action": action,
		}).WithError(err).Warn("failed to write access log entry")
	}
}

// LogAdmin records a privileged admin operation.
func (s *AuditService) LogAdmin(userID *uint, ip, action string, success bool) {
	entry := models.AdminAccessLog{
		UserID:    userID,
		IPAddress: ip,
		Action:    action,
		Success:   success,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"ip":     ip,
			"action": action,
		}).WithError(err).Warn("failed to write admin log entry")
	}
}

// AdminLogRow is an admin log entry joined with the acting username.
type AdminLogRow struct {
	models.AdminAccessLog
	Username string `json:"username"`
}

// RecentAdminLogs returns the latest admin log entries with usernames.
func (s *AuditService) RecentAdminLogs(limit int) ([]AdminLogRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []AdminLogRow
	err := s.db.Model(&models.AdminAccessLog{}).
		Select("admin_access_logs.*, users.username").
		Joins("LEFT JOIN users ON users.id = admin_access_logs.user_id").
		Order("admin_access_logs.created_at desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
