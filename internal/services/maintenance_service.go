package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/logger"
	"github.com/reelhaven/reelhaven/internal/models"
)

// Audit rows older than this are pruned by the nightly job.
const logRetention = 90 * 24 * time.Hour

// MaintenanceService runs scheduled housekeeping: pruning old audit rows
// and stale non-pending access requests.
type MaintenanceService struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{db: db, cron: cron.New()}
}

// Start schedules the nightly pruning job. Call Stop on shutdown.
func (s *MaintenanceService) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.PruneLogs); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PruneLogs deletes audit rows and processed access requests older than
// the retention window.
func (s *MaintenanceService) PruneLogs() {
	cutoff := time.Now().Add(-logRetention)

	res := s.db.Where("created_at < ?", cutoff).Delete(&models.AccessLog{})
	if res.Error != nil {
		logger.Log().WithError(res.Error).Error("failed to prune access logs")
		return
	}
	pruned := res.RowsAffected

	res = s.db.Where("created_at < ?", cutoff).Delete(&models.AdminAccessLog{})
	if res.Error != nil {
		logger.Log().WithError(res.Error).Error("failed to prune admin logs")
		return
	}
	pruned += res.RowsAffected

	res = s.db.Where("status <> ? AND processed_at < ?", models.AccessRequestPending, cutoff).
		Delete(&models.AccessRequest{})
	if res.Error != nil {
		logger.Log().WithError(res.Error).Error("failed to prune processed access requests")
		return
	}
	pruned += res.RowsAffected

	if pruned > 0 {
		logger.WithFields(map[string]interface{}{
			"rows":   pruned,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("pruned expired audit and request rows")
	}
}
