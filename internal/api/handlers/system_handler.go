package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/clientip"
	"github.com/reelhaven/reelhaven/internal/version"
)

// SystemHandler serves health and diagnostic endpoints.
type SystemHandler struct {
	db *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports process and database liveness.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"name":    version.Name,
		"version": version.Version,
	})
}

// MyIP echoes the address the resolver derives for the caller, with the
// header it came from. Diagnostic aid for proxy configuration.
func (h *SystemHandler) MyIP(c *gin.Context) {
	ip, source := clientip.Source(c.Request)
	c.JSON(http.StatusOK, gin.H{
		"ip_address": ip,
		"source":     source,
	})
}
