package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/services"
)

// AllowlistHandler exposes allowlist management to admins. Every mutation
// passes the acting admin's resolved address down so the service can refuse
// self-lockout.
type AllowlistHandler struct {
	allowlist *services.AllowlistService
	audit     *services.AuditService
}

func NewAllowlistHandler(allowlist *services.AllowlistService, audit *services.AuditService) *AllowlistHandler {
	return &AllowlistHandler{allowlist: allowlist, audit: audit}
}

func (h *AllowlistHandler) List(c *gin.Context) {
	rows, err := h.allowlist.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list allowlist entries"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type allowlistEntryRequest struct {
	IPAddress   string `json:"ip_address" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (h *AllowlistHandler) Create(c *gin.Context) {
	var req allowlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "IP address is required"})
		return
	}

	adminID := middleware.UserID(c)
	entry, err := h.allowlist.Add(req.IPAddress, req.Description, &adminID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidIPAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDuplicateAddress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			middleware.GetRequestLogger(c).WithError(err).Error("Failed to create allowlist entry")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create allowlist entry"})
		}
		return
	}

	h.audit.LogAdmin(&adminID, clientIP(c), "Added "+entry.IPAddress+" to allowlist", true)
	c.JSON(http.StatusCreated, entry)
}

func (h *AllowlistHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	var req allowlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "IP address is required"})
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	adminID := middleware.UserID(c)
	ip := clientIP(c)
	if err := h.allowlist.Update(id, req.IPAddress, req.Description, active, ip); err != nil {
		h.writeMutationError(c, err, "Failed to update allowlist entry")
		return
	}

	h.audit.LogAdmin(&adminID, ip, "Updated allowlist entry for "+req.IPAddress, true)
	c.JSON(http.StatusOK, gin.H{"message": "Allowlist entry updated"})
}

func (h *AllowlistHandler) Toggle(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	adminID := middleware.UserID(c)
	ip := clientIP(c)
	entry, err := h.allowlist.Toggle(id, ip)
	if err != nil {
		h.writeMutationError(c, err, "Failed to toggle allowlist entry")
		return
	}

	state := "disabled"
	if entry.Active {
		state = "enabled"
	}
	h.audit.LogAdmin(&adminID, ip, "Allowlist entry "+entry.IPAddress+" "+state, true)
	c.JSON(http.StatusOK, entry)
}

func (h *AllowlistHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	adminID := middleware.UserID(c)
	ip := clientIP(c)
	entry, err := h.allowlist.Delete(id, ip)
	if err != nil {
		h.writeMutationError(c, err, "Failed to delete allowlist entry")
		return
	}

	h.audit.LogAdmin(&adminID, ip, "Removed "+entry.IPAddress+" from allowlist", true)
	c.JSON(http.StatusOK, gin.H{"message": "Allowlist entry deleted"})
}

func (h *AllowlistHandler) writeMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAllowlistEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidIPAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateAddress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSelfLockout):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
