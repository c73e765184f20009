package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/services"
)

// AccessRequestHandler serves both sides of the access-request workflow:
// the unauthenticated escape routes a blocked client uses to ask for entry,
// and the admin routes that process the queue.
type AccessRequestHandler struct {
	requests *services.AccessRequestService
	notifier *services.NotifierService
}

func NewAccessRequestHandler(requests *services.AccessRequestService, notifier *services.NotifierService) *AccessRequestHandler {
	return &AccessRequestHandler{requests: requests, notifier: notifier}
}

type submitAccessRequest struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Submit records an access request for the caller's resolved address. The
// address comes from the gate, never from the request body: a client cannot
// request access on behalf of another address.
func (h *AccessRequestHandler) Submit(c *gin.Context) {
	var req submitAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ip := clientIP(c)
	created, err := h.requests.Submit(ip, req.Name, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyAllowlisted):
			c.JSON(http.StatusConflict, gin.H{"error": "This IP address already has access"})
		case errors.Is(err, services.ErrPendingRequestExists):
			c.JSON(http.StatusConflict, gin.H{"error": "An access request for this IP address is already pending"})
		case errors.Is(err, services.ErrInvalidIPAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not determine a valid client address"})
		default:
			middleware.GetRequestLogger(c).WithError(err).Error("Failed to submit access request")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit access request"})
		}
		return
	}

	h.notifier.Notify("New access request", "Address "+created.IPAddress+" requested access")
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Access request submitted. An administrator will review it.",
		"ip_address": created.IPAddress,
	})
}

// Status lets a blocked client poll whether its address has a pending
// request. Escape route, so it carries no request details.
func (h *AccessRequestHandler) Status(c *gin.Context) {
	ip := clientIP(c)
	c.JSON(http.StatusOK, gin.H{
		"ip_address":          ip,
		"has_pending_request": h.requests.HasPending(ip),
	})
}

// ListPending returns the admin review queue, oldest first.
func (h *AccessRequestHandler) ListPending(c *gin.Context) {
	rows, err := h.requests.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list access requests"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// List returns recent requests of any status.
func (h *AccessRequestHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.requests.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list access requests"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AccessRequestHandler) Approve(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	req, reused, err := h.requests.Approve(id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrRequestNotPending) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to approve access request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve access request"})
		return
	}

	message := "Request approved and address added to the allowlist"
	if reused {
		message = "Request approved; address was already on the allowlist"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "request": req})
}

func (h *AccessRequestHandler) Reject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	req, err := h.requests.Reject(id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrRequestNotPending) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to reject access request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject access request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected", "request": req})
}

// pathID parses the numeric :id path parameter.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
