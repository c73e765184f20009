package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/models"
	"github.com/reelhaven/reelhaven/internal/services"
)

type MovieRequestHandler struct {
	requests *services.MovieRequestService
	notifier *services.NotifierService
}

func NewMovieRequestHandler(requests *services.MovieRequestService, notifier *services.NotifierService) *MovieRequestHandler {
	return &MovieRequestHandler{requests: requests, notifier: notifier}
}

func (h *MovieRequestHandler) Submit(c *gin.Context) {
	var in services.MovieRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	req, err := h.requests.Submit(middleware.UserID(c), in)
	if err != nil {
		if errors.Is(err, services.ErrRequestTitleRequired) || errors.Is(err, services.ErrSeriesNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to submit movie request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit movie request"})
		return
	}

	h.notifier.Notify("New movie request", "'"+req.Title+"' was requested")
	c.JSON(http.StatusCreated, req)
}

// Mine returns the authenticated user's own requests.
func (h *MovieRequestHandler) Mine(c *gin.Context) {
	reqs, err := h.requests.ForUser(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movie requests"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *MovieRequestHandler) List(c *gin.Context) {
	rows, err := h.requests.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movie requests"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type processMovieRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func (h *MovieRequestHandler) Approve(c *gin.Context) {
	h.process(c, h.requests.Approve)
}

func (h *MovieRequestHandler) Reject(c *gin.Context) {
	h.process(c, h.requests.Reject)
}

func (h *MovieRequestHandler) MarkUploaded(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	req, err := h.requests.MarkUploaded(id, middleware.UserID(c), clientIP(c))
	if err != nil {
		h.writeProcessError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *MovieRequestHandler) process(c *gin.Context, fn func(id, adminID uint, adminIP, notes string) (*models.MovieRequest, error)) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var body processMovieRequest
	_ = c.ShouldBindJSON(&body) // notes are optional

	req, err := fn(id, middleware.UserID(c), clientIP(c), body.AdminNotes)
	if err != nil {
		h.writeProcessError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *MovieRequestHandler) writeProcessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMovieRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMovieRequestNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to process movie request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process movie request"})
	}
}
