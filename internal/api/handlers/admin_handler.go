package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/services"
)

// AdminHandler serves the dashboard aggregates and audit views.
type AdminHandler struct {
	audit      *services.AuditService
	users      *services.UserService
	catalog    *services.CatalogService
	accessReqs *services.AccessRequestService
	movieReqs  *services.MovieRequestService
}

func NewAdminHandler(audit *services.AuditService, users *services.UserService, catalog *services.CatalogService, accessReqs *services.AccessRequestService, movieReqs *services.MovieRequestService) *AdminHandler {
	return &AdminHandler{
		audit:      audit,
		users:      users,
		catalog:    catalog,
		accessReqs: accessReqs,
		movieReqs:  movieReqs,
	}
}

// Stats returns the dashboard counters. Individual failures zero their
// counter rather than failing the whole dashboard.
func (h *AdminHandler) Stats(c *gin.Context) {
	totalUsers, adminUsers, _ := h.users.Counts()
	pendingAccess, _ := h.accessReqs.PendingCount()
	pendingMovies, _ := h.movieReqs.PendingCount()

	var totalMovies int
	if movies, err := h.catalog.All(); err == nil {
		totalMovies = len(movies)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":             totalUsers,
		"admin_users":             adminUsers,
		"total_movies":            totalMovies,
		"pending_access_requests": pendingAccess,
		"pending_movie_requests":  pendingMovies,
	})
}

// Logs returns recent admin audit entries.
func (h *AdminHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.audit.RecentAdminLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load admin logs"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Catalog returns every catalog entry for the admin content table.
func (h *AdminHandler) Catalog(c *gin.Context) {
	movies, err := h.catalog.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}
	c.JSON(http.StatusOK, movies)
}
