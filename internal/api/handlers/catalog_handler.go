package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/models"
	"github.com/reelhaven/reelhaven/internal/services"
	"github.com/reelhaven/reelhaven/internal/storage"
)

// CatalogHandler serves the viewer-facing catalog: browse pages, playback
// metadata, the video stream itself and thumbnails.
type CatalogHandler struct {
	catalog *services.CatalogService
	store   *storage.Store
}

func NewCatalogHandler(catalog *services.CatalogService, store *storage.Store) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, store: store}
}

// Browse returns the home page payload: featured pick, standalone movies
// and series summaries.
func (h *CatalogHandler) Browse(c *gin.Context) {
	movies, err := h.catalog.Movies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}
	series, err := h.catalog.Series()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}
	featured, err := h.catalog.Featured()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"featured": featured,
		"movies":   movies,
		"series":   series,
	})
}

// Series returns one series' episodes grouped for the detail page.
func (h *CatalogHandler) Series(c *gin.Context) {
	name := c.Param("name")
	episodes, err := h.catalog.Episodes(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load series"})
		return
	}
	if len(episodes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series_name": name, "episodes": episodes})
}

// Watch returns a single entry's playback metadata.
func (h *CatalogHandler) Watch(c *gin.Context) {
	movie, err := h.movieFromPath(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, movie)
}

// Stream serves the video file. http.ServeFile handles Range requests, so
// seeking works in every browser player.
func (h *CatalogHandler) Stream(c *gin.Context) {
	movie, err := h.movieFromPath(c)
	if err != nil {
		return
	}

	path := h.store.VideoPath(movie.VideoFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		middleware.GetRequestLogger(c).WithField("video", movie.VideoFile).Warn("Video file missing on disk")
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}
	http.ServeFile(c.Writer, c.Request, path)
}

// Thumbnail serves a thumbnail by filename. This is a gate escape route, so
// the filename is confined to the thumbnail dir before touching disk.
func (h *CatalogHandler) Thumbnail(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thumbnail name"})
		return
	}

	path := h.store.ThumbnailPath(filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thumbnail not found"})
		return
	}
	c.File(path)
}

func (h *CatalogHandler) movieFromPath(c *gin.Context) (*models.Movie, error) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return nil, err
	}

	movie, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return nil, err
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to load movie")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load movie"})
		return nil, err
	}
	return movie, nil
}
