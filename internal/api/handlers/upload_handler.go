package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/models"
	"github.com/reelhaven/reelhaven/internal/services"
	"github.com/reelhaven/reelhaven/internal/storage"
	"github.com/reelhaven/reelhaven/internal/thumbnail"
)

// UploadHandler covers the admin content pipeline: uploading videos,
// deleting entries and regenerating thumbnails. File placement happens
// before the database insert; a failed insert triggers compensating file
// cleanup since there is no cross-system transaction.
type UploadHandler struct {
	catalog   *services.CatalogService
	store     *storage.Store
	generator *thumbnail.Generator
	audit     *services.AuditService
}

func NewUploadHandler(catalog *services.CatalogService, store *storage.Store, generator *thumbnail.Generator, audit *services.AuditService) *UploadHandler {
	return &UploadHandler{catalog: catalog, store: store, generator: generator, audit: audit}
}

// Upload ingests a video with its metadata and an optional custom
// thumbnail. When no thumbnail is supplied one is extracted from the video.
func (h *UploadHandler) Upload(c *gin.Context) {
	video, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A video file is required"})
		return
	}
	if !storage.AllowedFile(video.Filename, storage.AllowedVideoExtensions) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported video format"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	isSeries := c.PostForm("is_series") == "true"
	seriesName := ""
	season, episode := 0, 0
	if isSeries {
		seriesName = c.PostForm("series_name")
		season, _ = strconv.Atoi(c.PostForm("season_number"))
		episode, _ = strconv.Atoi(c.PostForm("episode_number"))
		if seriesName == "" || season < 1 || episode < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Series uploads need a series name, season and episode"})
			return
		}
	}

	now := time.Now()
	filename := storage.VideoFilename(video.Filename, seriesName, season, episode, now)
	relPath, err := h.store.SaveVideo(video, filename, seriesName)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to store video")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store video"})
		return
	}

	thumbFile, autoThumb, err := h.placeThumbnail(c, relPath, seriesName, season, episode, now)
	if err != nil {
		h.store.Cleanup(relPath, "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store thumbnail"})
		return
	}

	movie := &models.Movie{
		Title:         title,
		Description:   c.PostForm("description"),
		Genre:         c.PostForm("genre"),
		VideoFile:     relPath,
		ThumbnailFile: thumbFile,
		AutoThumbnail: autoThumb,
		IsSeries:      isSeries,
		SeriesName:    seriesName,
		EpisodeTitle:  c.PostForm("episode_title"),
	}
	if isSeries {
		movie.SeasonNumber = &season
		movie.EpisodeNumber = &episode
	}
	if year, err := strconv.Atoi(c.PostForm("release_year")); err == nil && year > 0 {
		movie.ReleaseYear = &year
	}
	if d, err := strconv.Atoi(c.PostForm("duration")); err == nil && d > 0 {
		movie.Duration = &d
	}

	if err := h.catalog.Create(movie); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to save catalog entry, cleaning up files")
		h.store.Cleanup(relPath, thumbFile)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save catalog entry"})
		return
	}

	adminID := middleware.UserID(c)
	h.audit.LogAdmin(&adminID, clientIP(c), "Uploaded '"+title+"'", true)
	c.JSON(http.StatusCreated, movie)
}

// placeThumbnail stores a custom thumbnail when one was uploaded, otherwise
// extracts a frame from the stored video.
func (h *UploadHandler) placeThumbnail(c *gin.Context, videoRelPath, seriesName string, season, episode int, now time.Time) (filename string, auto bool, err error) {
	if custom, ferr := c.FormFile("thumbnail"); ferr == nil {
		if !storage.AllowedFile(custom.Filename, storage.AllowedImageExtensions) {
			return "", false, errors.New("unsupported thumbnail format")
		}
		filename = storage.ThumbnailFilename("custom", seriesName, season, episode, now)
		if err := h.store.SaveThumbnail(custom, filename); err != nil {
			return "", false, err
		}
		return filename, false, nil
	}

	filename = storage.ThumbnailFilename("thumb", seriesName, season, episode, now)
	if _, err := h.generator.Generate(h.store.VideoPath(videoRelPath), h.store.ThumbnailPath(filename)); err != nil {
		return "", false, err
	}
	return filename, true, nil
}

// Delete removes a catalog entry and its files.
func (h *UploadHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	movie, err := h.catalog.Delete(id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to delete catalog entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete catalog entry"})
		return
	}

	// Files go after the row; an orphaned file beats a dangling row.
	if err := h.store.RemoveVideo(movie.VideoFile); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("Failed to remove video file")
	}
	if err := h.store.RemoveThumbnail(movie.ThumbnailFile); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("Failed to remove thumbnail file")
	}

	adminID := middleware.UserID(c)
	h.audit.LogAdmin(&adminID, clientIP(c), "Deleted '"+movie.Title+"'", true)
	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted"})
}

// RegenerateThumbnail re-extracts a frame for an existing entry, replacing
// whatever thumbnail it had.
func (h *UploadHandler) RegenerateThumbnail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	movie, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load movie"})
		return
	}

	// Custom uploads are the owner's choice; only system-generated
	// thumbnails may be replaced.
	if movie.ThumbnailFile != "" && !movie.AutoThumbnail {
		c.JSON(http.StatusConflict, gin.H{"error": "Movie has a custom thumbnail"})
		return
	}

	season, episode := 0, 0
	if movie.SeasonNumber != nil {
		season = *movie.SeasonNumber
	}
	if movie.EpisodeNumber != nil {
		episode = *movie.EpisodeNumber
	}
	filename := storage.ThumbnailFilename("thumb", movie.SeriesName, season, episode, time.Now())
	isFrame, err := h.generator.Generate(h.store.VideoPath(movie.VideoFile), h.store.ThumbnailPath(filename))
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Failed to regenerate thumbnail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate thumbnail"})
		return
	}

	old := movie.ThumbnailFile
	if err := h.catalog.UpdateThumbnail(movie.ID, filename, true); err != nil {
		h.store.Cleanup("", filename)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update thumbnail"})
		return
	}
	if old != "" && old != filename {
		_ = h.store.RemoveThumbnail(old)
	}

	c.JSON(http.StatusOK, gin.H{"thumbnail_file": filename, "is_video_frame": isFrame})
}
