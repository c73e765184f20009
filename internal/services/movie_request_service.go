package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/models"
)

var (
	ErrRequestTitleRequired   = errors.New("title is required")
	ErrSeriesNameRequired     = errors.New("series name is required for series requests")
	ErrMovieRequestNotFound   = errors.New("movie request not found")
	ErrMovieRequestNotPending = errors.New("movie request is not pending")
)

// MovieRequestService handles viewer wishlist requests for titles the
// catalog does not carry yet.
type MovieRequestService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewMovieRequestService(db *gorm.DB) *MovieRequestService {
	return &MovieRequestService{db: db, audit: NewAuditService(db)}
}

// MovieRequestInput carries the user-supplied fields of a new request.
type MovieRequestInput struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	RequestType    string `json:"request_type"`
	Genre          string `json:"genre"`
	ReleaseYear    *int   `json:"release_year"`
	SeriesName     string `json:"series_name"`
	SeasonNumber   *int   `json:"season_number"`
	EpisodeNumber  *int   `json:"episode_number"`
	IMDBLink       string `json:"imdb_link"`
	AdditionalInfo string `json:"additional_info"`
}

// Submit records a new title request for the given user.
func (s *MovieRequestService) Submit(userID uint, in MovieRequestInput) (*models.MovieRequest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrRequestTitleRequired
	}
	requestType := in.RequestType
	if requestType != "series" {
		requestType = "movie"
	}
	if requestType == "series" && strings.TrimSpace(in.SeriesName) == "" {
		return nil, ErrSeriesNameRequired
	}
	req := &models.MovieRequest{
		UserID:         userID,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		RequestType:    requestType,
		Genre:          strings.TrimSpace(in.Genre),
		ReleaseYear:    in.ReleaseYear,
		SeriesName:     strings.TrimSpace(in.SeriesName),
		SeasonNumber:   in.SeasonNumber,
		EpisodeNumber:  in.EpisodeNumber,
		IMDBLink:       strings.TrimSpace(in.IMDBLink),
		AdditionalInfo: strings.TrimSpace(in.AdditionalInfo),
		Status:         models.MovieRequestPending,
		RequestedAt:    time.Now(),
	}
	if err := s.db.Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// ForUser returns a user's own requests, newest first.
func (s *MovieRequestService) ForUser(userID uint) ([]models.MovieRequest, error) {
	var reqs []models.MovieRequest
	err := s.db.Where("user_id = ?", userID).Order("requested_at desc").Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// MovieRequestRow is a request joined with its requester's username.
type MovieRequestRow struct {
	models.MovieRequest
	Username string `json:"username"`
}

// List returns all requests for the admin view, pending first then newest.
// List returns every pending request followed by the 100 most recently
// processed ones, each annotated with the requester's username.
func (s *MovieRequestService) List() ([]MovieRequestRow, error) {
	base := func() *gorm.DB {
		return s.db.Model(&models.MovieRequest{}).
			Select("movie_requests.*, users.username AS username").
			Joins("LEFT JOIN users ON users.id = movie_requests.user_id")
	}

	var pending []MovieRequestRow
	err := base().
		Where("movie_requests.status = ?", models.MovieRequestPending).
		Order("movie_requests.requested_at desc").
		Scan(&pending).Error
	if err != nil {
		return nil, err
	}

	var processed []MovieRequestRow
	err = base().
		Where("movie_requests.status <> ?", models.MovieRequestPending).
		Order("movie_requests.requested_at desc").
		Limit(100).
		Scan(&processed).Error
	if err != nil {
		return nil, err
	}

	return append(pending, processed...), nil
}

func (s *MovieRequestService) PendingCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.MovieRequest{}).
		Where("status = ?", models.MovieRequestPending).
		Count(&count).Error
	return count, err
}

// Approve moves a pending request to approved with optional admin notes.
func (s *MovieRequestService) Approve(id, adminID uint, adminIP, notes string) (*models.MovieRequest, error) {
	return s.process(id, adminID, adminIP, models.MovieRequestApproved, notes, true)
}

// Reject moves a pending request to rejected with optional admin notes.
func (s *MovieRequestService) Reject(id, adminID uint, adminIP, notes string) (*models.MovieRequest, error) {
	return s.process(id, adminID, adminIP, models.MovieRequestRejected, notes, true)
}

// MarkUploaded flags an approved request as fulfilled. Unlike approval it
// acts on non-pending requests, since upload follows approval.
func (s *MovieRequestService) MarkUploaded(id, adminID uint, adminIP string) (*models.MovieRequest, error) {
	return s.process(id, adminID, adminIP, models.MovieRequestUploaded, "", false)
}

func (s *MovieRequestService) process(id, adminID uint, adminIP, status, notes string, requirePending bool) (*models.MovieRequest, error) {
	var req models.MovieRequest
	if err := s.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieRequestNotFound
		}
		return nil, err
	}
	if requirePending && req.Status != models.MovieRequestPending {
		return nil, ErrMovieRequestNotPending
	}

	now := time.Now()
	req.Status = status
	req.ProcessedAt = &now
	req.ProcessedBy = &adminID
	if notes != "" {
		req.AdminNotes = notes
	}
	if err := s.db.Save(&req).Error; err != nil {
		return nil, err
	}
	s.audit.LogAdmin(&adminID, adminIP, "Movie request '"+req.Title+"' marked "+status, true)
	return &req, nil
}
