package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/models"
)

var ErrMovieNotFound = errors.New("movie not found")

// CatalogService reads and mutates the movie/episode catalog.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Movies returns standalone movies, newest upload first.
func (s *CatalogService) Movies() ([]models.Movie, error) {
	var movies []models.Movie
	err := s.db.Where("is_series = ?", false).Order("uploaded_at desc").Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Series returns one summary row per series, newest series first. The
// representative thumbnail is taken from S01E01 when present.
func (s *CatalogService) Series() ([]models.SeriesSummary, error) {
	var summaries []models.SeriesSummary
	err := s.db.Model(&models.Movie{}).
		Select(`series_name,
			COUNT(*) AS episode_count,
			MIN(uploaded_at) AS first_uploaded_at,
			(SELECT thumbnail_file FROM movies m2
			 WHERE m2.series_name = movies.series_name
			   AND m2.season_number = 1 AND m2.episode_number = 1
			 LIMIT 1) AS thumbnail_file`).
		Where("is_series = ?", true).
		Group("series_name").
		Order("first_uploaded_at desc").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Episodes returns a series' episodes ordered by season, then episode.
func (s *CatalogService) Episodes(seriesName string) ([]models.Movie, error) {
	var episodes []models.Movie
	err := s.db.Where("series_name = ? AND is_series = ?", seriesName, true).
		Order("season_number asc, episode_number asc").
		Find(&episodes).Error
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

// Featured picks the most recent standalone movie that has a thumbnail.
// A nil result with nil error means the catalog has nothing to feature yet.
func (s *CatalogService) Featured() (*models.Movie, error) {
	var movie models.Movie
	err := s.db.Where("is_series = ? AND thumbnail_file <> ''", false).
		Order("uploaded_at desc").
		First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

// Get fetches one catalog entry.
func (s *CatalogService) Get(id uint) (*models.Movie, error) {
	var movie models.Movie
	if err := s.db.First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &movie, nil
}

// All returns every catalog entry for the admin dashboard, newest first.
func (s *CatalogService) All() ([]models.Movie, error) {
	var movies []models.Movie
	if err := s.db.Order("uploaded_at desc").Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

// Create inserts a catalog entry. The caller owns file placement; on error
// the caller is responsible for the compensating file cleanup.
func (s *CatalogService) Create(movie *models.Movie) error {
	return s.db.Create(movie).Error
}

// UpdateThumbnail replaces an entry's thumbnail metadata.
func (s *CatalogService) UpdateThumbnail(id uint, thumbnailFile string, auto bool) error {
	return s.db.Model(&models.Movie{ID: id}).Updates(map[string]interface{}{
		"thumbnail_file": thumbnailFile,
		"auto_thumbnail": auto,
	}).Error
}

// Delete removes a catalog entry and returns the deleted record so the
// caller can remove its files.
func (s *CatalogService) Delete(id uint) (*models.Movie, error) {
	movie, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(&models.Movie{}, id).Error; err != nil {
		return nil, err
	}
	return movie, nil
}
