package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelhaven/reelhaven/internal/models"
)

func TestMovieRequestService_Submit(t *testing.T) {
	db := setupTestDB(t)
	service := NewMovieRequestService(db)

	t.Run("defaults to movie type", func(t *testing.T) {
		req, err := service.Submit(1, MovieRequestInput{Title: "Blade Runner"})
		assert.NoError(t, err)
		assert.Equal(t, models.MovieRequestPending, req.Status)
		assert.Equal(t, "movie", req.RequestType)
	})

	t.Run("series request keeps type", func(t *testing.T) {
		one := 1
		req, err := service.Submit(1, MovieRequestInput{
			Title:        "The Expanse",
			RequestType:  "series",
			SeriesName:   "The Expanse",
			SeasonNumber: &one,
		})
		assert.NoError(t, err)
		assert.Equal(t, "series", req.RequestType)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		_, err := service.Submit(1, MovieRequestInput{Title: "   "})
		assert.ErrorIs(t, err, ErrRequestTitleRequired)
	})

	t.Run("series request without series name rejected", func(t *testing.T) {
		_, err := service.Submit(1, MovieRequestInput{Title: "Severance", RequestType: "series"})
		assert.ErrorIs(t, err, ErrSeriesNameRequired)
	})
}

func TestMovieRequestService_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	service := NewMovieRequestService(db)

	req, err := service.Submit(1, MovieRequestInput{Title: "Dune"})
	assert.NoError(t, err)

	t.Run("approve with notes", func(t *testing.T) {
		approved, err := service.Approve(req.ID, 2, "192.0.2.99", "Will source this week")
		assert.NoError(t, err)
		assert.Equal(t, models.MovieRequestApproved, approved.Status)
		assert.Equal(t, "Will source this week", approved.AdminNotes)
		assert.NotNil(t, approved.ProcessedAt)
	})

	t.Run("audit row carries the admin address", func(t *testing.T) {
		var entry models.AdminAccessLog
		err := db.Where("action = ?", "Movie request 'Dune' marked approved").First(&entry).Error
		assert.NoError(t, err)
		assert.Equal(t, "192.0.2.99", entry.IPAddress)
	})

	t.Run("approve twice fails", func(t *testing.T) {
		_, err := service.Approve(req.ID, 2, "192.0.2.99", "")
		assert.ErrorIs(t, err, ErrMovieRequestNotPending)
	})

	t.Run("mark uploaded after approval", func(t *testing.T) {
		uploaded, err := service.MarkUploaded(req.ID, 2, "192.0.2.99")
		assert.NoError(t, err)
		assert.Equal(t, models.MovieRequestUploaded, uploaded.Status)
	})

	t.Run("reject a different request", func(t *testing.T) {
		other, err := service.Submit(1, MovieRequestInput{Title: "Duplicate of something"})
		assert.NoError(t, err)

		rejected, err := service.Reject(other.ID, 2, "192.0.2.99", "Already in the catalog")
		assert.NoError(t, err)
		assert.Equal(t, models.MovieRequestRejected, rejected.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.Approve(9999, 2, "192.0.2.99", "")
		assert.ErrorIs(t, err, ErrMovieRequestNotFound)
	})
}

func TestMovieRequestService_Lists(t *testing.T) {
	db := setupTestDB(t)
	service := NewMovieRequestService(db)

	mine, err := service.Submit(7, MovieRequestInput{Title: "Mine"})
	assert.NoError(t, err)
	_, err = service.Submit(8, MovieRequestInput{Title: "Theirs"})
	assert.NoError(t, err)

	t.Run("ForUser scopes to owner", func(t *testing.T) {
		reqs, err := service.ForUser(7)
		assert.NoError(t, err)
		assert.Len(t, reqs, 1)
		assert.Equal(t, mine.ID, reqs[0].ID)
	})

	t.Run("List returns all with pending first", func(t *testing.T) {
		_, err := service.Reject(mine.ID, 1, "192.0.2.99", "")
		assert.NoError(t, err)

		rows, err := service.List()
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, models.MovieRequestPending, rows[0].Status)
	})

	t.Run("PendingCount", func(t *testing.T) {
		count, err := service.PendingCount()
		assert.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}
