package models

import (
	"time"
)

// Movie is a single catalog entry: either a standalone movie or one episode
// of a series. Episodes share a SeriesName and carry season/episode numbers.
type Movie struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"index"`
	Description   string    `json:"description"`
	Genre         string    `json:"genre"`
	Duration      *int      `json:"duration,omitempty"` // minutes
	ReleaseYear   *int      `json:"release_year,omitempty"`
	VideoFile     string    `json:"video_file"` // path relative to the video dir, may include a series folder
	ThumbnailFile string    `json:"thumbnail_file"`
	AutoThumbnail bool      `json:"auto_generated_thumb" gorm:"default:false"` // generated by the system rather than uploaded
	IsSeries      bool      `json:"is_series" gorm:"default:false;index"`
	SeriesName    string    `json:"series_name,omitempty" gorm:"index"`
	SeasonNumber  *int      `json:"season_number,omitempty"`
	EpisodeNumber *int      `json:"episode_number,omitempty"`
	EpisodeTitle  string    `json:"episode_title,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// SeriesSummary is an aggregated view of one series for the catalog grid.
type SeriesSummary struct {
	SeriesName      string    `json:"series_name"`
	EpisodeCount    int       `json:"episode_count"`
	FirstUploadedAt time.Time `json:"first_uploaded_at"`
	ThumbnailFile   string    `json:"thumbnail_file"`
}
