package models

import (
	"time"
)

// MovieRequest statuses. Pending requests can be approved, rejected or marked
// uploaded by an admin; all three are terminal.
const (
	MovieRequestPending  = "pending"
	MovieRequestApproved = "approved"
	MovieRequestRejected = "rejected"
	MovieRequestUploaded = "uploaded"
)

// MovieRequest is a user's ask for content to be added to the catalog.
type MovieRequest struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"index"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	RequestType    string     `json:"request_type" gorm:"default:'movie'"` // "movie" or "series"
	Genre          string     `json:"genre"`
	ReleaseYear    *int       `json:"release_year,omitempty"`
	SeriesName     string     `json:"series_name,omitempty"`
	SeasonNumber   *int       `json:"season_number,omitempty"`
	EpisodeNumber  *int       `json:"episode_number,omitempty"`
	IMDBLink       string     `json:"imdb_link,omitempty"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
	Status         string     `json:"status" gorm:"default:'pending';index"`
	AdminNotes     string     `json:"admin_notes,omitempty"`
	RequestedAt    time.Time  `json:"requested_at" gorm:"autoCreateTime"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	ProcessedBy    *uint      `json:"processed_by,omitempty"`
}
