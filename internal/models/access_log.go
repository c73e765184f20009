package models

import (
	"time"
)

// AccessLog records general access events: logins, blocked gate attempts,
// request submissions. Append-only.
type AccessLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	Action    string    `json:"action"`
	Success   bool      `json:"success" gorm:"default:true"`
	CreatedAt time.Time `json:"access_time" gorm:"index"`
}

// AdminAccessLog records privileged operations performed by admins.
// Append-only.
type AdminAccessLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	Action    string    `json:"action"`
	Success   bool      `json:"success" gorm:"default:true"`
	CreatedAt time.Time `json:"access_time" gorm:"index"`
}
