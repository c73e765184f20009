package models

import (
	"time"
)

// AllowlistEntry is one network address permitted past the access gate.
// Entries never expire; admins toggle them active/inactive instead.
type AllowlistEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UUID        string    `json:"uuid" gorm:"uniqueIndex"`
	IPAddress   string    `json:"ip_address" gorm:"uniqueIndex"`
	Description string    `json:"description"`
	AddedBy     *uint     `json:"added_by,omitempty"` // nil for seeded defaults and approvals of anonymous requests
	Active      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"added_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
