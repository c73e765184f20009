package models

import (
	"time"
)

// AccessRequest statuses. A request is pending until an admin processes it;
// approved and rejected are terminal.
const (
	AccessRequestPending  = "pending"
	AccessRequestApproved = "approved"
	AccessRequestRejected = "rejected"
)

// AccessRequest is a self-service ask from a non-allowlisted address.
// At most one pending request should exist per address; the check is
// read-then-write, so concurrent submissions can race past it.
type AccessRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	IPAddress   string     `json:"ip_address" gorm:"index"`
	Name        string     `json:"name,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status" gorm:"default:'pending';index"`
	RequestedAt time.Time  `json:"requested_at" gorm:"autoCreateTime"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *uint      `json:"processed_by,omitempty"`
}
