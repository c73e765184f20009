package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/clientip"
	"github.com/reelhaven/reelhaven/internal/metrics"
	"github.com/reelhaven/reelhaven/internal/models"
)

var (
	// ErrAlreadyAllowlisted rejects requests for addresses that already
	// have an active allowlist entry.
	ErrAlreadyAllowlisted = errors.New("IP address is already allowlisted")
	// ErrPendingRequestExists rejects duplicate pending requests for one
	// address. The check is read-then-write; see HasPending.
	ErrPendingRequestExists = errors.New("access request already pending for this IP address")
	// ErrRequestNotPending covers both a missing request and one that was
	// already processed. The two are deliberately not distinguished.
	ErrRequestNotPending = errors.New("request not found or already processed")
)

// AccessRequestService runs the self-service access-request workflow:
// unrecognized addresses submit a justification, admins approve (which
// promotes the address into the allowlist) or reject.
type AccessRequestService struct {
	db        *gorm.DB
	allowlist *AllowlistService
	audit     *AuditService
}

func NewAccessRequestService(db *gorm.DB) *AccessRequestService {
	return &AccessRequestService{
		db:        db,
		allowlist: NewAllowlistService(db),
		audit:     NewAuditService(db),
	}
}

// HasPending reports whether a pending request exists for the address.
// Errors degrade to false: the caller only uses this to annotate the
// access-request surface.
func (s *AccessRequestService) HasPending(address string) bool {
	var count int64
	if err := s.db.Model(&models.AccessRequest{}).
		Where("ip_address = ? AND status = ?", address, models.AccessRequestPending).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Submit creates a pending access request for the address.
//
// The duplicate check reads then writes without a transaction, so two
// concurrent submissions for one address can both pass it and leave two
// pending rows. Approval handles that fine (the second approve reports
// "already processed" on the allowlist side), so the race is accepted
// rather than re-engineered.
func (s *AccessRequestService) Submit(address, name, reason string) (*models.AccessRequest, error) {
	address = strings.TrimSpace(address)
	if !clientip.IsValid(address) {
		return nil, ErrInvalidIPAddress
	}

	allowed, err := s.allowlist.IsAllowed(address)
	if err != nil {
		return nil, fmt.Errorf("check allowlist: %w", err)
	}
	if allowed {
		return nil, ErrAlreadyAllowlisted
	}

	if s.HasPending(address) {
		return nil, ErrPendingRequestExists
	}

	req := models.AccessRequest{
		IPAddress: address,
		Name:      strings.TrimSpace(name),
		Reason:    strings.TrimSpace(reason),
		Status:    models.AccessRequestPending,
	}
	if err := s.db.Create(&req).Error; err != nil {
		return nil, err
	}

	metrics.IncAccessRequestSubmitted()
	requester := req.Name
	if requester == "" {
		requester = "Anonymous"
	}
	s.audit.LogAccess(nil, address, fmt.Sprintf("IP access request submitted by %s", requester), true)

	return &req, nil
}

// Approve transitions a pending request to approved and ensures the address
// has an active allowlist entry. Approving an address already in the
// allowlist succeeds; the reused flag reports it.
func (s *AccessRequestService) Approve(id uint, adminID uint) (req *models.AccessRequest, reused bool, err error) {
	req, err = s.pendingByID(id)
	if err != nil {
		return nil, false, err
	}

	// The allowlist promotion and the status change must land together;
	// an allowlisted address with a still-pending request would pass the
	// gate yet keep showing up in the admin queue.
	description := fmt.Sprintf("Approved request from %s", requesterName(req))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reused, txErr = NewAllowlistService(tx).Upsert(req.IPAddress, description, &adminID)
		if txErr != nil {
			return fmt.Errorf("promote to allowlist: %w", txErr)
		}
		return s.markProcessed(tx, req, models.AccessRequestApproved, adminID)
	})
	if err != nil {
		return nil, false, err
	}
	return req, reused, nil
}

// Reject transitions a pending request to rejected. No allowlist side effect.
func (s *AccessRequestService) Reject(id uint, adminID uint) (*models.AccessRequest, error) {
	req, err := s.pendingByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.markProcessed(s.db, req, models.AccessRequestRejected, adminID); err != nil {
		return nil, err
	}
	return req, nil
}

// RequestRow is an access request joined with the processing admin's username.
type RequestRow struct {
	models.AccessRequest
	ProcessedByUsername string `json:"processed_by_username"`
}

// ListPending returns pending requests, oldest first.
func (s *AccessRequestService) ListPending() ([]RequestRow, error) {
	return s.list(s.db.Where("status = ?", models.AccessRequestPending).Order("access_requests.requested_at asc"))
}

// List returns the most recent requests of any status.
func (s *AccessRequestService) List(limit int) ([]RequestRow, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.list(s.db.Order("access_requests.requested_at desc").Limit(limit))
}

// PendingCount returns the number of pending requests for the admin badge.
func (s *AccessRequestService) PendingCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.AccessRequest{}).
		Where("status = ?", models.AccessRequestPending).
		Count(&count).Error
	return count, err
}

func (s *AccessRequestService) list(query *gorm.DB) ([]RequestRow, error) {
	var rows []RequestRow
	err := query.Model(&models.AccessRequest{}).
		Select("access_requests.*, users.username AS processed_by_username").
		Joins("LEFT JOIN users ON users.id = access_requests.processed_by").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccessRequestService) pendingByID(id uint) (*models.AccessRequest, error) {
	var req models.AccessRequest
	err := s.db.Where("id = ? AND status = ?", id, models.AccessRequestPending).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotPending
		}
		return nil, err
	}
	return &req, nil
}

func (s *AccessRequestService) markProcessed(db *gorm.DB, req *models.AccessRequest, status string, adminID uint) error {
	now := time.Now()
	err := db.Model(req).Updates(map[string]interface{}{
		"status":       status,
		"processed_at": now,
		"processed_by": adminID,
	}).Error
	if err != nil {
		return err
	}
	req.Status = status
	req.ProcessedAt = &now
	req.ProcessedBy = &adminID
	return nil
}

func requesterName(req *models.AccessRequest) string {
	if req.Name == "" {
		return "Anonymous"
	}
	return req.Name
}
