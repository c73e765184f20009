package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/clientip"
	"github.com/reelhaven/reelhaven/internal/models"
)

var (
	ErrAllowlistEntryNotFound = errors.New("allowlist entry not found")
	ErrInvalidIPAddress       = errors.New("invalid IP address")
	ErrDuplicateAddress       = errors.New("IP address already in allowlist")
	// ErrSelfLockout guards admins from removing their own access.
	ErrSelfLockout = errors.New("cannot deactivate or remove your own current IP address")
)

// AllowlistService manages the set of addresses permitted past the access
// gate. Mutations take the acting admin's resolved address so the entry that
// keeps the admin in can never be switched off.
type AllowlistService struct {
	db *gorm.DB
}

func NewAllowlistService(db *gorm.DB) *AllowlistService {
	return &AllowlistService{db: db}
}

// ActiveAddresses returns the set of currently active addresses. An empty or
// freshly migrated store yields an empty set, never an error, so the gate on
// a new deployment fails open instead of crashing.
func (s *AllowlistService) ActiveAddresses() (map[string]bool, error) {
	var addresses []string
	err := s.db.Model(&models.AllowlistEntry{}).
		Where("active = ?", true).
		Pluck("ip_address", &addresses).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		set[addr] = true
	}
	return set, nil
}

// IsAllowed reports whether the address has an active allowlist entry.
func (s *AllowlistService) IsAllowed(address string) (bool, error) {
	var count int64
	err := s.db.Model(&models.AllowlistEntry{}).
		Where("ip_address = ? AND active = ?", address, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EntryRow is an allowlist entry joined with the creating admin's username.
type EntryRow struct {
	models.AllowlistEntry
	AddedByUsername string `json:"added_by_username"`
}

// List returns all entries, newest first, with creator usernames.
func (s *AllowlistService) List() ([]EntryRow, error) {
	var rows []EntryRow
	err := s.db.Model(&models.AllowlistEntry{}).
		Select("allowlist_entries.*, users.username AS added_by_username").
		Joins("LEFT JOIN users ON users.id = allowlist_entries.added_by").
		Order("allowlist_entries.created_at desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add creates a new active entry for the given address.
func (s *AllowlistService) Add(address, description string, addedBy *uint) (*models.AllowlistEntry, error) {
	address = strings.TrimSpace(address)
	if !clientip.IsValid(address) {
		return nil, ErrInvalidIPAddress
	}

	var count int64
	if err := s.db.Model(&models.AllowlistEntry{}).Where("ip_address = ?", address).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateAddress
	}

	entry := models.AllowlistEntry{
		UUID:        uuid.New().String(),
		IPAddress:   address,
		Description: description,
		AddedBy:     addedBy,
		Active:      true,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert ensures an active entry exists for the address. Used by access
// request approval; idempotent. Returns true when the address was already
// present.
func (s *AllowlistService) Upsert(address, description string, addedBy *uint) (existed bool, err error) {
	var entry models.AllowlistEntry
	err = s.db.Where("ip_address = ?", address).First(&entry).Error
	if err == nil {
		if !entry.Active {
			err = s.db.Model(&entry).Update("active", true).Error
		}
		return true, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	_, err = s.Add(address, description, addedBy)
	return false, err
}

// Update edits an entry's address, description and active flag. actorIP is
// the acting admin's resolved address; turning off or re-addressing the
// entry that matches it is refused.
func (s *AllowlistService) Update(id uint, address, description string, active bool, actorIP string) error {
	address = strings.TrimSpace(address)
	if !clientip.IsValid(address) {
		return ErrInvalidIPAddress
	}

	entry, err := s.getByID(id)
	if err != nil {
		return err
	}

	// Self-lockout guard: the admin's own entry must stay active and keep
	// its address.
	if entry.IPAddress == actorIP && (!active || address != actorIP) {
		return ErrSelfLockout
	}
	if address == actorIP && !active {
		return ErrSelfLockout
	}

	var count int64
	if err := s.db.Model(&models.AllowlistEntry{}).
		Where("ip_address = ? AND id <> ?", address, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateAddress
	}

	return s.db.Model(entry).Updates(map[string]interface{}{
		"ip_address":  address,
		"description": description,
		"active":      active,
	}).Error
}

// Toggle flips an entry's active flag, refusing to deactivate the acting
// admin's own entry.
func (s *AllowlistService) Toggle(id uint, actorIP string) (*models.AllowlistEntry, error) {
	entry, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if entry.Active && entry.IPAddress == actorIP {
		return nil, ErrSelfLockout
	}

	if err := s.db.Model(entry).Update("active", !entry.Active).Error; err != nil {
		return nil, err
	}
	entry.Active = !entry.Active
	return entry, nil
}

// Delete removes an entry, refusing to delete the acting admin's own entry.
func (s *AllowlistService) Delete(id uint, actorIP string) (*models.AllowlistEntry, error) {
	entry, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	if entry.IPAddress == actorIP {
		return nil, ErrSelfLockout
	}

	if err := s.db.Delete(&models.AllowlistEntry{}, id).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// EnsureDefaults seeds loopback entries when the allowlist is empty so a
// fresh deployment is reachable from the host it runs on.
func (s *AllowlistService) EnsureDefaults() error {
	var count int64
	if err := s.db.Model(&models.AllowlistEntry{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.AllowlistEntry{
		{UUID: uuid.New().String(), IPAddress: "127.0.0.1", Description: "Localhost IPv4", Active: true},
		{UUID: uuid.New().String(), IPAddress: "::1", Description: "Localhost IPv6", Active: true},
	}
	return s.db.Create(&defaults).Error
}

func (s *AllowlistService) getByID(id uint) (*models.AllowlistEntry, error) {
	var entry models.AllowlistEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllowlistEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}
