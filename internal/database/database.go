// Package database opens the catalog's SQLite store. Schema migration
// happens later, during route registration, so callers get a bare handle.
package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open opens (creating if absent) the SQLite database at the given path.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", dbPath, err)
	}

	return db, nil
}
