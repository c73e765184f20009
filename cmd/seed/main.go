package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reelhaven/reelhaven/internal/models"
)

func intPtr(v int) *int { return &v }

func main() {
	// Connect to database
	db, err := gorm.Open(sqlite.Open("./data/reelhaven.db"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.MovieRequest{},
		&models.AllowlistEntry{},
		&models.AccessRequest{},
		&models.AccessLog{},
		&models.AdminAccessLog{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Seed demo users
	admin := models.User{UUID: uuid.NewString(), Username: "admin", IsAdmin: true}
	if err := admin.SetPassword("admin123"); err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	viewer := models.User{UUID: uuid.NewString(), Username: "viewer"}
	if err := viewer.SetPassword("viewer123"); err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	for _, u := range []*models.User{&admin, &viewer} {
		if err := db.Where("username = ?", u.Username).FirstOrCreate(u).Error; err != nil {
			log.Fatal("Failed to seed user:", err)
		}
	}
	fmt.Println("✓ Seeded demo users (admin/admin123, viewer/viewer123)")

	// Seed allowlist defaults
	entries := []models.AllowlistEntry{
		{UUID: uuid.NewString(), IPAddress: "127.0.0.1", Description: "Localhost IPv4", Active: true},
		{UUID: uuid.NewString(), IPAddress: "::1", Description: "Localhost IPv6", Active: true},
	}
	for i := range entries {
		if err := db.Where("ip_address = ?", entries[i].IPAddress).FirstOrCreate(&entries[i]).Error; err != nil {
			log.Fatal("Failed to seed allowlist entry:", err)
		}
	}
	fmt.Println("✓ Seeded allowlist defaults")

	// Seed demo catalog entries. Video files are placeholders; point the
	// paths at real files under the video dir to make playback work.
	movies := []models.Movie{
		{
			Title:       "Big Buck Bunny",
			Description: "A large rabbit takes on three bullying rodents.",
			Genre:       "Animation",
			Duration:    intPtr(10),
			ReleaseYear: intPtr(2008),
			VideoFile:   "big_buck_bunny.mp4",
		},
		{
			Title:       "Sintel",
			Description: "A young woman searches for her lost dragon companion.",
			Genre:       "Fantasy",
			Duration:    intPtr(15),
			ReleaseYear: intPtr(2010),
			VideoFile:   "sintel.mp4",
		},
		{
			Title:         "Elephants Dream",
			Description:   "Two characters explore a strange industrial world.",
			Genre:         "Sci-Fi",
			Duration:      intPtr(11),
			ReleaseYear:   intPtr(2006),
			VideoFile:     "Elephants_Dream/Elephants_Dream_S01E01_ep1.mp4",
			IsSeries:      true,
			SeriesName:    "Elephants Dream",
			SeasonNumber:  intPtr(1),
			EpisodeNumber: intPtr(1),
			EpisodeTitle:  "The Machine",
		},
	}
	for i := range movies {
		if err := db.Where("title = ?", movies[i].Title).FirstOrCreate(&movies[i]).Error; err != nil {
			log.Fatal("Failed to seed movie:", err)
		}
	}
	fmt.Println("✓ Seeded demo catalog")
}
