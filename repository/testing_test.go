package repository

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/database"
	"github.com/vision4k/vision4k-backend/models"
)

// setupTestDB opens a throwaway sqlite database with the full schema applied.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Unexpected error opening test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("Unexpected error migrating test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Name:               "Test User",
		Email:              email,
		PasswordHash:       "x",
		Role:               models.RoleAdmin,
		DailyDownloadLimit: 10,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Unexpected error seeding user: %v", err)
	}
	return &user
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug, IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Unexpected error seeding category: %v", err)
	}
	return &category
}

func seedWallpaper(t *testing.T, db *gorm.DB, w models.Wallpaper) *models.Wallpaper {
	t.Helper()
	if w.Title == "" {
		w.Title = "Untitled"
	}
	if w.ImagePath == "" {
		w.ImagePath = "wallpapers/test.jpg"
	}
	if w.Resolution == "" {
		w.Resolution = "1920x1080"
	}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("Unexpected error seeding wallpaper: %v", err)
	}
	return &w
}
