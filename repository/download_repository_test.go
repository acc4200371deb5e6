package repository

import (
	"testing"

	"github.com/vision4k/vision4k-backend/models"
)

func TestDownloadCreateAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDownloadRepository(db)
	user := seedUser(t, db, "dl@example.com")
	cat := seedCategory(t, db, "Nature", "nature")
	w := seedWallpaper(t, db, models.Wallpaper{Title: "Fetched", CategoryID: cat.ID, UserID: user.ID})

	t.Run("authenticated download", func(t *testing.T) {
		err := repo.Create(&models.Download{
			UserID:      &user.ID,
			WallpaperID: w.ID,
			IPAddress:   "203.0.113.9",
			Resolution:  "1920x1080",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("anonymous download has no user", func(t *testing.T) {
		err := repo.Create(&models.Download{
			WallpaperID: w.ID,
			IPAddress:   "203.0.113.10",
			Resolution:  "1920x1080",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		var row models.Download
		if err := db.Where("ip_address = ?", "203.0.113.10").First(&row).Error; err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if row.UserID != nil {
			t.Error("Expected anonymous row to carry no user ID")
		}
	})

	count, err := repo.CountByWallpaper(w.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 download rows, got %d", count)
	}
}
