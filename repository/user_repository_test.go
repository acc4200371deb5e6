package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/models"
)

func TestUserCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleUser}
	if err := repo.Create(&user); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail("ada@example.com")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("Unexpected ID %d", got.ID)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := repo.GetByEmail("nobody@example.com")
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.User{Name: "Ada 2", Email: "ada@example.com", PasswordHash: "x"}
		if err := repo.Create(&dup); err == nil {
			t.Error("Expected duplicate email to be rejected")
		}
	})
}

func TestRegisterDownload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	t.Run("increments today's counter", func(t *testing.T) {
		user := seedUser(t, db, "quota@example.com")
		db.Model(user).Updates(map[string]interface{}{
			"downloads_today":    3,
			"downloads_reset_at": time.Now(),
		})

		if err := repo.RegisterDownload(user.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got, _ := repo.GetByID(user.ID)
		if got.DownloadsToday != 4 {
			t.Errorf("Expected 4 downloads today, got %d", got.DownloadsToday)
		}
	})

	t.Run("stale counter resets before incrementing", func(t *testing.T) {
		user := seedUser(t, db, "stale@example.com")
		db.Model(user).Updates(map[string]interface{}{
			"downloads_today":    9,
			"downloads_reset_at": time.Now().AddDate(0, 0, -2),
		})

		if err := repo.RegisterDownload(user.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got, _ := repo.GetByID(user.ID)
		if got.DownloadsToday != 1 {
			t.Errorf("Expected counter reset to 1, got %d", got.DownloadsToday)
		}
		if time.Since(got.DownloadsResetAt) > time.Minute {
			t.Error("Expected reset timestamp to be refreshed")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if err := repo.RegisterDownload(99999); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})
}
