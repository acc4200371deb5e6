package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/models"
)

// FavoriteRepository handles favorite membership rows
type FavoriteRepository struct {
	DB *gorm.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{DB: db}
}

// isUniqueViolation detects a duplicate-key insert without depending on a
// driver-specific error type.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Toggle flips the favorited state for (user, wallpaper). Returns true when
// the row was added, false when it was removed. A duplicate-insert race is
// settled by the unique index and reported as "added".
func (r *FavoriteRepository) Toggle(userID, wallpaperID uint) (bool, error) {
	result := r.DB.Where("user_id = ? AND wallpaper_id = ?", userID, wallpaperID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove favorite (%d, %d): %w", userID, wallpaperID, result.Error)
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	fav := models.Favorite{UserID: userID, WallpaperID: wallpaperID}
	if err := r.DB.Create(&fav).Error; err != nil {
		if isUniqueViolation(err) {
			// concurrent toggle won the insert; state is favorited either way
			return true, nil
		}
		return false, fmt.Errorf("failed to add favorite (%d, %d): %w", userID, wallpaperID, err)
	}
	return true, nil
}

// Exists reports whether a favorite row is present for (user, wallpaper)
func (r *FavoriteRepository) Exists(userID, wallpaperID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Favorite{}).
		Where("user_id = ? AND wallpaper_id = ?", userID, wallpaperID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite (%d, %d): %w", userID, wallpaperID, err)
	}
	return count > 0, nil
}

// FilterFavorited returns, for a candidate set of wallpaper IDs, the subset
// the user has favorited. One query regardless of page size.
func (r *FavoriteRepository) FilterFavorited(userID uint, wallpaperIDs []uint) (map[uint]bool, error) {
	favorited := make(map[uint]bool, len(wallpaperIDs))
	if len(wallpaperIDs) == 0 {
		return favorited, nil
	}

	var ids []uint
	err := r.DB.Model(&models.Favorite{}).
		Where("user_id = ? AND wallpaper_id IN ?", userID, wallpaperIDs).
		Pluck("wallpaper_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to filter favorites for user %d: %w", userID, err)
	}
	for _, id := range ids {
		favorited[id] = true
	}
	return favorited, nil
}

// ListWallpapersByUser returns the user's favorited wallpapers, most recent
// favorite first. Inactive wallpapers stay hidden here like everywhere else.
func (r *FavoriteRepository) ListWallpapersByUser(userID uint) ([]models.Wallpaper, error) {
	var wallpapers []models.Wallpaper
	err := r.DB.
		Joins("JOIN favorites ON favorites.wallpaper_id = wallpapers.id").
		Where("favorites.user_id = ? AND wallpapers.is_active = ?", userID, true).
		Preload("Category").
		Preload("User").
		Order("favorites.created_at DESC").
		Find(&wallpapers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %d: %w", userID, err)
	}
	return wallpapers, nil
}
