package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/models"
)

// DownloadRepository handles the append-only download audit rows
type DownloadRepository struct {
	DB *gorm.DB
}

// NewDownloadRepository creates a new instance of DownloadRepository
func NewDownloadRepository(db *gorm.DB) *DownloadRepository {
	return &DownloadRepository{DB: db}
}

// Create records one download event. Rows are never updated afterwards.
func (r *DownloadRepository) Create(download *models.Download) error {
	if err := r.DB.Create(download).Error; err != nil {
		return fmt.Errorf("failed to record download for wallpaper %d: %w", download.WallpaperID, err)
	}
	return nil
}

// CountByWallpaper returns the number of audit rows for a wallpaper
func (r *DownloadRepository) CountByWallpaper(wallpaperID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Download{}).
		Where("wallpaper_id = ?", wallpaperID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count downloads for wallpaper %d: %w", wallpaperID, err)
	}
	return count, nil
}
