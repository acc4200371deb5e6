package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/models"
)

// CategoryRepository handles database operations for Category entities
type CategoryRepository struct {
	DB *gorm.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// Create creates a new category record in the database
func (r *CategoryRepository) Create(category *models.Category) error {
	err := r.DB.Create(category).Error
	if err != nil {
		return fmt.Errorf("failed to create category %s: %w", category.Name, err)
	}
	return nil
}

// ListActive retrieves all active categories, ordered by name
func (r *CategoryRepository) ListActive() ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListAllAdmin retrieves every category including inactive ones
func (r *CategoryRepository) ListAllAdmin() ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list all categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by its ID. Inactive categories stay
// addressable here for administrative views.
func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.DB.First(&category, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by ID %d: %w", id, err)
	}
	return &category, nil
}

// GetBySlug retrieves a category by its slug
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by slug %s: %w", slug, err)
	}
	return &category, nil
}

// Update updates a category's name, description, and active flag. The slug
// is stable once created and never rewritten here.
func (r *CategoryRepository) Update(categoryID uint, name *string, description *string, isActive *bool) error {
	updates := map[string]interface{}{}
	if name != nil && *name != "" {
		updates["name"] = *name
	}
	if description != nil {
		if *description == "" { // allow clearing the description
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *description
		}
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) == 0 {
		return nil
	}

	result := r.DB.Model(&models.Category{}).Where("id = ?", categoryID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update category ID %d: %w", categoryID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// UpdateImagePath sets or clears the category image storage key
func (r *CategoryRepository) UpdateImagePath(categoryID uint, imagePath *string) error {
	result := r.DB.Model(&models.Category{}).Where("id = ?", categoryID).
		Update("image_path", imagePath)
	if result.Error != nil {
		return fmt.Errorf("failed to update image path for category ID %d: %w", categoryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a category by ID. Wallpapers under it are removed by the
// ON DELETE CASCADE foreign key.
func (r *CategoryRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CategoryStats is one row of the administrative category report.
type CategoryStats struct {
	CategoryID     uint   `json:"category_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	WallpaperCount int64  `json:"wallpaper_count"`
	TotalDownloads int64  `json:"total_downloads"`
}

// Stats reports, per active category, the wallpaper count (regardless of the
// wallpapers' active flag) and the aggregate download counter.
func (r *CategoryRepository) Stats() ([]CategoryStats, error) {
	var stats []CategoryStats
	err := r.DB.Model(&models.Category{}).
		Select("categories.id AS category_id, categories.name, categories.slug, "+
			"COUNT(wallpapers.id) AS wallpaper_count, "+
			"COALESCE(SUM(wallpapers.downloads_count), 0) AS total_downloads").
		Joins("LEFT JOIN wallpapers ON wallpapers.category_id = categories.id AND wallpapers.deleted_at IS NULL").
		Where("categories.is_active = ?", true).
		Group("categories.id, categories.name, categories.slug").
		Order("categories.name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute category stats: %w", err)
	}
	return stats, nil
}
