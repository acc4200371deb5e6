package repository

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/database"
	"github.com/vision4k/vision4k-backend/models"
)

const defaultTrendingDays = 7

// WallpaperRepository handles database operations for Wallpaper entities
type WallpaperRepository struct {
	DB *gorm.DB
}

// NewWallpaperRepository creates a new instance of WallpaperRepository
func NewWallpaperRepository(db *gorm.DB) *WallpaperRepository {
	return &WallpaperRepository{DB: db}
}

// Create inserts a new wallpaper record
func (r *WallpaperRepository) Create(wallpaper *models.Wallpaper) error {
	if err := r.DB.Create(wallpaper).Error; err != nil {
		return fmt.Errorf("failed to create wallpaper %s: %w", wallpaper.Title, err)
	}
	return nil
}

// GetByID retrieves a wallpaper by its ID regardless of active flag
func (r *WallpaperRepository) GetByID(id uint) (*models.Wallpaper, error) {
	var wallpaper models.Wallpaper
	err := r.DB.Preload("Category").Preload("User").First(&wallpaper, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get wallpaper by ID %d: %w", id, err)
	}
	return &wallpaper, nil
}

// GetActiveByID retrieves a wallpaper by ID only when it is publicly visible.
// Inactive wallpapers are indistinguishable from missing ones on this path.
func (r *WallpaperRepository) GetActiveByID(id uint) (*models.Wallpaper, error) {
	var wallpaper models.Wallpaper
	err := r.DB.Preload("Category").Preload("User").
		Where("is_active = ?", true).First(&wallpaper, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get active wallpaper by ID %d: %w", id, err)
	}
	return &wallpaper, nil
}

// buildPredicate assembles the squirrel condition set for a listing.
func buildPredicate(opts ListOptions) sq.And {
	cond := sq.And{}

	switch opts.Audience {
	case AudiencePremium:
		cond = append(cond, sq.Eq{"is_active": true}, sq.Eq{"is_premium": true})
	case AudienceTrending:
		days := opts.TrendingDays
		if days <= 0 {
			days = defaultTrendingDays
		}
		since := time.Now().AddDate(0, 0, -days)
		cond = append(cond, sq.Eq{"is_active": true}, sq.GtOrEq{"created_at": since})
	case AudienceAdmin:
		// no visibility predicate
	default:
		cond = append(cond, sq.Eq{"is_active": true})
	}

	if opts.CategoryID != nil {
		cond = append(cond, sq.Eq{"category_id": *opts.CategoryID})
	}
	if opts.FeaturedOnly {
		cond = append(cond, sq.Eq{"is_featured": true})
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		needle := "%" + strings.ToLower(s) + "%"
		cond = append(cond, sq.Or{
			sq.Like{"LOWER(title)": needle},
			sq.Like{"LOWER(COALESCE(description, ''))": needle},
			sq.Like{"LOWER(tags)": needle},
		})
	}

	return cond
}

// orderClause maps the audience and sort key to an ORDER BY expression.
// trending always ranks by popularity score and ignores the sort key.
func orderClause(opts ListOptions) string {
	if opts.Audience == AudienceTrending {
		return "(downloads_count + views_count) DESC, id DESC"
	}
	switch database.NormalizeSortKey(opts.Sort) {
	case database.SortPopular:
		return "downloads_count DESC, id DESC"
	case database.SortName:
		return "title ASC"
	case database.SortOldest:
		return "created_at ASC, id ASC"
	default: // newest
		return "created_at DESC, id DESC"
	}
}

// List produces one page of the filtered, sorted catalog along with its
// pagination metadata.
func (r *WallpaperRepository) List(opts ListOptions) ([]models.Wallpaper, PageInfo, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 24
	}

	predicate, args, err := buildPredicate(opts).ToSql()
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build wallpaper list predicate: %w", err)
	}

	base := r.DB.Model(&models.Wallpaper{})
	if predicate != "" {
		base = base.Where(predicate, args...)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count wallpapers: %w", err)
	}

	var wallpapers []models.Wallpaper
	err = base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("User").
		Order(orderClause(opts)).
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&wallpapers).Error
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list wallpapers: %w", err)
	}

	lastPage := int((total + int64(opts.PerPage) - 1) / int64(opts.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return wallpapers, PageInfo{
		CurrentPage: opts.Page,
		LastPage:    lastPage,
		PerPage:     opts.PerPage,
		Total:       total,
	}, nil
}

// Update applies an administrative partial update
func (r *WallpaperRepository) Update(wallpaperID uint, upd WallpaperUpdate) error {
	updates := map[string]interface{}{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Description != nil {
		if *upd.Description == "" { // allow clearing the description
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *upd.Description
		}
	}
	if upd.CategoryID != nil {
		updates["category_id"] = *upd.CategoryID
	}
	if upd.Tags != nil {
		updates["tags"] = *upd.Tags
	}
	if upd.IsFeatured != nil {
		updates["is_featured"] = *upd.IsFeatured
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}
	if upd.IsPremium != nil {
		updates["is_premium"] = *upd.IsPremium
	}

	if len(updates) == 0 {
		return nil
	}

	result := r.DB.Model(&models.Wallpaper{}).Where("id = ?", wallpaperID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update wallpaper ID %d: %w", wallpaperID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.Wallpaper{}).Where("id = ?", wallpaperID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// SetThumbnailPath records the derived thumbnail key for a wallpaper
func (r *WallpaperRepository) SetThumbnailPath(wallpaperID uint, thumbnailPath *string) error {
	result := r.DB.Model(&models.Wallpaper{}).Where("id = ?", wallpaperID).
		Update("thumbnail_path", thumbnailPath)
	if result.Error != nil {
		return fmt.Errorf("failed to set thumbnail path for wallpaper ID %d: %w", wallpaperID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViews bumps the view counter by exactly one. The increment is a
// single UPDATE expression so concurrent requests never lose updates.
func (r *WallpaperRepository) IncrementViews(wallpaperID uint) error {
	result := r.DB.Model(&models.Wallpaper{}).Where("id = ?", wallpaperID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment views for wallpaper ID %d: %w", wallpaperID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementDownloads bumps the download counter by exactly one, atomically at
// the store like IncrementViews.
func (r *WallpaperRepository) IncrementDownloads(wallpaperID uint) error {
	result := r.DB.Model(&models.Wallpaper{}).Where("id = ?", wallpaperID).
		UpdateColumn("downloads_count", gorm.Expr("downloads_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment downloads for wallpaper ID %d: %w", wallpaperID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPendingDelete soft-deletes the row. The wallpaper vanishes from every
// query path immediately; the storage janitor hard-deletes it once the
// storage objects are confirmed gone.
func (r *WallpaperRepository) MarkPendingDelete(id uint) error {
	result := r.DB.Delete(&models.Wallpaper{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to mark wallpaper ID %d for deletion: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingDelete returns soft-deleted wallpapers awaiting storage cleanup
func (r *WallpaperRepository) ListPendingDelete() ([]models.Wallpaper, error) {
	var wallpapers []models.Wallpaper
	err := r.DB.Unscoped().Where("deleted_at IS NOT NULL").Find(&wallpapers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending-delete wallpapers: %w", err)
	}
	return wallpapers, nil
}

// HardDelete removes a wallpaper row permanently. Download and favorite rows
// go with it via the configured cascades.
func (r *WallpaperRepository) HardDelete(id uint) error {
	result := r.DB.Unscoped().Delete(&models.Wallpaper{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to hard-delete wallpaper ID %d: %w", id, result.Error)
	}
	return nil
}
