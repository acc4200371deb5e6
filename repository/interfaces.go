package repository

import (
	"github.com/vision4k/vision4k-backend/models"
)

// CategoryRepositoryInterface defines the methods for category data operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	ListActive() ([]models.Category, error)
	ListAllAdmin() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Update(categoryID uint, name *string, description *string, isActive *bool) error
	UpdateImagePath(categoryID uint, imagePath *string) error
	Delete(id uint) error
	Stats() ([]CategoryStats, error)
}

// WallpaperRepositoryInterface defines the methods for wallpaper data
// operations, including the filtered catalog listing
type WallpaperRepositoryInterface interface {
	Create(wallpaper *models.Wallpaper) error
	GetByID(id uint) (*models.Wallpaper, error)
	GetActiveByID(id uint) (*models.Wallpaper, error)
	List(opts ListOptions) ([]models.Wallpaper, PageInfo, error)
	Update(wallpaperID uint, upd WallpaperUpdate) error
	SetThumbnailPath(wallpaperID uint, thumbnailPath *string) error
	IncrementViews(wallpaperID uint) error
	IncrementDownloads(wallpaperID uint) error
	MarkPendingDelete(id uint) error
	ListPendingDelete() ([]models.Wallpaper, error)
	HardDelete(id uint) error
}

// DownloadRepositoryInterface defines the methods for download audit rows
type DownloadRepositoryInterface interface {
	Create(download *models.Download) error
	CountByWallpaper(wallpaperID uint) (int64, error)
}

// FavoriteRepositoryInterface defines the methods for favorite membership
type FavoriteRepositoryInterface interface {
	Toggle(userID, wallpaperID uint) (added bool, err error)
	Exists(userID, wallpaperID uint) (bool, error)
	FilterFavorited(userID uint, wallpaperIDs []uint) (map[uint]bool, error)
	ListWallpapersByUser(userID uint) ([]models.Wallpaper, error)
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	RegisterDownload(userID uint) error
}
