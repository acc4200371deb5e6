package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Wallpaper is a single catalog entry. ImagePath holds either a storage key
// under the wallpapers namespace or an absolute external URL (seeded sample
// data); media.ParseLocation decides which at the call sites.
type Wallpaper struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string  `gorm:"not null" json:"title"`
	Description   *string `gorm:"" json:"description,omitempty"`    // Nullable
	ImagePath     string  `gorm:"not null" json:"image_path"`       // storage key or external URL
	ThumbnailPath *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable, falls back to ImagePath

	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// comma-separated free text; use TagList to read
	Tags string `gorm:"" json:"tags"`

	FileSize   int64  `gorm:"not null;default:0" json:"file_size"`
	Resolution string `gorm:"not null" json:"resolution"` // "WIDTHxHEIGHT"

	DownloadsCount int64 `gorm:"not null;default:0" json:"downloads_count"`
	ViewsCount     int64 `gorm:"not null;default:0" json:"views_count"`

	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`
	IsActive   bool `gorm:"not null;default:true;index" json:"is_active"`
	IsPremium  bool `gorm:"not null;default:false" json:"is_premium"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// optional EXIF captured at upload time
	CameraMake  *string `gorm:"" json:"camera_make,omitempty"`  // Nullable
	CameraModel *string `gorm:"" json:"camera_model,omitempty"` // Nullable
	TakenAt     *int64  `gorm:"" json:"taken_at,omitempty"`     // Nullable, Unix timestamp

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // doubles as the pending-delete tombstone

	// Relationships
	Downloads []Download `gorm:"foreignKey:WallpaperID;constraint:OnDelete:CASCADE" json:"-"`
	Favorites []Favorite `gorm:"foreignKey:WallpaperID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Wallpaper) TableName() string {
	return "wallpapers"
}

// TagList parses the stored comma-separated tag string, trimming whitespace
// and dropping empty segments. Empty segments are permitted in storage.
func (w *Wallpaper) TagList() []string {
	if strings.TrimSpace(w.Tags) == "" {
		return []string{}
	}
	parts := strings.Split(w.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
