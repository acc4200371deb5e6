package models

import "time"

// Download records a single successful download event. Rows are append-only:
// they are never mutated and disappear only via cascade when the wallpaper or
// user is deleted. UserID is nil for anonymous downloads.
type Download struct {
	ID     uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID *uint `gorm:"index" json:"user_id,omitempty"` // Nullable
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	WallpaperID uint      `gorm:"not null;index" json:"wallpaper_id"`
	Wallpaper   Wallpaper `gorm:"foreignKey:WallpaperID" json:"-"`

	IPAddress string  `gorm:"not null" json:"ip_address"`
	UserAgent *string `gorm:"" json:"user_agent,omitempty"` // Nullable

	// snapshot of the wallpaper at download time
	Resolution string `gorm:"" json:"resolution,omitempty"`
	FileSize   int64  `gorm:"" json:"file_size,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Download) TableName() string {
	return "downloads"
}
