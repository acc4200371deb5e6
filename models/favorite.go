package models

import "time"

// Favorite marks a wallpaper as favorited by a user. Row existence is the
// sole signal of the favorited state; the (user, wallpaper) pair is unique at
// the database level so a toggle race settles in the store, not in code.
type Favorite struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint `gorm:"not null;uniqueIndex:idx_user_wallpaper" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	WallpaperID uint      `gorm:"not null;uniqueIndex:idx_user_wallpaper" json:"wallpaper_id"`
	Wallpaper   Wallpaper `gorm:"foreignKey:WallpaperID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Favorite) TableName() string {
	return "favorites"
}
