package models

import "time"

// Category groups wallpapers for browsing. It corresponds to the
// 'categories' table.
type Category struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null;unique" json:"name"`
	Slug        string  `gorm:"not null;uniqueIndex" json:"slug"`
	Description *string `gorm:"" json:"description,omitempty"` // Nullable
	ImagePath   *string `gorm:"" json:"image_path,omitempty"`  // Nullable, storage key
	IsActive    bool    `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Wallpapers []Wallpaper `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"wallpapers,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
