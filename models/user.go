package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a registered member or administrator.
type User struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"not null"` // "-" means don't include in JSON responses
	AvatarPath   *string `json:"avatar_path,omitempty" gorm:""`
	Role         string  `json:"role" gorm:"not null;default:user"`

	IsPremium        bool       `json:"is_premium" gorm:"not null;default:false"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty" gorm:""`

	// daily download quota bookkeeping
	DailyDownloadLimit int       `json:"daily_download_limit" gorm:"not null;default:10"`
	DownloadsToday     int       `json:"downloads_today" gorm:"not null;default:0"`
	DownloadsResetAt   time.Time `json:"downloads_reset_at" gorm:""`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Wallpapers []Wallpaper `gorm:"foreignKey:UserID" json:"-"`
	Favorites  []Favorite  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user may perform administrative mutations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPremiumActive reports whether the user's premium flag is set and, when an
// expiry is present, still in the future.
func (u *User) IsPremiumActive() bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return u.PremiumExpiresAt.After(time.Now())
}

// downloadsTodayAt returns the effective today counter at the given instant,
// treating a counter from a previous day as reset.
func (u *User) downloadsTodayAt(now time.Time) int {
	ry, rm, rd := u.DownloadsResetAt.Date()
	ny, nm, nd := now.Date()
	if ry != ny || rm != nm || rd != nd {
		return 0
	}
	return u.DownloadsToday
}

// CanDownload is the single download-gating policy: premium users are
// unlimited, everyone else is held to the daily limit. A zero limit means
// unlimited as well.
func (u *User) CanDownload() (bool, string) {
	if u.IsPremiumActive() {
		return true, ""
	}
	if u.DailyDownloadLimit <= 0 {
		return true, ""
	}
	if u.downloadsTodayAt(time.Now()) >= u.DailyDownloadLimit {
		return false, "daily download limit reached"
	}
	return true, ""
}
