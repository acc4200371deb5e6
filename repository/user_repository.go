package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/models"
)

// UserRepository handles database operations for User entities
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user record
func (r *UserRepository) Create(user *models.User) error {
	if err := r.DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Update persists changes to a user record
func (r *UserRepository) Update(user *models.User) error {
	if err := r.DB.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user ID %d: %w", user.ID, err)
	}
	return nil
}

// RegisterDownload applies the daily-quota bookkeeping for one download: the
// counter resets when the last reset was on a previous day, then increments.
func (r *UserRepository) RegisterDownload(userID uint) error {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// reset stale counters first so the increment below always lands on
	// today's count
	err := r.DB.Model(&models.User{}).
		Where("id = ? AND downloads_reset_at < ?", userID, startOfDay).
		Updates(map[string]interface{}{
			"downloads_today":    0,
			"downloads_reset_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to reset daily downloads for user %d: %w", userID, err)
	}

	result := r.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"downloads_today":    gorm.Expr("downloads_today + ?", 1),
			"downloads_reset_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to register download for user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
