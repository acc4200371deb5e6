package media

import (
	"fmt"

	"github.com/vision4k/vision4k-backend/config"
)

// NewStore creates the media store configured by STORAGE_DRIVER.
func NewStore(cfg config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverLocal:
		return NewLocalStorage(cfg.MediaStoragePath, cfg.PublicBaseURL)
	case config.StorageDriverS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
