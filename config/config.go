package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWallpapersSubDir = "wallpapers"
	DefaultThumbnailsSubDir = "wallpapers/thumbnails"
	DefaultCategoriesSubDir = "categories"
	DefaultAvatarsSubDir    = "avatars"
)

const (
	defaultThumbnailMaxSize   = 640
	defaultThumbnailQueueSize = 200
	defaultNumWorkers         = 4
	defaultJanitorIntervalSec = 300

	defaultMaxUploadFiles     = 20
	defaultMaxUploadBytes     = 20 << 20 // simple flow, per file
	defaultStrictUploadBytes  = 10 << 20 // strict flow, per file
	defaultMinUploadWidth     = 1920
	defaultMinUploadHeight    = 1080
	defaultTrendingDays       = 7
	defaultListingPageSize    = 24
	defaultCategoryPageSize   = 20
	defaultDailyDownloadLimit = 10
	defaultResolutionWidth    = 1920
	defaultResolutionHeight   = 1080
	defaultJWTExpirationHours = 24
)

// storage driver selection for the media store
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// http
	Port           string
	AllowedOrigins []string

	// database path
	DatabasePath string

	// media storage configuration
	StorageDriver    string
	MediaStoragePath string // root for the local driver
	PublicBaseURL    string // prefix used to resolve stored keys to public URLs

	// s3 / minio settings (used when StorageDriver == "s3")
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for minio and other custom endpoints
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	ThumbnailQueueSize     int
	NumThumbnailWorkers    int
	JanitorIntervalSeconds int

	// upload limits
	MaxUploadFiles    int
	MaxUploadBytes    int64 // simple flow
	StrictUploadBytes int64 // strict flow
	MinUploadWidth    int
	MinUploadHeight   int

	// catalog defaults
	TrendingDays       int
	ListingPageSize    int
	CategoryPageSize   int
	DailyDownloadLimit int
	DefaultResolutionW int
	DefaultResolutionH int

	// auth
	JWTSecret          string
	JWTExpirationHours int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		logrus.WithFields(logrus.Fields{"var": envVar, "value": valStr}).
			Warnf("invalid integer value, using default %d", defaultVal)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{"var": envVar, "value": valStr}).
			Warn("invalid boolean value, using default")
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	driver := getEnvOrDefault("STORAGE_DRIVER", StorageDriverLocal)
	if driver != StorageDriverLocal && driver != StorageDriverS3 {
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER '%s'", driver)
	}

	jwtSecret := getEnvOrDefault("JWT_SECRET", "")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: []string{getEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:5173")},

		DatabasePath: getEnvOrDefault("DATABASE_PATH", "vision4k.db"),

		StorageDriver:    driver,
		MediaStoragePath: absMediaStorage,
		PublicBaseURL:    getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080/media"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:    getEnvBoolOrDefault("S3_USE_SSL", true),

		ThumbnailMaxSize: getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),

		ThumbnailQueueSize:     getEnvIntOrDefault("THUMBNAIL_QUEUE_SIZE", defaultThumbnailQueueSize),
		NumThumbnailWorkers:    getEnvIntOrDefault("NUM_THUMBNAIL_WORKERS", defaultNumWorkers),
		JanitorIntervalSeconds: getEnvIntOrDefault("JANITOR_INTERVAL_SECONDS", defaultJanitorIntervalSec),

		MaxUploadFiles:    getEnvIntOrDefault("MAX_UPLOAD_FILES", defaultMaxUploadFiles),
		MaxUploadBytes:    int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		StrictUploadBytes: int64(getEnvIntOrDefault("STRICT_UPLOAD_BYTES", defaultStrictUploadBytes)),
		MinUploadWidth:    getEnvIntOrDefault("MIN_UPLOAD_WIDTH", defaultMinUploadWidth),
		MinUploadHeight:   getEnvIntOrDefault("MIN_UPLOAD_HEIGHT", defaultMinUploadHeight),

		TrendingDays:       getEnvIntOrDefault("TRENDING_DAYS", defaultTrendingDays),
		ListingPageSize:    getEnvIntOrDefault("LISTING_PAGE_SIZE", defaultListingPageSize),
		CategoryPageSize:   getEnvIntOrDefault("CATEGORY_PAGE_SIZE", defaultCategoryPageSize),
		DailyDownloadLimit: getEnvIntOrDefault("DAILY_DOWNLOAD_LIMIT", defaultDailyDownloadLimit),
		DefaultResolutionW: defaultResolutionWidth,
		DefaultResolutionH: defaultResolutionHeight,

		JWTSecret:          jwtSecret,
		JWTExpirationHours: getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours),
	}

	if cfg.StorageDriver == StorageDriverS3 && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("S3_BUCKET must be set when STORAGE_DRIVER is 's3'")
	}

	return cfg, nil
}
