package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Open when the requested key has no object.
var ErrNotFound = errors.New("media: object not found")

// Store defines the interface for saving, retrieving, and deleting image
// assets under namespaced keys, and for resolving a key to a public URL.
type Store interface {
	// Save stores data under the asset type's namespace using the given
	// filename and returns the final storage key
	Save(assetType AssetType, filename string, data io.Reader) (string, error)
	// Open retrieves a reader and the object size for a storage key
	Open(key string) (io.ReadCloser, int64, error)
	// Exists reports whether an object is present for the key
	Exists(key string) (bool, error)
	// Delete removes an object; deleting a missing object is not an error
	Delete(key string) error
	// PublicURL resolves a storage key to a publicly fetchable URL
	PublicURL(key string) string
}

// subDirFor maps asset types to their storage namespaces.
func subDirFor(assetType AssetType) string {
	switch assetType {
	case AssetTypeWallpaper:
		return "wallpapers"
	case AssetTypeThumbnail:
		return "wallpapers/thumbnails"
	case AssetTypeCategory:
		return "categories"
	case AssetTypeAvatar:
		return "avatars"
	default:
		return string(AssetTypeUnknown)
	}
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath      string // absolute path to the MEDIA_STORAGE_PATH
	publicBaseURL string // prefix for PublicURL, e.g. http://host/media
}

// NewLocalStorage creates a new local filesystem store and ensures the
// namespace directories exist.
func NewLocalStorage(basePath, publicBaseURL string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	for _, assetType := range []AssetType{AssetTypeWallpaper, AssetTypeThumbnail, AssetTypeCategory, AssetTypeAvatar} {
		dir := filepath.Join(absBasePath, subDirFor(assetType))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory '%s': %w", dir, err)
		}
	}

	logrus.WithField("path", absBasePath).Info("media.store: initialized local storage")
	return &LocalStorage{
		basePath:      absBasePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// fullPath calculates the absolute path for a key and performs the
// traversal check
func (ls *LocalStorage) fullPath(key string) (string, error) {
	cleanKey := filepath.Clean(filepath.FromSlash(key))
	fullPath := filepath.Join(ls.basePath, cleanKey)

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", key, err)
	}

	if !strings.HasPrefix(absFullPath, ls.basePath) {
		return "", fmt.Errorf("invalid key: access denied for '%s'", key)
	}

	return absFullPath, nil
}

func (ls *LocalStorage) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}

	key := subDirFor(assetType) + "/" + filename
	fullSavePath, err := ls.fullPath(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullSavePath), 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory for '%s': %w", key, err)
	}

	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}

	return key, nil
}

func (ls *LocalStorage) Open(key string) (io.ReadCloser, int64, error) {
	fullPath, err := ls.fullPath(key)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open asset '%s': %w", key, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat asset '%s': %w", key, err)
	}

	return file, info.Size(), nil
}

func (ls *LocalStorage) Exists(key string) (bool, error) {
	fullPath, err := ls.fullPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat asset '%s': %w", key, err)
	}
	return true, nil
}

// Delete removes an asset file. Missing files are treated as success.
func (ls *LocalStorage) Delete(key string) error {
	fullPath, err := ls.fullPath(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", key, err)
	}
	if err == nil {
		logrus.WithField("key", key).Debug("media.store: deleted asset")
	}
	return nil
}

func (ls *LocalStorage) PublicURL(key string) string {
	return ls.publicBaseURL + "/" + strings.TrimLeft(filepath.ToSlash(key), "/")
}

// BasePath exposes the storage root for the local asset server.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}
