package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AssetServer serves stored media files for the local storage driver. The
// route is mounted at routePrefix with a trailing wildcard, e.g.
//
//	r.Get("/media/*", handlers.AssetServer(store.BasePath(), "/media/"))
//
// so the wildcard remainder is the storage key.
func AssetServer(baseStoragePath, routePrefix string) http.HandlerFunc {
	cleanBase := filepath.Clean(baseStoragePath)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)

		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		requestedAssetPath := filepath.Join(cleanBase, filepath.FromSlash(relativePath))
		cleanedAssetPath := filepath.Clean(requestedAssetPath)

		if !strings.HasPrefix(cleanedAssetPath, cleanBase) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			logrus.WithFields(logrus.Fields{
				"request":  r.URL.Path,
				"resolved": cleanedAssetPath,
			}).Warn("attempted asset access outside storage directory")
			return
		}

		if _, err := os.Stat(cleanedAssetPath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			logrus.WithError(err).WithField("path", cleanedAssetPath).Error("error stating asset file")
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, cleanedAssetPath)
	}
}
