package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
)

// WallpaperHandler serves the public catalog: listings, detail, downloads,
// and favorites.
type WallpaperHandler struct {
	Cfg           config.Config
	Store         media.Store
	WallpaperRepo repository.WallpaperRepositoryInterface
	CategoryRepo  repository.CategoryRepositoryInterface
	DownloadRepo  repository.DownloadRepositoryInterface
	FavoriteRepo  repository.FavoriteRepositoryInterface
	UserRepo      repository.UserRepositoryInterface
}

func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func wallpaperIDParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid wallpaper id")
	}
	return uint(id), nil
}

func (h *WallpaperHandler) listOptionsFromQuery(r *http.Request, audience repository.Audience, perPage int) repository.ListOptions {
	q := r.URL.Query()

	opts := repository.ListOptions{
		Audience:     audience,
		Search:       q.Get("search"),
		FeaturedOnly: q.Get("featured") == "1" || q.Get("featured") == "true",
		Sort:         q.Get("sort"),
		Page:         parsePage(r),
		PerPage:      perPage,
	}

	if raw := q.Get("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			cid := uint(id)
			opts.CategoryID = &cid
		}
	}

	return opts
}

func (h *WallpaperHandler) respondPage(w http.ResponseWriter, r *http.Request, opts repository.ListOptions) {
	wallpapers, meta, err := h.WallpaperRepo.List(opts)
	if err != nil {
		logrus.WithError(err).Error("error listing wallpapers")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpapers")
		return
	}

	page, err := buildWallpaperPage(wallpapers, meta, h.Store, h.FavoriteRepo, CurrentUser(r))
	if err != nil {
		logrus.WithError(err).Error("error building wallpaper page")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpapers")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListWallpapers handles the general public listing with category, search,
// sort, and featured filters.
func (h *WallpaperHandler) ListWallpapers(w http.ResponseWriter, r *http.Request) {
	h.respondPage(w, r, h.listOptionsFromQuery(r, repository.AudiencePublic, h.Cfg.ListingPageSize))
}

// ListByCategory handles the single-category page, addressed by slug.
func (h *WallpaperHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, err := h.CategoryRepo.GetBySlug(slug)
	if err != nil || !category.IsActive {
		WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
		return
	}

	opts := h.listOptionsFromQuery(r, repository.AudiencePublic, h.Cfg.CategoryPageSize)
	opts.CategoryID = &category.ID
	h.respondPage(w, r, opts)
}

// Trending handles the trending listing; `days` overrides the window.
func (h *WallpaperHandler) Trending(w http.ResponseWriter, r *http.Request) {
	opts := h.listOptionsFromQuery(r, repository.AudienceTrending, h.Cfg.ListingPageSize)
	opts.TrendingDays = h.Cfg.TrendingDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			opts.TrendingDays = days
		}
	}
	h.respondPage(w, r, opts)
}

// Premium handles the premium-only listing.
func (h *WallpaperHandler) Premium(w http.ResponseWriter, r *http.Request) {
	h.respondPage(w, r, h.listOptionsFromQuery(r, repository.AudiencePremium, h.Cfg.ListingPageSize))
}

// GetWallpaper serves the detail view and unconditionally counts the view.
// Repeated views from the same client all count.
func (h *WallpaperHandler) GetWallpaper(w http.ResponseWriter, r *http.Request) {
	id, err := wallpaperIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	wallpaper, err := h.WallpaperRepo.GetActiveByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper not found")
		} else {
			logrus.WithError(err).WithField("wallpaper_id", id).Error("error fetching wallpaper")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpaper")
		}
		return
	}

	if err := h.WallpaperRepo.IncrementViews(id); err != nil {
		// the detail response is still served; the lost view is logged
		logrus.WithError(err).WithField("wallpaper_id", id).Error("error incrementing views")
	} else {
		wallpaper.ViewsCount++
	}

	var fav *bool
	if user := CurrentUser(r); user != nil {
		exists, err := h.FavoriteRepo.Exists(user.ID, id)
		if err != nil {
			logrus.WithError(err).Error("error checking favorite state")
		} else {
			fav = &exists
		}
	}

	writeJSON(w, http.StatusOK, buildWallpaperView(wallpaper, h.Store, fav))
}

// downloadFilename composes the attachment name: title + resolution +
// original extension.
func downloadFilename(wallpaper *models.Wallpaper, key string) string {
	ext := filepath.Ext(key)
	if ext == "" {
		ext = ".jpg"
	}
	base := strings.ReplaceAll(strings.TrimSpace(wallpaper.Title), " ", "_")
	if base == "" {
		base = fmt.Sprintf("wallpaper_%d", wallpaper.ID)
	}
	return fmt.Sprintf("%s_%s%s", base, wallpaper.Resolution, ext)
}

// Download delivers the wallpaper file or redirects to its external URL.
// The counter and audit row are written only after the deliverable is
// confirmed, so a missing file never inflates the count.
func (h *WallpaperHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := wallpaperIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	wallpaper, err := h.WallpaperRepo.GetActiveByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper not found")
		} else {
			logrus.WithError(err).WithField("wallpaper_id", id).Error("error fetching wallpaper for download")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpaper")
		}
		return
	}

	user := CurrentUser(r)
	if user != nil {
		if ok, reason := user.CanDownload(); !ok {
			WriteAPIError(w, http.StatusTooManyRequests, "download_limit", reason)
			return
		}
	}

	loc := media.ParseLocation(wallpaper.ImagePath)

	if loc.IsExternal() {
		h.recordDownload(r, wallpaper, user)
		http.Redirect(w, r, loc.URL, http.StatusFound)
		return
	}

	reader, size, err := h.Store.Open(loc.Key)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper file not found")
		} else {
			logrus.WithError(err).WithField("key", loc.Key).Error("error opening wallpaper file")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to open wallpaper file")
		}
		return
	}
	defer reader.Close()

	h.recordDownload(r, wallpaper, user)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename(wallpaper, loc.Key)))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, reader); err != nil {
		logrus.WithError(err).WithField("wallpaper_id", id).Debug("download stream interrupted")
	}
}

// recordDownload applies the engagement side effects of a confirmed
// download: the counter, the audit row, and the user's daily quota.
func (h *WallpaperHandler) recordDownload(r *http.Request, wallpaper *models.Wallpaper, user *models.User) {
	if err := h.WallpaperRepo.IncrementDownloads(wallpaper.ID); err != nil {
		logrus.WithError(err).WithField("wallpaper_id", wallpaper.ID).Error("error incrementing downloads")
	}

	download := models.Download{
		WallpaperID: wallpaper.ID,
		IPAddress:   clientIP(r),
		Resolution:  wallpaper.Resolution,
		FileSize:    wallpaper.FileSize,
	}
	if ua := r.UserAgent(); ua != "" {
		download.UserAgent = &ua
	}
	if user != nil {
		uid := user.ID
		download.UserID = &uid
	}

	if err := h.DownloadRepo.Create(&download); err != nil {
		logrus.WithError(err).WithField("wallpaper_id", wallpaper.ID).Error("error recording download")
	}

	if user != nil {
		if err := h.UserRepo.RegisterDownload(user.ID); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("error updating daily download count")
		}
	}
}

// ToggleFavorite flips the favorited state for the authenticated user.
func (h *WallpaperHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := wallpaperIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user := CurrentUser(r)
	if user == nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	if _, err := h.WallpaperRepo.GetActiveByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper not found")
		} else {
			logrus.WithError(err).WithField("wallpaper_id", id).Error("error fetching wallpaper for favorite")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpaper")
		}
		return
	}

	added, err := h.FavoriteRepo.Toggle(user.ID, id)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": user.ID, "wallpaper_id": id}).
			Error("error toggling favorite")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to toggle favorite")
		return
	}

	status := "removed"
	if added {
		status = "added"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"is_favorited": added,
	})
}

// ListFavorites returns the authenticated user's favorited wallpapers.
func (h *WallpaperHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	if user == nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	wallpapers, err := h.FavoriteRepo.ListWallpapersByUser(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("error listing favorites")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve favorites")
		return
	}

	views := make([]WallpaperView, 0, len(wallpapers))
	favorited := true
	for i := range wallpapers {
		f := favorited
		views = append(views, buildWallpaperView(&wallpapers[i], h.Store, &f))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": views})
}
