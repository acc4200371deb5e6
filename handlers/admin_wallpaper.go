package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
	"github.com/vision4k/vision4k-backend/utils"
	"github.com/vision4k/vision4k-backend/workers"
)

// AdminWallpaperHandler owns the upload pipeline and the administrative
// wallpaper mutations.
type AdminWallpaperHandler struct {
	Cfg           config.Config
	Store         media.Store
	Processor     *media.Processor
	WallpaperRepo repository.WallpaperRepositoryInterface
	CategoryRepo  repository.CategoryRepositoryInterface
	ThumbGen      *workers.ThumbnailGenerator
	Janitor       *workers.StorageJanitor
}

// UploadItem is the per-file outcome in the itemized batch result. Batches
// are not transactional across files: files committed before a failure stay
// committed, and the result says exactly which ones landed.
type UploadItem struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"` // "created" or "failed"
	WallpaperID uint   `json:"wallpaper_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// UploadResult is the batch response body.
type UploadResult struct {
	Message string       `json:"message"`
	Created int          `json:"created"`
	Items   []UploadItem `json:"items"`
}

// validateBatch runs the whole-batch checks before any file is stored:
// type allow-list and size caps for every file, plus the minimum-dimension
// check in the strict flow. Violations reject the entire batch.
func (h *AdminWallpaperHandler) validateBatch(files []*multipart.FileHeader, strict bool) []APIErrorDetail {
	var details []APIErrorDetail

	maxBytes := h.Cfg.MaxUploadBytes
	if strict {
		maxBytes = h.Cfg.StrictUploadBytes
	}

	for _, fh := range files {
		if !media.IsAllowedImageExt(fh.Filename) {
			details = append(details, APIErrorDetail{
				Field:  "files",
				Detail: fmt.Sprintf("%s: file type is not an allowed image type", fh.Filename),
			})
			continue
		}

		if fh.Size > maxBytes {
			details = append(details, APIErrorDetail{
				Field:  "files",
				Detail: fmt.Sprintf("%s: file exceeds the %d MB size limit", fh.Filename, maxBytes>>20),
			})
			continue
		}

		file, err := fh.Open()
		if err != nil {
			details = append(details, APIErrorDetail{
				Field:  "files",
				Detail: fmt.Sprintf("%s: file could not be read", fh.Filename),
			})
			continue
		}

		mimeType, err := media.SniffImageMIME(file)
		if err != nil || !media.IsAllowedImageMIME(mimeType) {
			details = append(details, APIErrorDetail{
				Field:  "files",
				Detail: fmt.Sprintf("%s: content type %q is not an allowed image type", fh.Filename, mimeType),
			})
			file.Close()
			continue
		}

		if strict {
			if _, err := file.Seek(0, 0); err == nil {
				width, height := h.Processor.ProbeDimensions(file)
				if width < h.Cfg.MinUploadWidth || height < h.Cfg.MinUploadHeight {
					details = append(details, APIErrorDetail{
						Field: "files",
						Detail: fmt.Sprintf("%s: resolution %dx%d is below the required %dx%d",
							fh.Filename, width, height, h.Cfg.MinUploadWidth, h.Cfg.MinUploadHeight),
					})
				}
			}
		}

		file.Close()
	}

	return details
}

// processFile turns one validated upload into a stored object plus a catalog
// row, and schedules the thumbnail job.
func (h *AdminWallpaperHandler) processFile(fh *multipart.FileHeader, title string, categoryID, uploaderID uint, premium bool) (*models.Wallpaper, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	width, height := h.Processor.ProbeDimensions(file)

	var exifInfo media.ExifInfo
	if _, err := file.Seek(0, 0); err == nil {
		exifInfo = media.ExtractEXIF(file)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	filename := utils.UniqueStorageFilename(fh.Filename)
	key, err := h.Store.Save(media.AssetTypeWallpaper, filename, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	wallpaper := models.Wallpaper{
		Title:       title,
		ImagePath:   key,
		CategoryID:  categoryID,
		UserID:      uploaderID,
		FileSize:    fh.Size,
		Resolution:  media.FormatResolution(width, height),
		IsActive:    true,
		IsPremium:   premium,
		CameraMake:  exifInfo.CameraMake,
		CameraModel: exifInfo.CameraModel,
		TakenAt:     exifInfo.TakenAt,
	}

	if err := h.WallpaperRepo.Create(&wallpaper); err != nil {
		// the stored object must not outlive the failed row
		if delErr := h.Store.Delete(key); delErr != nil {
			logrus.WithError(delErr).WithField("key", key).Warn("failed to remove object after insert failure")
		}
		return nil, err
	}

	h.ThumbGen.Enqueue(workers.ThumbnailJob{WallpaperID: wallpaper.ID, ImageKey: key})
	return &wallpaper, nil
}

// Upload handles the multipart batch upload. The simple flow applies the
// type/size allow-list; `strict=1` lowers the size cap and enforces minimum
// dimensions.
func (h *AdminWallpaperHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid multipart form: "+err.Error())
		return
	}

	user := CurrentUser(r)
	if user == nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	categoryIDRaw := r.FormValue("category_id")
	if categoryIDRaw == "" {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "category_id", Detail: "category_id is required"}})
		return
	}
	var categoryID uint
	if _, err := fmt.Sscan(categoryIDRaw, &categoryID); err != nil || categoryID == 0 {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "category_id", Detail: "category_id must be a valid identifier"}})
		return
	}
	if _, err := h.CategoryRepo.GetByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "category_id", Detail: "category does not exist"}})
		} else {
			logrus.WithError(err).Error("error verifying category for upload")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to verify category")
		}
		return
	}

	files := r.MultipartForm.File["files[]"]
	if len(files) == 0 {
		files = r.MultipartForm.File["files"]
	}
	if len(files) == 0 {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "files", Detail: "at least one file is required"}})
		return
	}
	if len(files) > h.Cfg.MaxUploadFiles {
		WriteValidationErrors(w, []APIErrorDetail{{
			Field:  "files",
			Detail: fmt.Sprintf("at most %d files may be uploaded at once", h.Cfg.MaxUploadFiles),
		}})
		return
	}

	strict := r.FormValue("strict") == "1" || r.URL.Query().Get("strict") == "1"

	if details := h.validateBatch(files, strict); len(details) > 0 {
		WriteValidationErrors(w, details)
		return
	}

	utils.SortFilesNaturally(files)

	title := r.FormValue("title")
	premium := r.FormValue("is_premium") == "1" || r.FormValue("is_premium") == "true"

	result := UploadResult{Items: make([]UploadItem, 0, len(files))}
	start := time.Now()
	failed := false

	for i, fh := range files {
		fileTitle := title
		if fileTitle == "" {
			fileTitle = utils.TitleFromFilename(fh.Filename)
		} else if len(files) > 1 {
			fileTitle = fmt.Sprintf("%s %d", title, i+1)
		}

		wallpaper, err := h.processFile(fh, fileTitle, categoryID, user.ID, premium)
		if err != nil {
			logrus.WithError(err).WithField("filename", fh.Filename).Error("upload processing failed")
			result.Items = append(result.Items, UploadItem{
				Filename: fh.Filename,
				Status:   "failed",
				Error:    err.Error(),
			})
			// earlier files stay committed; the itemized result shows
			// exactly which ones landed
			failed = true
			break
		}

		result.Items = append(result.Items, UploadItem{
			Filename:    fh.Filename,
			Status:      "created",
			WallpaperID: wallpaper.ID,
		})
		result.Created++
	}

	result.Message = fmt.Sprintf("%d wallpapers uploaded", result.Created)
	logrus.WithFields(logrus.Fields{
		"created":  result.Created,
		"files":    len(files),
		"strict":   strict,
		"duration": time.Since(start),
	}).Info("upload batch processed")

	if failed {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// UpdateWallpaper applies a partial administrative update.
func (h *AdminWallpaperHandler) UpdateWallpaper(w http.ResponseWriter, r *http.Request) {
	id, err := wallpaperIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		CategoryID  *uint   `json:"category_id"`
		Tags        *string `json:"tags"`
		IsFeatured  *bool   `json:"is_featured"`
		IsActive    *bool   `json:"is_active"`
		IsPremium   *bool   `json:"is_premium"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	if req.CategoryID != nil {
		if _, err := h.CategoryRepo.GetByID(*req.CategoryID); err != nil {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "category_id", Detail: "category does not exist"}})
			return
		}
	}

	upd := repository.WallpaperUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		IsFeatured:  req.IsFeatured,
		IsActive:    req.IsActive,
		IsPremium:   req.IsPremium,
	}
	if err := h.WallpaperRepo.Update(id, upd); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper not found")
		} else {
			logrus.WithError(err).WithField("wallpaper_id", id).Error("error updating wallpaper")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to update wallpaper")
		}
		return
	}

	updated, err := h.WallpaperRepo.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusOK, statusMessage{Message: "wallpaper updated"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteWallpaper removes a wallpaper in two phases: the row is tombstoned
// first (hidden from every query path), then the storage objects are
// removed and the row hard-deleted. A failed storage delete leaves the
// tombstone for the janitor to retry instead of silently orphaning objects.
func (h *AdminWallpaperHandler) DeleteWallpaper(w http.ResponseWriter, r *http.Request) {
	id, err := wallpaperIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if _, err := h.WallpaperRepo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "wallpaper not found")
		} else {
			logrus.WithError(err).WithField("wallpaper_id", id).Error("error fetching wallpaper for delete")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve wallpaper")
		}
		return
	}

	if err := h.WallpaperRepo.MarkPendingDelete(id); err != nil {
		logrus.WithError(err).WithField("wallpaper_id", id).Error("error tombstoning wallpaper")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to delete wallpaper")
		return
	}

	// attempt the storage cleanup inline; the periodic sweep covers failures
	h.Janitor.Sweep()

	writeJSON(w, http.StatusOK, statusMessage{Message: "wallpaper deleted"})
}
