package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
	"github.com/vision4k/vision4k-backend/utils"
)

const categoryImageMaxBytes = 2 << 20

// CategoryHandler serves the public category list and the administrative
// category CRUD plus report.
type CategoryHandler struct {
	Cfg          config.Config
	Store        media.Store
	CategoryRepo repository.CategoryRepositoryInterface
}

// CategoryView is the public projection of a category.
type CategoryView struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ImageURL    string  `json:"image_url"`
}

func (h *CategoryHandler) buildCategoryView(c *models.Category) CategoryView {
	var imageURL string
	if c.ImagePath != nil && *c.ImagePath != "" {
		imageURL = media.ParseLocation(*c.ImagePath).Resolve(h.Store)
	} else {
		imageURL = DefaultCategoryImage(c.Slug)
	}
	return CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    imageURL,
	}
}

// ListCategories returns all active categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryRepo.ListActive()
	if err != nil {
		logrus.WithError(err).Error("error listing categories")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve categories")
		return
	}

	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, h.buildCategoryView(&categories[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": views})
}

// CreateCategory handles the administrative multipart create: unique name,
// derived slug, optional description and image.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid multipart form: "+err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "name", Detail: "name is required"}})
		return
	}

	slug := utils.Slugify(name)
	if slug == "" {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "name", Detail: "name must contain at least one alphanumeric character"}})
		return
	}

	category := models.Category{
		Name:     name,
		Slug:     slug,
		IsActive: true,
	}
	if desc := strings.TrimSpace(r.FormValue("description")); desc != "" {
		category.Description = &desc
	}

	// optional image, same allow-list as wallpapers with a smaller cap
	if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
		fh := fhs[0]
		if !media.IsAllowedImageExt(fh.Filename) {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "image", Detail: "image type is not allowed"}})
			return
		}
		if fh.Size > categoryImageMaxBytes {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "image", Detail: "image exceeds the 2 MB size limit"}})
			return
		}

		file, err := fh.Open()
		if err != nil {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "image", Detail: "image could not be read"}})
			return
		}
		mimeType, err := media.SniffImageMIME(file)
		if err != nil || !media.IsAllowedImageMIME(mimeType) {
			file.Close()
			WriteValidationErrors(w, []APIErrorDetail{{Field: "image", Detail: "image content is not an allowed type"}})
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to read image")
			return
		}

		key, err := h.Store.Save(media.AssetTypeCategory, utils.UniqueStorageFilename(fh.Filename), file)
		file.Close()
		if err != nil {
			logrus.WithError(err).Error("error storing category image")
			WriteAPIError(w, http.StatusInternalServerError, "storage_error", "failed to store category image: "+err.Error())
			return
		}
		category.ImagePath = &key
	}

	if err := h.CategoryRepo.Create(&category); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "name", Detail: "a category with this name already exists"}})
		} else {
			logrus.WithError(err).WithField("name", name).Error("error creating category")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to create category")
		}
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func categoryIDParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid category id")
	}
	return uint(id), nil
}

// GetCategoryAdmin returns a category by ID including inactive ones.
func (h *CategoryHandler) GetCategoryAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	category, err := h.CategoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
		} else {
			logrus.WithError(err).WithField("category_id", id).Error("error fetching category")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve category")
		}
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// UpdateCategory applies a partial administrative update. The slug never
// changes after creation.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	if err := h.CategoryRepo.Update(id, req.Name, req.Description, req.IsActive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
		} else if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			WriteValidationErrors(w, []APIErrorDetail{{Field: "name", Detail: "a category with this name already exists"}})
		} else {
			logrus.WithError(err).WithField("category_id", id).Error("error updating category")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to update category")
		}
		return
	}

	updated, err := h.CategoryRepo.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusOK, statusMessage{Message: "category updated"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory removes a category; its wallpapers go with it through the
// cascade. The category's own image object is deleted best-effort.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	category, err := h.CategoryRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "category not found")
		} else {
			logrus.WithError(err).WithField("category_id", id).Error("error fetching category for delete")
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to retrieve category")
		}
		return
	}

	if err := h.CategoryRepo.Delete(id); err != nil {
		logrus.WithError(err).WithField("category_id", id).Error("error deleting category")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to delete category")
		return
	}

	if category.ImagePath != nil {
		if loc := media.ParseLocation(*category.ImagePath); !loc.IsExternal() {
			if err := h.Store.Delete(loc.Key); err != nil {
				logrus.WithError(err).WithField("key", loc.Key).Warn("failed to delete category image")
			}
		}
	}

	writeJSON(w, http.StatusOK, statusMessage{Message: "category deleted"})
}

// Report returns per-category wallpaper counts and aggregate downloads.
func (h *CategoryHandler) Report(w http.ResponseWriter, r *http.Request) {
	stats, err := h.CategoryRepo.Stats()
	if err != nil {
		logrus.WithError(err).Error("error computing category report")
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to compute category report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": stats})
}
