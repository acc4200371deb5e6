package handlers

import (
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
)

const (
	fallbackCategoryName = "General"
	fallbackUploaderName = "Anonymous"
)

// WallpaperView is the per-item projection exposed to the frontend. URLs are
// resolved, tags are parsed, and fallbacks are applied so the client never
// sees a missing relation.
type WallpaperView struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	ImageURL       string   `json:"image_url"`
	ThumbnailURL   string   `json:"thumbnail_url"`
	CategoryName   string   `json:"category_name"`
	Tags           []string `json:"tags"`
	DownloadsCount int64    `json:"downloads_count"`
	ViewsCount     int64    `json:"views_count"`
	IsPremium      bool     `json:"is_premium"`
	IsFeatured     bool     `json:"is_featured"`
	CreatedDate    string   `json:"created_date"` // date only
	UploaderName   string   `json:"uploader_name"`
	// present only for authenticated callers
	IsFavorited *bool `json:"is_favorited,omitempty"`
}

// WallpaperPage is one page of projections plus pagination metadata.
type WallpaperPage struct {
	Data []WallpaperView     `json:"data"`
	Meta repository.PageInfo `json:"meta"`
}

func buildWallpaperView(w *models.Wallpaper, store media.Store, favorited *bool) WallpaperView {
	imageURL := media.ParseLocation(w.ImagePath).Resolve(store)

	thumbnailURL := imageURL
	if w.ThumbnailPath != nil && *w.ThumbnailPath != "" {
		thumbnailURL = media.ParseLocation(*w.ThumbnailPath).Resolve(store)
	}

	categoryName := fallbackCategoryName
	if w.Category.ID != 0 && w.Category.Name != "" {
		categoryName = w.Category.Name
	}

	uploaderName := fallbackUploaderName
	if w.User.ID != 0 && w.User.Name != "" {
		uploaderName = w.User.Name
	}

	return WallpaperView{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		ImageURL:       imageURL,
		ThumbnailURL:   thumbnailURL,
		CategoryName:   categoryName,
		Tags:           w.TagList(),
		DownloadsCount: w.DownloadsCount,
		ViewsCount:     w.ViewsCount,
		IsPremium:      w.IsPremium,
		IsFeatured:     w.IsFeatured,
		CreatedDate:    w.CreatedAt.Format("2006-01-02"),
		UploaderName:   uploaderName,
		IsFavorited:    favorited,
	}
}

// buildWallpaperPage projects one page of wallpapers, batching the favorite
// lookup for authenticated callers into a single query.
func buildWallpaperPage(wallpapers []models.Wallpaper, meta repository.PageInfo, store media.Store, favRepo repository.FavoriteRepositoryInterface, user *models.User) (WallpaperPage, error) {
	var favorited map[uint]bool
	if user != nil {
		ids := make([]uint, len(wallpapers))
		for i := range wallpapers {
			ids[i] = wallpapers[i].ID
		}
		var err error
		favorited, err = favRepo.FilterFavorited(user.ID, ids)
		if err != nil {
			return WallpaperPage{}, err
		}
	}

	views := make([]WallpaperView, 0, len(wallpapers))
	for i := range wallpapers {
		var fav *bool
		if user != nil {
			f := favorited[wallpapers[i].ID]
			fav = &f
		}
		views = append(views, buildWallpaperView(&wallpapers[i], store, fav))
	}

	return WallpaperPage{Data: views, Meta: meta}, nil
}
