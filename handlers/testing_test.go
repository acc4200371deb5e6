package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/database"
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
	"github.com/vision4k/vision4k-backend/workers"
)

// testEnv wires the full request stack against a throwaway database and a
// local store, mirroring the production router.
type testEnv struct {
	Cfg    config.Config
	DB     *gorm.DB
	Store  *media.LocalStorage
	Router http.Handler

	UserRepo      *repository.UserRepository
	CategoryRepo  *repository.CategoryRepository
	WallpaperRepo *repository.WallpaperRepository
	DownloadRepo  *repository.DownloadRepository
	FavoriteRepo  *repository.FavoriteRepository

	Auth *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Port:               "0",
		StorageDriver:      config.StorageDriverLocal,
		PublicBaseURL:      "http://localhost:8080/media",
		ThumbnailMaxSize:   64,
		MaxUploadFiles:     5,
		MaxUploadBytes:     20 << 20,
		StrictUploadBytes:  10 << 20,
		MinUploadWidth:     100,
		MinUploadHeight:    100,
		TrendingDays:       7,
		ListingPageSize:    24,
		CategoryPageSize:   20,
		DailyDownloadLimit: 10,
		DefaultResolutionW: 1920,
		DefaultResolutionH: 1080,
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}

	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Unexpected error opening test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("Unexpected error migrating test database: %v", err)
	}

	store, err := media.NewLocalStorage(t.TempDir(), cfg.PublicBaseURL)
	if err != nil {
		t.Fatalf("Unexpected error creating local storage: %v", err)
	}
	processor := media.NewProcessor(store, cfg.DefaultResolutionW, cfg.DefaultResolutionH)

	if err := ConfigureCategoryDefaults(cfg.PublicBaseURL); err != nil {
		t.Fatalf("Unexpected error configuring category defaults: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	wallpaperRepo := repository.NewWallpaperRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	thumbGen := workers.NewThumbnailGenerator(store, processor, wallpaperRepo, cfg.ThumbnailMaxSize, 10, 1)
	t.Cleanup(thumbGen.Stop)
	janitor := workers.NewStorageJanitor(store, wallpaperRepo, time.Hour)
	t.Cleanup(janitor.Stop)

	authHandler := NewAuthHandler(userRepo, cfg)
	wallpaperHandler := &WallpaperHandler{
		Cfg: cfg, Store: store, WallpaperRepo: wallpaperRepo,
		CategoryRepo: categoryRepo, DownloadRepo: downloadRepo,
		FavoriteRepo: favoriteRepo, UserRepo: userRepo,
	}
	adminHandler := &AdminWallpaperHandler{
		Cfg: cfg, Store: store, Processor: processor,
		WallpaperRepo: wallpaperRepo, CategoryRepo: categoryRepo,
		ThumbGen: thumbGen, Janitor: janitor,
	}
	categoryHandler := &CategoryHandler{Cfg: cfg, Store: store, CategoryRepo: categoryRepo}

	secret := []byte(cfg.JWTSecret)
	requireAuth := AuthMiddleware(secret, userRepo)
	optionalAuth := OptionalAuthMiddleware(secret, userRepo)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
		})
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/wallpapers", wallpaperHandler.ListWallpapers)
			r.Get("/wallpapers/{id}", wallpaperHandler.GetWallpaper)
			r.Get("/wallpapers/{id}/download", wallpaperHandler.Download)
			r.Get("/trending", wallpaperHandler.Trending)
			r.Get("/premium", wallpaperHandler.Premium)
			r.Get("/categories", categoryHandler.ListCategories)
			r.Get("/categories/{slug}/wallpapers", wallpaperHandler.ListByCategory)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/wallpapers/{id}/favorite", wallpaperHandler.ToggleFavorite)
			r.Get("/favorites", wallpaperHandler.ListFavorites)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(RequireAdmin)
			r.Post("/wallpapers", adminHandler.Upload)
			r.Put("/wallpapers/{id}", adminHandler.UpdateWallpaper)
			r.Delete("/wallpapers/{id}", adminHandler.DeleteWallpaper)
			r.Post("/categories", categoryHandler.CreateCategory)
			r.Get("/categories/report", categoryHandler.Report)
			r.Get("/categories/{id}", categoryHandler.GetCategoryAdmin)
			r.Put("/categories/{id}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.DeleteCategory)
		})
	})
	r.Get("/media/*", AssetServer(store.BasePath(), "/media/"))

	return &testEnv{
		Cfg: cfg, DB: db, Store: store, Router: r,
		UserRepo: userRepo, CategoryRepo: categoryRepo, WallpaperRepo: wallpaperRepo,
		DownloadRepo: downloadRepo, FavoriteRepo: favoriteRepo,
		Auth: authHandler,
	}
}

func (e *testEnv) createUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	user := models.User{
		Name: "Test User", Email: email, Role: role,
		DailyDownloadLimit: e.Cfg.DailyDownloadLimit, DownloadsResetAt: time.Now(),
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := e.UserRepo.Create(&user); err != nil {
		t.Fatalf("Unexpected error creating user: %v", err)
	}
	token, _, err := e.Auth.issueToken(&user)
	if err != nil {
		t.Fatalf("Unexpected error issuing token: %v", err)
	}
	return &user, token
}

func (e *testEnv) createCategory(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug, IsActive: true}
	if err := e.CategoryRepo.Create(&category); err != nil {
		t.Fatalf("Unexpected error creating category: %v", err)
	}
	return &category
}

// createWallpaper seeds a catalog row whose image object really exists in the
// store, so download tests exercise the streaming path.
func (e *testEnv) createWallpaper(t *testing.T, w models.Wallpaper) *models.Wallpaper {
	t.Helper()
	if w.Title == "" {
		w.Title = "Untitled"
	}
	if w.Resolution == "" {
		w.Resolution = "1920x1080"
	}
	if w.ImagePath == "" {
		key, err := e.Store.Save(media.AssetTypeWallpaper, "seed.png", bytes.NewReader(pngBytes(t, 4, 4)))
		if err != nil {
			t.Fatalf("Unexpected error storing seed image: %v", err)
		}
		w.ImagePath = key
	}
	if err := e.WallpaperRepo.Create(&w); err != nil {
		t.Fatalf("Unexpected error creating wallpaper: %v", err)
	}
	return &w
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("Unexpected error encoding png: %v", err)
	}
	return buf.Bytes()
}

func (e *testEnv) do(t *testing.T, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, target, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Unexpected error marshaling payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return e.do(t, method, target, token, body, "application/json")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Unexpected error decoding response %q: %v", rec.Body.String(), err)
	}
}

// multipartBody builds a multipart form with the given fields and PNG files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Unexpected error writing field: %v", err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("files[]", name)
		if err != nil {
			t.Fatalf("Unexpected error creating form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Unexpected error writing form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Unexpected error closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
