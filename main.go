package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/database"
	"github.com/vision4k/vision4k-backend/handlers"
	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/repository"
	"github.com/vision4k/vision4k-backend/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info("no .env file loaded")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	if err := database.AutoMigrateModels(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database schema")
	}
	logrus.WithField("path", cfg.DatabasePath).Info("database initialized")

	store, err := media.NewStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize media store")
	}
	processor := media.NewProcessor(store, cfg.DefaultResolutionW, cfg.DefaultResolutionH)

	if err := handlers.ConfigureCategoryDefaults(cfg.PublicBaseURL); err != nil {
		logrus.WithError(err).Fatal("invalid category default-image configuration")
	}

	categoryRepo := repository.NewCategoryRepository(db)
	wallpaperRepo := repository.NewWallpaperRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	userRepo := repository.NewUserRepository(db)

	thumbGen := workers.NewThumbnailGenerator(store, processor, wallpaperRepo,
		cfg.ThumbnailMaxSize, cfg.ThumbnailQueueSize, cfg.NumThumbnailWorkers)
	defer thumbGen.Stop()

	janitor := workers.NewStorageJanitor(store, wallpaperRepo,
		time.Duration(cfg.JanitorIntervalSeconds)*time.Second)
	defer janitor.Stop()

	authHandler := handlers.NewAuthHandler(userRepo, cfg)
	wallpaperHandler := &handlers.WallpaperHandler{
		Cfg:           cfg,
		Store:         store,
		WallpaperRepo: wallpaperRepo,
		CategoryRepo:  categoryRepo,
		DownloadRepo:  downloadRepo,
		FavoriteRepo:  favoriteRepo,
		UserRepo:      userRepo,
	}
	adminWallpaperHandler := &handlers.AdminWallpaperHandler{
		Cfg:           cfg,
		Store:         store,
		Processor:     processor,
		WallpaperRepo: wallpaperRepo,
		CategoryRepo:  categoryRepo,
		ThumbGen:      thumbGen,
		Janitor:       janitor,
	}
	categoryHandler := &handlers.CategoryHandler{
		Cfg:          cfg,
		Store:        store,
		CategoryRepo: categoryRepo,
	}

	jwtSecret := []byte(cfg.JWTSecret)
	requireAuth := handlers.AuthMiddleware(jwtSecret, userRepo)
	optionalAuth := handlers.OptionalAuthMiddleware(jwtSecret, userRepo)

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

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
			r.Use(handlers.RequireAdmin)

			r.Post("/wallpapers", adminWallpaperHandler.Upload)
			r.Put("/wallpapers/{id}", adminWallpaperHandler.UpdateWallpaper)
			r.Patch("/wallpapers/{id}", adminWallpaperHandler.UpdateWallpaper)
			r.Delete("/wallpapers/{id}", adminWallpaperHandler.DeleteWallpaper)

			r.Get("/categories", categoryHandler.ListCategories)
			r.Post("/categories", categoryHandler.CreateCategory)
			r.Get("/categories/report", categoryHandler.Report)
			r.Get("/categories/{id}", categoryHandler.GetCategoryAdmin)
			r.Put("/categories/{id}", categoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.DeleteCategory)
		})
	})

	if local, ok := store.(*media.LocalStorage); ok {
		r.Get("/media/*", handlers.AssetServer(local.BasePath(), "/media/"))
		logrus.WithField("path", local.BasePath()).Info("registered local media server at /media/*")
	}

	serverAddr := ":" + cfg.Port
	logrus.WithField("addr", serverAddr).Info("server listening")
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	logrus.Fatal(server.ListenAndServe())
}
