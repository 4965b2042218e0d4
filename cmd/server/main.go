package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lay2al/movie-and--series-managment-system/internal/config"
	"github.com/lay2al/movie-and--series-managment-system/internal/database"
	"github.com/lay2al/movie-and--series-managment-system/internal/handlers"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/services"
	"github.com/lay2al/movie-and--series-managment-system/internal/storage"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring poster bucket: %v", err)
	}

	catalogService := services.NewCatalogService(db)
	watchlistService := services.NewWatchlistService(db, catalogService)

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db)
	moviesHandler := handlers.NewMoviesHandler(db, storageClient)
	seriesHandler := handlers.NewSeriesHandler(db, storageClient)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/register-admin", middleware.RequireAuth, middleware.AdminOnly, authHandler.RegisterAdmin)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/me", middleware.RequireAuth, authHandler.UpdateMe)

	api.Get("/users", middleware.RequireAuth, middleware.AdminOnly, usersHandler.List)
	api.Put("/users/:id/role", middleware.RequireAuth, middleware.AdminOnly, usersHandler.UpdateRole)
	api.Delete("/users/:id", middleware.RequireAuth, usersHandler.Delete)

	movieRoutes := api.Group("/movies")
	movieRoutes.Get("/", moviesHandler.List)
	movieRoutes.Get("/search", moviesHandler.Search)
	movieRoutes.Get("/:id", moviesHandler.Get)
	movieRoutes.Post("/", middleware.RequireAuth, middleware.AdminOnly, moviesHandler.Create)
	movieRoutes.Put("/:id", middleware.RequireAuth, middleware.AdminOnly, moviesHandler.Update)
	movieRoutes.Delete("/:id", middleware.RequireAuth, middleware.AdminOnly, moviesHandler.Delete)
	movieRoutes.Post("/:id/poster", middleware.RequireAuth, middleware.AdminOnly, moviesHandler.UploadPoster)

	seriesRoutes := api.Group("/series")
	seriesRoutes.Get("/", seriesHandler.List)
	seriesRoutes.Get("/search", seriesHandler.Search)
	seriesRoutes.Get("/:id", seriesHandler.Get)
	seriesRoutes.Post("/", middleware.RequireAuth, middleware.AdminOnly, seriesHandler.Create)
	seriesRoutes.Put("/:id", middleware.RequireAuth, middleware.AdminOnly, seriesHandler.Update)
	seriesRoutes.Delete("/:id", middleware.RequireAuth, middleware.AdminOnly, seriesHandler.Delete)
	seriesRoutes.Post("/:id/poster", middleware.RequireAuth, middleware.AdminOnly, seriesHandler.UploadPoster)

	watchlistRoutes := api.Group("/watchlist", middleware.RequireAuth)
	watchlistRoutes.Post("/", watchlistHandler.Create)
	watchlistRoutes.Get("/", watchlistHandler.List)
	watchlistRoutes.Get("/movies", watchlistHandler.ListMovies)
	watchlistRoutes.Get("/series", watchlistHandler.ListSeries)
	watchlistRoutes.Get("/status/:status", watchlistHandler.ListByStatus)
	watchlistRoutes.Get("/:id", watchlistHandler.Get)
	watchlistRoutes.Put("/:id", watchlistHandler.Update)
	watchlistRoutes.Delete("/:id", watchlistHandler.Delete)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
