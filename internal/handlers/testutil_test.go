package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lay2al/movie-and--series-managment-system/internal/database"
	"github.com/lay2al/movie-and--series-managment-system/internal/middleware"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/internal/services"
	"github.com/lay2al/movie-and--series-managment-system/pkg/logger"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Series{},
		&models.WatchlistEntry{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	if err := database.EnsureWatchlistIndexes(db); err != nil {
		t.Fatalf("failed creating watchlist indexes: %v", err)
	}

	catalogService := services.NewCatalogService(db)
	watchlistService := services.NewWatchlistService(db, catalogService)

	authHandler := NewAuthHandler(db)
	usersHandler := NewUsersHandler(db)
	moviesHandler := NewMoviesHandler(db, nil)
	seriesHandler := NewSeriesHandler(db, nil)
	watchlistHandler := NewWatchlistHandler(watchlistService)

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

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestMovie(t *testing.T, db *gorm.DB, title string) *models.Movie {
	t.Helper()

	movie := &models.Movie{
		Title:       title,
		ReleaseDate: time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC),
		Genre:       "Sci-Fi",
		Synopsis:    "A hacker learns the true nature of his reality.",
	}
	if err := db.Create(movie).Error; err != nil {
		t.Fatalf("failed creating test movie: %v", err)
	}
	return movie
}

func createTestSeries(t *testing.T, db *gorm.DB, title string) *models.Series {
	t.Helper()

	series := &models.Series{
		Title:           title,
		StartYear:       2008,
		Genre:           "Drama",
		Synopsis:        "A chemistry teacher turns to crime.",
		NumberOfSeasons: 5,
	}
	if err := db.Create(series).Error; err != nil {
		t.Fatalf("failed creating test series: %v", err)
	}
	return series
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
