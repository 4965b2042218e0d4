package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lay2al/movie-and--series-managment-system/internal/config"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"github.com/lay2al/movie-and--series-managment-system/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and the constraints the watchlist invariants
// rely on. The partial unique indexes are what turn a concurrent duplicate
// add into a storage-level conflict instead of a silent second row.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Series{},
		&models.WatchlistEntry{},
	); err != nil {
		return err
	}

	if err := EnsureWatchlistIndexes(db); err != nil {
		return err
	}

	constraint := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'watchlist_reference_check'
  ) THEN
    ALTER TABLE watchlist_entries
    ADD CONSTRAINT watchlist_reference_check
    CHECK (
      (movie_id IS NOT NULL AND series_id IS NULL)
      OR
      (movie_id IS NULL AND series_id IS NOT NULL)
    );
  END IF;
END $$;`

	return db.Exec(constraint).Error
}

// EnsureWatchlistIndexes uses syntax shared by postgres and sqlite so the
// test database carries the same uniqueness guarantees as production.
func EnsureWatchlistIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_watchlist_user_movie
			ON watchlist_entries (user_id, movie_id) WHERE movie_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_watchlist_user_series
			ON watchlist_entries (user_id, series_id) WHERE series_id IS NOT NULL`,
	}
	for _, statement := range statements {
		if err := db.Exec(statement).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a uniqueness-constraint failure.
// The string checks cover drivers that predate gorm's error translation
// (the sqlite test driver among them).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func seedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	adminHash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        "admin@movies.com",
		PasswordHash: adminHash,
		Name:         "System Admin",
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	userHash, err := utils.HashPassword("user123")
	if err != nil {
		return err
	}
	user := models.User{
		Email:        "user@movies.com",
		PasswordHash: userHash,
		Name:         "John Doe",
		Role:         models.UserRoleUser,
	}
	return db.Create(&user).Error
}
