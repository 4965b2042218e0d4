package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lay2al/movie-and--series-managment-system/internal/database"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidReference    = errors.New("exactly one of movieID or seriesID must be provided")
	ErrCatalogItemNotFound = errors.New("referenced movie or series not found")
	ErrDuplicateEntry      = errors.New("item already in watchlist")
	ErrEntryNotFound       = errors.New("watchlist entry not found")
	ErrInvalidStatus       = errors.New("invalid watch status")
	ErrInvalidRating       = errors.New("rating must be between 0 and 10")
)

// WatchlistService owns the invariants between a user, a catalog item and
// the user's tracking entry. Every read and mutation is scoped by the
// caller's user id; entries owned by someone else are indistinguishable
// from entries that do not exist.
type WatchlistService struct {
	DB      *gorm.DB
	Catalog *CatalogService
}

func NewWatchlistService(db *gorm.DB, catalog *CatalogService) *WatchlistService {
	return &WatchlistService{DB: db, Catalog: catalog}
}

type AddEntryParams struct {
	MovieID  *uuid.UUID
	SeriesID *uuid.UUID
	Status   *models.WatchStatus
}

type UpdateEntryParams struct {
	Status *models.WatchStatus
	Rating *float64
	Notes  *string
}

func (s *WatchlistService) Add(ctx context.Context, userID uuid.UUID, params AddEntryParams) (*models.WatchlistEntry, error) {
	if (params.MovieID == nil) == (params.SeriesID == nil) {
		return nil, ErrInvalidReference
	}

	status := models.WatchStatusNotWatched
	if params.Status != nil {
		if !models.ValidWatchStatus(*params.Status) {
			return nil, ErrInvalidStatus
		}
		status = *params.Status
	}

	if params.MovieID != nil {
		exists, err := s.Catalog.MovieExists(ctx, *params.MovieID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCatalogItemNotFound
		}
	} else {
		exists, err := s.Catalog.SeriesExists(ctx, *params.SeriesID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCatalogItemNotFound
		}
	}

	var existing int64
	query := s.DB.WithContext(ctx).Model(&models.WatchlistEntry{}).Where("user_id = ?", userID)
	if params.MovieID != nil {
		query = query.Where("movie_id = ?", *params.MovieID)
	} else {
		query = query.Where("series_id = ?", *params.SeriesID)
	}
	if err := query.Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateEntry
	}

	entry := models.WatchlistEntry{
		UserID:   userID,
		MovieID:  params.MovieID,
		SeriesID: params.SeriesID,
		Status:   status,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		// The unique indexes on (user_id, movie_id) / (user_id, series_id)
		// catch concurrent adds that slipped past the count above.
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}

	return s.Get(ctx, entry.ID, userID)
}

func (s *WatchlistService) Get(ctx context.Context, id, userID uuid.UUID) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := s.DB.WithContext(ctx).
		Preload("Movie").
		Preload("Series").
		First(&entry, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *WatchlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *WatchlistService) ListMovies(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("user_id = ? AND movie_id IS NOT NULL", userID))
}

func (s *WatchlistService) ListSeries(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("user_id = ? AND series_id IS NOT NULL", userID))
}

func (s *WatchlistService) ListByStatus(ctx context.Context, userID uuid.UUID, status models.WatchStatus) ([]models.WatchlistEntry, error) {
	if !models.ValidWatchStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.list(ctx, s.DB.WithContext(ctx).Where("user_id = ? AND status = ?", userID, status))
}

func (s *WatchlistService) list(ctx context.Context, query *gorm.DB) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	err := query.
		Preload("Movie").
		Preload("Series").
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Update merges the provided fields into the entry. No cross-field rules:
// any status may follow any other, rating and notes change independently.
func (s *WatchlistService) Update(ctx context.Context, id, userID uuid.UUID, params UpdateEntryParams) (*models.WatchlistEntry, error) {
	updates := map[string]interface{}{}
	if params.Status != nil {
		if !models.ValidWatchStatus(*params.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *params.Status
	}
	if params.Rating != nil {
		if *params.Rating < 0 || *params.Rating > 10 {
			return nil, ErrInvalidRating
		}
		updates["rating"] = *params.Rating
	}
	if params.Notes != nil {
		updates["notes"] = *params.Notes
	}

	if _, err := s.Get(ctx, id, userID); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		err := s.DB.WithContext(ctx).
			Model(&models.WatchlistEntry{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id, userID)
}

func (s *WatchlistService) Remove(ctx context.Context, id, userID uuid.UUID) error {
	result := s.DB.WithContext(ctx).Delete(&models.WatchlistEntry{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
