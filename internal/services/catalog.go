package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lay2al/movie-and--series-managment-system/internal/models"
	"gorm.io/gorm"
)

// CatalogService answers the one question the watchlist engine needs from
// the catalog: does an item of this kind exist.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) MovieExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Movie{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CatalogService) SeriesExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Series{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
