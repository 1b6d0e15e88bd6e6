// internal/services/preferences_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

type UpdatePreferencesRequest struct {
	DefaultCategory *string  `json:"default_category" validate:"omitempty,max=100"`
	PriceMax        *float64 `json:"price_max" validate:"omitempty,gt=0"`
	PageLimit       *int     `json:"page_limit" validate:"omitempty,min=1,max=500"`
	Theme           *string  `json:"theme" validate:"omitempty,oneof=light dark system"`
}

type PreferencesService struct {
	db *gorm.DB
}

func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// Get returns the stored preferences or nil when the user has none.
func (s *PreferencesService) Get(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &prefs, nil
}

// Upsert replaces the whole row. Fields left out of req are stored as null.
func (s *PreferencesService) Upsert(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*models.UserPreferences, error) {
	return upsertPreferences(s.db.WithContext(ctx), userID, req)
}

func upsertPreferences(db *gorm.DB, userID uuid.UUID, req UpdatePreferencesRequest) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{
		UserID:          userID,
		DefaultCategory: req.DefaultCategory,
		PriceMax:        req.PriceMax,
		PageLimit:       req.PageLimit,
		Theme:           req.Theme,
		UpdatedAt:       time.Now().UTC(),
	}

	err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_category", "price_max", "page_limit", "theme", "updated_at"}),
		}).
		Create(prefs).Error
	if err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}
	return prefs, nil
}
