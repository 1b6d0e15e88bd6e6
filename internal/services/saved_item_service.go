// internal/services/saved_item_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

type SavedItemService struct {
	db *gorm.DB
}

type ToggleSavedRequest struct {
	ProductID string `json:"productId" validate:"trimmed_required,max=200"`
}

type ToggleResult struct {
	Saved bool `json:"saved"`
}

func NewSavedItemService(db *gorm.DB) *SavedItemService {
	return &SavedItemService{db: db}
}

// Toggle flips whether productID is saved for userID and reports the new
// state. The delete-then-insert pair is not serialized: two concurrent
// toggles of the same pair may both insert, and the conflict clause turns
// the second into a no-op.
func (s *SavedItemService) Toggle(ctx context.Context, userID uuid.UUID, productID string) (*ToggleResult, error) {
	db := s.db.WithContext(ctx)

	res := db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.SavedItem{})
	if res.Error != nil {
		return nil, fmt.Errorf("unsave item: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return &ToggleResult{Saved: false}, nil
	}

	item := models.SavedItem{UserID: userID, ProductID: productID}
	err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	return &ToggleResult{Saved: true}, nil
}

// CheckMembership returns the subset of productIDs saved by userID. An empty
// input returns without touching the database.
func (s *SavedItemService) CheckMembership(ctx context.Context, userID uuid.UUID, productIDs []string) ([]string, error) {
	saved := make([]string, 0)
	if len(productIDs) == 0 {
		return saved, nil
	}

	err := s.db.WithContext(ctx).
		Model(&models.SavedItem{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &saved).Error
	if err != nil {
		return nil, fmt.Errorf("check saved items: %w", err)
	}
	return saved, nil
}

// ListSaved returns the user's saved products, most recently saved first.
func (s *SavedItemService) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.SavedProduct, error) {
	items := make([]models.SavedProduct, 0)
	err := s.db.WithContext(ctx).
		Table("saved_items AS s").
		Select("p.id, p.title, p.description, p.price, p.category, p.image_url, s.created_at").
		Joins("JOIN products AS p ON p.id = s.product_id").
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list saved items: %w", err)
	}
	return items, nil
}
