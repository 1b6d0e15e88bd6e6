// internal/services/product_service.go
package services

import (
	"context"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const (
	defaultRelatedLimit = 12
	maxRelatedLimit     = 50
)

// CatalogReader is the read side of the catalog.
type CatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Similar(ctx context.Context, id string, limit int) ([]models.Product, error)
}

// ProductService backs the product detail page.
type ProductService struct {
	store CatalogReader
}

func NewProductService(store CatalogReader) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.FindByID(ctx, id)
}

// Related lists products similar to id. Unlike the raw store call it fails
// with ErrProductNotFound when id does not exist.
func (s *ProductService) Related(ctx context.Context, id string, limit int) ([]models.Product, error) {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultRelatedLimit
	}
	return s.store.Similar(ctx, id, utils.Clamp(limit, 1, maxRelatedLimit))
}
