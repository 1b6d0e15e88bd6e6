// internal/services/product_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

const (
	maxSearchLimit  = 500
	maxSimilarLimit = 100
)

const productColumns = "id, title, description, price, category, image_url"

// Filters narrow a vector search. Nil fields impose no constraint.
type Filters struct {
	PriceMax *float64 `json:"priceMax,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// ProductStore is the pgvector-backed catalog.
type ProductStore struct {
	db           *gorm.DB
	dimensions   int
	probes       int
	queryTimeout time.Duration
}

func NewProductStore(db *gorm.DB, dimensions, probes int, queryTimeout time.Duration) *ProductStore {
	return &ProductStore{
		db:           db,
		dimensions:   dimensions,
		probes:       probes,
		queryTimeout: queryTimeout,
	}
}

func (s *ProductStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Upsert inserts p or replaces every column of the existing row with the same
// id, embedding included, in a single statement.
func (s *ProductStore) Upsert(ctx context.Context, p *models.Product, embedding []float32) error {
	if len(embedding) != s.dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimensions, len(embedding), s.dimensions)
	}

	vec := pgvector.NewVector(embedding)
	p.Embedding = &vec

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "price", "category", "image_url", "embedding"}),
		}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// buildSearchQuery renders the filtered nearest-neighbour query. Ordering uses
// cosine distance so the ivfflat vector_cosine_ops index serves it.
func buildSearchQuery(embedding []float32, filters Filters, limit, offset int) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, 5)

	sb.WriteString("SELECT " + productColumns + " FROM products WHERE embedding IS NOT NULL")
	if filters.PriceMax != nil {
		sb.WriteString(" AND price <= ?")
		args = append(args, *filters.PriceMax)
	}
	if filters.Category != nil && *filters.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, *filters.Category)
	}
	sb.WriteString(" ORDER BY embedding <=> ? LIMIT ? OFFSET ?")
	args = append(args,
		pgvector.NewVector(embedding),
		utils.Clamp(limit, 1, maxSearchLimit),
		utils.ClampOffset(offset),
	)

	return sb.String(), args
}

func buildSimilarQuery(id string, limit int) (string, []interface{}) {
	query := "SELECT p.id, p.title, p.description, p.price, p.category, p.image_url" +
		" FROM products p, (SELECT embedding FROM products WHERE id = ? AND embedding IS NOT NULL LIMIT 1) target" +
		" WHERE p.id <> ? AND p.embedding IS NOT NULL" +
		" ORDER BY p.embedding <=> target.embedding LIMIT ?"
	return query, []interface{}{id, id, utils.Clamp(limit, 1, maxSimilarLimit)}
}

// SearchWithFilters returns the products nearest to embedding that satisfy
// every set filter.
func (s *ProductStore) SearchWithFilters(ctx context.Context, embedding []float32, filters Filters, limit, offset int) ([]models.Product, error) {
	query, args := buildSearchQuery(embedding, filters, limit, offset)
	return s.nearest(ctx, query, args)
}

// Similar returns the products nearest to the stored embedding of id, never
// id itself. A missing product or one without an embedding yields no rows.
func (s *ProductStore) Similar(ctx context.Context, id string, limit int) ([]models.Product, error) {
	query, args := buildSimilarQuery(id, limit)
	return s.nearest(ctx, query, args)
}

func (s *ProductStore) nearest(ctx context.Context, query string, args []interface{}) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	products := make([]models.Product, 0)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.probes > 0 {
			// SET does not take bind parameters; probes is an int from config.
			if err := tx.Exec(fmt.Sprintf("SET LOCAL ivfflat.probes = %d", s.probes)).Error; err != nil {
				return err
			}
		}
		return tx.Raw(query, args...).Scan(&products).Error
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var product models.Product
	err := s.db.WithContext(ctx).Select(productColumns).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &product, nil
}
