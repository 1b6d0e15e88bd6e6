// internal/models/product.go
package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:text"`
	Title       string           `json:"title" gorm:"type:text;not null"`
	Description string           `json:"description" gorm:"type:text;not null"`
	Price       float64          `json:"price" gorm:"type:numeric(10,2);not null"`
	Category    *string          `json:"category" gorm:"type:text"`
	ImageURL    *string          `json:"image_url" gorm:"type:text"`
	Embedding   *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
}

// EmbeddingText is the canonical text a product's vector is computed from.
func (p *Product) EmbeddingText() string {
	category := ""
	if p.Category != nil {
		category = *p.Category
	}
	return p.Title + ". " + p.Description + ". Category: " + category + ". Price: $" + formatPrice(p.Price)
}

// SavedProduct is a catalog row annotated with the time a user saved it.
type SavedProduct struct {
	Product
	CreatedAt time.Time `json:"created_at"`
}
