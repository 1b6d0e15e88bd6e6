// internal/services/catalog.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"os"
	"strings"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

var (
	catalogAdjectives = []string{
		"modern", "vintage", "industrial", "minimalist", "sleek", "compact",
		"ergonomic", "artisan", "classic", "premium", "eco-friendly",
		"lightweight", "durable", "foldable", "portable",
	}
	catalogNouns = []string{
		"desk", "chair", "sofa", "bookshelf", "table", "lamp", "stool",
		"cabinet", "sideboard", "drawer chest", "coffee table", "dining table",
		"floor lamp", "monitor stand", "nightstand",
	}
	catalogCategories = []string{
		"Furniture", "Office", "Lighting", "Decor", "Storage", "Bedroom",
		"Living Room", "Dining",
	}
	categoryBasePrice = map[string]float64{
		"Furniture":   300,
		"Office":      200,
		"Lighting":    80,
		"Decor":       60,
		"Storage":     150,
		"Bedroom":     250,
		"Living Room": 280,
		"Dining":      320,
	}
)

const (
	defaultBasePrice = 150
	minSynthPrice    = 20
	defaultCategory  = "General"
)

// PlaceholderImageURL is the deterministic stock image used when no generated
// image is available.
func PlaceholderImageURL(id string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(id) + "/600/400"
}

// SynthesizeProduct builds catalog item number i from the vocabulary.
func SynthesizeProduct(i int, rng *rand.Rand) models.Product {
	adj := catalogAdjectives[rng.Intn(len(catalogAdjectives))]
	noun := catalogNouns[rng.Intn(len(catalogNouns))]
	category := catalogCategories[rng.Intn(len(catalogCategories))]

	base, ok := categoryBasePrice[category]
	if !ok {
		base = defaultBasePrice
	}
	price := math.Max(minSynthPrice, math.Round(base*(0.7+rng.Float64()*0.9)))

	return models.Product{
		ID:          fmt.Sprintf("p%d", i),
		Title:       adj + " " + noun,
		Description: fmt.Sprintf("A %s %s suitable for %s spaces. Designed for comfort and durability.", adj, noun, strings.ToLower(category)),
		Price:       price,
		Category:    &category,
	}
}

func SynthesizeCatalog(n int, rng *rand.Rand) []models.Product {
	items := make([]models.Product, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, SynthesizeProduct(i, rng))
	}
	return items
}

type baseProduct struct {
	ID          interface{} `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"image_url"`
}

// LoadBaseProducts reads hand-curated products from a JSON array. A missing
// file is not an error.
func LoadBaseProducts(path string) ([]models.Product, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read base products: %w", err)
	}

	var base []baseProduct
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, fmt.Errorf("parse base products: %w", err)
	}

	items := make([]models.Product, 0, len(base))
	for idx, b := range base {
		id := fmt.Sprintf("base-%d", idx)
		switch v := b.ID.(type) {
		case string:
			if v != "" {
				id = v
			}
		case float64:
			id = fmt.Sprintf("%.0f", v)
		}

		category := b.Category
		if category == "" {
			category = defaultCategory
		}

		p := models.Product{
			ID:          id,
			Title:       b.Title,
			Description: b.Description,
			Price:       b.Price,
			Category:    &category,
		}
		if b.ImageURL != "" {
			imageURL := b.ImageURL
			p.ImageURL = &imageURL
		}
		items = append(items, p)
	}
	return items, nil
}

// BuildCatalog tops up the base products with synthetic ones until count is
// reached.
func BuildCatalog(base []models.Product, count int, rng *rand.Rand) []models.Product {
	remaining := count - len(base)
	if remaining < 0 {
		remaining = 0
	}
	return append(append([]models.Product{}, base...), SynthesizeCatalog(remaining, rng)...)
}
