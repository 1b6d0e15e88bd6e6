// Package handlers binds HTTP requests to the catalog, search, profile and
// analytics services.
package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/services"
)

type Searcher interface {
	Search(ctx context.Context, req services.SearchRequest) (*services.SearchResponse, error)
	Similar(ctx context.Context, id string, limit int) (*services.SearchResponse, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	Related(ctx context.Context, id string, limit int) ([]models.Product, error)
}

type SavedItems interface {
	Toggle(ctx context.Context, userID uuid.UUID, productID string) (*services.ToggleResult, error)
	CheckMembership(ctx context.Context, userID uuid.UUID, productIDs []string) ([]string, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.SavedProduct, error)
}

type Preferences interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	Upsert(ctx context.Context, userID uuid.UUID, req services.UpdatePreferencesRequest) (*models.UserPreferences, error)
}

type Users interface {
	CreateWithDefaults(ctx context.Context, req services.CreateUserRequest) (*services.CreateUserResult, error)
	Sync(ctx context.Context, req services.SyncUserRequest) (*services.SyncUserResult, error)
}

type Analytics interface {
	Summary(ctx context.Context) (*services.AnalyticsSummary, error)
	TopQueries(ctx context.Context, limit int) ([]services.TopQuery, error)
	Daily(ctx context.Context, days int) ([]services.DailyCount, error)
}
