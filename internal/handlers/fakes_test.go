package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/services"
)

type fakeSearcher struct {
	lastReq   services.SearchRequest
	lastLimit int
	resp      *services.SearchResponse
	err       error
}

func (f *fakeSearcher) Search(_ context.Context, req services.SearchRequest) (*services.SearchResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSearcher) Similar(_ context.Context, _ string, limit int) (*services.SearchResponse, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeProducts struct {
	products  map[string]models.Product
	lastLimit int
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, services.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProducts) Related(ctx context.Context, id string, limit int) ([]models.Product, error) {
	if _, err := f.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	f.lastLimit = limit
	out := make([]models.Product, 0)
	for pid, p := range f.products {
		if pid != id {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSaved struct {
	mu    sync.Mutex
	items map[uuid.UUID]map[string]bool
}

func newFakeSaved() *fakeSaved {
	return &fakeSaved{items: make(map[uuid.UUID]map[string]bool)}
}

func (f *fakeSaved) Toggle(_ context.Context, userID uuid.UUID, productID string) (*services.ToggleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if productID == "ghost" {
		return nil, services.ErrProductNotFound
	}
	if f.items[userID] == nil {
		f.items[userID] = make(map[string]bool)
	}
	if f.items[userID][productID] {
		delete(f.items[userID], productID)
		return &services.ToggleResult{Saved: false}, nil
	}
	f.items[userID][productID] = true
	return &services.ToggleResult{Saved: true}, nil
}

func (f *fakeSaved) CheckMembership(_ context.Context, userID uuid.UUID, ids []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0)
	for _, id := range ids {
		if f.items[userID][id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeSaved) ListSaved(_ context.Context, userID uuid.UUID) ([]models.SavedProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SavedProduct, 0)
	for id := range f.items[userID] {
		out = append(out, models.SavedProduct{Product: models.Product{ID: id}})
	}
	return out, nil
}

type fakePrefs struct {
	stored map[uuid.UUID]*models.UserPreferences
}

func (f *fakePrefs) Get(_ context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	return f.stored[userID], nil
}

func (f *fakePrefs) Upsert(_ context.Context, userID uuid.UUID, req services.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	p := &models.UserPreferences{
		UserID:          userID,
		DefaultCategory: req.DefaultCategory,
		PriceMax:        req.PriceMax,
		PageLimit:       req.PageLimit,
		Theme:           req.Theme,
	}
	f.stored[userID] = p
	return p, nil
}

type fakeUsers struct {
	emails map[string]uuid.UUID
}

func (f *fakeUsers) CreateWithDefaults(_ context.Context, req services.CreateUserRequest) (*services.CreateUserResult, error) {
	if _, ok := f.emails[req.Email]; ok {
		return nil, services.ErrUserExists
	}
	id := uuid.MustParse(req.ID)
	f.emails[req.Email] = id
	return &services.CreateUserResult{ID: id, Email: req.Email, Created: true}, nil
}

func (f *fakeUsers) Sync(_ context.Context, req services.SyncUserRequest) (*services.SyncUserResult, error) {
	id, ok := f.emails[req.Email]
	if !ok {
		id = uuid.New()
		f.emails[req.Email] = id
	}
	return &services.SyncUserResult{ID: id, Email: req.Email, Name: req.Name}, nil
}

type fakeAnalytics struct {
	lastTop  int
	lastDays int
	err      error
}

func (f *fakeAnalytics) Summary(context.Context) (*services.AnalyticsSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.AnalyticsSummary{}, nil
}

func (f *fakeAnalytics) TopQueries(_ context.Context, limit int) ([]services.TopQuery, error) {
	f.lastTop = limit
	return []services.TopQuery{{Query: "lamp", Hits: 3}}, f.err
}

func (f *fakeAnalytics) Daily(_ context.Context, days int) ([]services.DailyCount, error) {
	f.lastDays = days
	return make([]services.DailyCount, days), f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

var errBoom = errors.New("boom")
