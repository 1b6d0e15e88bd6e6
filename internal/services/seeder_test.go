package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadeByJay/ai-product-search/internal/models"
	"github.com/MadeByJay/ai-product-search/internal/testutil"
)

type fakeUpserter struct {
	mu      sync.Mutex
	rows    map[string][]float32
	failFor map[string]int
}

func (f *fakeUpserter) Upsert(ctx context.Context, p *models.Product, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[p.ID] > 0 {
		f.failFor[p.ID]--
		return errors.New("deadlock detected")
	}
	if f.rows == nil {
		f.rows = map[string][]float32{}
	}
	f.rows[p.ID] = embedding
	return nil
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	failIDs map[string]bool
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	for id := range f.failIDs {
		if len(prompt) >= len(id) && prompt[:len(id)] == id {
			return nil, errors.New("content policy violation")
		}
	}
	return &GeneratedImage{URL: "https://images.example.com/" + prompt[:4] + ".png"}, nil
}

type fakeStorage struct {
	enabled bool
}

func (f *fakeStorage) Enabled() bool { return f.enabled }

func (f *fakeStorage) RehostProductImage(ctx context.Context, productID string, img *GeneratedImage) (*UploadResult, error) {
	return &UploadResult{URL: "https://cdn.example.com/products/" + productID + ".png"}, nil
}

var fastRetry = retryPolicy{attempts: 3, base: time.Millisecond}

func newTestSeeder(e Embedder, u ProductUpserter, images ImageGenerator, storage ImageRehoster, opts SeedOptions) *Seeder {
	s := NewSeeder(e, u, images, storage, opts, testutil.NewLogger())
	s.embedPolicy = fastRetry
	s.upsertPolicy = fastRetry
	return s
}

func TestSeederEmbedsInBatchesAndUpsertsAll(t *testing.T) {
	embedder := &fakeEmbedder{dims: 4}
	store := &fakeUpserter{}
	items := SynthesizeCatalog(25, rand.New(rand.NewSource(3)))

	seeder := newTestSeeder(embedder, store, nil, nil, SeedOptions{BatchSize: 10, Concurrency: 4})
	require.NoError(t, seeder.Run(context.Background(), items))

	assert.Len(t, store.rows, 25)
	assert.Len(t, embedder.Calls(), 25)
	assert.Equal(t, items[0].EmbeddingText(), embedder.Calls()[0])

	for _, p := range items {
		require.NotNil(t, p.ImageURL)
		assert.Equal(t, PlaceholderImageURL(p.ID), *p.ImageURL)
	}
}

func TestSeederRetriesTransientFailures(t *testing.T) {
	embedder := &fakeEmbedder{dims: 4, failN: 2}
	store := &fakeUpserter{failFor: map[string]int{"p2": 2}}
	items := SynthesizeCatalog(3, rand.New(rand.NewSource(3)))

	seeder := newTestSeeder(embedder, store, nil, nil, SeedOptions{BatchSize: 10})
	require.NoError(t, seeder.Run(context.Background(), items))
	assert.Len(t, store.rows, 3)
}

func TestSeederGivesUpAfterMaxAttempts(t *testing.T) {
	embedder := &fakeEmbedder{dims: 4, failN: 3}
	store := &fakeUpserter{}
	items := SynthesizeCatalog(3, rand.New(rand.NewSource(3)))

	seeder := newTestSeeder(embedder, store, nil, nil, SeedOptions{BatchSize: 10})
	err := seeder.Run(context.Background(), items)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Empty(t, store.rows)
}

func TestSeederGeneratesSampleImagesWithFallback(t *testing.T) {
	items := []models.Product{
		product("p1", "walnut desk", 500, "Office"),
		product("p2", "brass lamp", 90, "Lighting"),
		product("p3", "oak table", 700, "Dining"),
	}
	images := &fakeImages{failIDs: map[string]bool{"brass": true}}

	seeder := newTestSeeder(&fakeEmbedder{dims: 4}, &fakeUpserter{}, images, &fakeStorage{enabled: false}, SeedOptions{BatchSize: 10, GenerateImages: true, ImageSample: 2, Concurrency: 2})
	require.NoError(t, seeder.Run(context.Background(), items))

	assert.Equal(t, "https://images.example.com/waln.png", *items[0].ImageURL)
	assert.Equal(t, PlaceholderImageURL("p2"), *items[1].ImageURL)
	assert.Equal(t, PlaceholderImageURL("p3"), *items[2].ImageURL)
	assert.Contains(t, images.prompts, "walnut desk, high-quality studio product photo, office context")
}

func TestSeederRehostsGeneratedImages(t *testing.T) {
	items := []models.Product{product("p1", "walnut desk", 500, "Office")}

	seeder := newTestSeeder(&fakeEmbedder{dims: 4}, &fakeUpserter{}, &fakeImages{}, &fakeStorage{enabled: true}, SeedOptions{GenerateImages: true, ImageSample: 5})
	require.NoError(t, seeder.Run(context.Background(), items))

	assert.Equal(t, "https://cdn.example.com/products/p1.png", *items[0].ImageURL)
}

func TestDoWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := doWithRetry(ctx, testutil.NewLogger(), "cancel", retryPolicy{attempts: 5, base: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
