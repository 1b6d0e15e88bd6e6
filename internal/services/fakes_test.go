package services

import (
	"context"
	"sync"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	dims   int
	calls  []string
	err    error
	failN  int
	block  bool
	vector []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, texts...)
	failing := f.failN > 0
	if failing {
		f.failN--
	}
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if failing {
		return nil, ErrEmbeddingFailed
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		if f.vector != nil {
			out[i] = f.vector
			continue
		}
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

func (f *fakeEmbedder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeSearcher struct {
	results     []models.Product
	err         error
	gotFilters  Filters
	gotLimit    int
	gotOffset   int
	cancelAfter context.CancelFunc
}

func (f *fakeSearcher) SearchWithFilters(ctx context.Context, embedding []float32, filters Filters, limit, offset int) ([]models.Product, error) {
	f.gotFilters, f.gotLimit, f.gotOffset = filters, limit, offset
	if f.cancelAfter != nil {
		f.cancelAfter()
	}
	return f.results, f.err
}

func (f *fakeSearcher) Similar(ctx context.Context, id string, limit int) ([]models.Product, error) {
	f.gotLimit = limit
	return f.results, f.err
}

type recordedEvent struct {
	query       string
	latencyMs   int
	resultCount int
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeRecorder) RecordAsync(query string, latencyMs, resultCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{query, latencyMs, resultCount})
}

func (f *fakeRecorder) Events() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...)
}

func product(id, title string, price float64, category string) models.Product {
	return models.Product{ID: id, Title: title, Description: title + " description", Price: price, Category: &category}
}

func unitVector(dims, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}
