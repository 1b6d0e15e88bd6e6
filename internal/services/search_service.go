// internal/services/search_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/config"
	"github.com/MadeByJay/ai-product-search/internal/models"
)

const ErrMsgQueryRequired = "query required"

// VectorSearcher is the part of the catalog the orchestrator needs.
type VectorSearcher interface {
	SearchWithFilters(ctx context.Context, embedding []float32, filters Filters, limit, offset int) ([]models.Product, error)
	Similar(ctx context.Context, id string, limit int) ([]models.Product, error)
}

// SearchRecorder accepts completed-search events. It must not block.
type SearchRecorder interface {
	RecordAsync(query string, latencyMs, resultCount int)
}

type SearchRequest struct {
	Query    string   `json:"query"`
	Limit    *int     `json:"limit" validate:"omitempty,min=1,max=500"`
	PriceMax *float64 `json:"priceMax" validate:"omitempty,gt=0"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Offset   *int     `json:"offset" validate:"omitempty,min=0"`
}

type SearchMeta struct {
	LatencyMs int64 `json:"latency_ms"`
	Count     int   `json:"count"`
}

type SearchResponse struct {
	Results []models.Product `json:"results"`
	Meta    *SearchMeta      `json:"meta,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type SearchService struct {
	embedder Embedder
	store    VectorSearcher
	recorder SearchRecorder
	cfg      config.SearchConfig
	log      *logrus.Logger
}

func NewSearchService(embedder Embedder, store VectorSearcher, recorder SearchRecorder, cfg config.SearchConfig, log *logrus.Logger) *SearchService {
	return &SearchService{
		embedder: embedder,
		store:    store,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
	}
}

// Search embeds query and returns the nearest products. A blank query is not
// an error: it yields an empty result carrying ErrMsgQueryRequired.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &SearchResponse{Results: []models.Product{}, Error: ErrMsgQueryRequired}, nil
	}

	limit := s.cfg.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	offset := 0
	if req.Offset != nil {
		offset = *req.Offset
	}
	filters := Filters{PriceMax: req.PriceMax, Category: req.Category}

	start := time.Now()

	text := query
	if s.cfg.InjectHints {
		text = withFilterHints(query, filters)
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, s.upstreamError(ctx, "embed", ErrEmbeddingFailed, err)
	}

	results, err := s.store.SearchWithFilters(ctx, vec, filters, limit, offset)
	if err != nil {
		return nil, s.upstreamError(ctx, "vector search", ErrSearchUnavailable, err)
	}

	// The caller may have gone away while the query ran.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	s.recorder.RecordAsync(query, int(latency), len(results))

	return &SearchResponse{
		Results: results,
		Meta:    &SearchMeta{LatencyMs: latency, Count: len(results)},
	}, nil
}

func (s *SearchService) Similar(ctx context.Context, id string, limit int) (*SearchResponse, error) {
	results, err := s.store.Similar(ctx, id, limit)
	if err != nil {
		return nil, s.upstreamError(ctx, "similar", ErrSearchUnavailable, err)
	}
	return &SearchResponse{Results: results}, nil
}

// upstreamError maps a failed dependency call onto the orchestrator's error
// kinds. Caller cancellation passes through untouched.
func (s *SearchService) upstreamError(ctx context.Context, stage string, kind, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	entry := s.log.WithError(err).WithField("stage", stage)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		entry.Warn("Search dependency timed out")
		return fmt.Errorf("%w: %s: %w", ErrSearchTimeout, stage, err)
	}

	entry.Error("Search dependency failed")
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// withFilterHints appends the structured filters to the text that gets
// embedded so they also pull the vector towards matching products.
func withFilterHints(query string, filters Filters) string {
	var sb strings.Builder
	sb.WriteString(query)
	if filters.Category != nil && *filters.Category != "" {
		sb.WriteString(". Category: ")
		sb.WriteString(*filters.Category)
	}
	if filters.PriceMax != nil {
		sb.WriteString(". Price under $")
		sb.WriteString(strconv.FormatFloat(*filters.PriceMax, 'f', -1, 64))
	}
	return sb.String()
}
