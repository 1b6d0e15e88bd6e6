// internal/services/embedding_service.go
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/MadeByJay/ai-product-search/internal/config"
)

// Embedder turns text into vectors of a fixed width.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

type EmbeddingService struct {
	client     *openai.Client
	model      string
	imageModel string
	dimensions int
	timeout    time.Duration
}

func NewEmbeddingService(cfg config.EmbeddingConfig) *EmbeddingService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &EmbeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
	}
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one upstream call and returns vectors in input
// order. Every vector must have exactly Dimensions() entries.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != s.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimensions, len(data.Embedding), s.dimensions)
		}
		vectors[i] = data.Embedding
	}

	return vectors, nil
}

// GeneratedImage holds whichever form the image API returned.
type GeneratedImage struct {
	URL  string
	Data []byte
}

// GenerateImage renders a product photo for prompt.
func (s *EmbeddingService) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		Model:  s.imageModel,
		Size:   openai.CreateImageSize1024x1024,
		N:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("create image failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty image response")
	}

	img := &GeneratedImage{URL: resp.Data[0].URL}
	if resp.Data[0].B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		img.Data = data
	}
	if img.URL == "" && len(img.Data) == 0 {
		return nil, errors.New("image response carried neither URL nor data")
	}
	return img, nil
}
