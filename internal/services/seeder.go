// internal/services/seeder.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/MadeByJay/ai-product-search/internal/models"
)

type ProductUpserter interface {
	Upsert(ctx context.Context, p *models.Product, embedding []float32) error
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

type ImageRehoster interface {
	Enabled() bool
	RehostProductImage(ctx context.Context, productID string, img *GeneratedImage) (*UploadResult, error)
}

type SeedOptions struct {
	BatchSize      int
	GenerateImages bool
	ImageSample    int
	Concurrency    int
}

// Seeder embeds and upserts a catalog in batches.
type Seeder struct {
	embedder Embedder
	store    ProductUpserter
	images   ImageGenerator
	storage  ImageRehoster
	opts     SeedOptions
	log      *logrus.Logger

	embedPolicy  retryPolicy
	upsertPolicy retryPolicy
}

func NewSeeder(embedder Embedder, store ProductUpserter, images ImageGenerator, storage ImageRehoster, opts SeedOptions, log *logrus.Logger) *Seeder {
	if opts.BatchSize < 1 {
		opts.BatchSize = 100
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Seeder{
		embedder: embedder,
		store:    store,
		images:   images,
		storage:  storage,
		opts:     opts,
		log:      log,

		embedPolicy:  embedRetry,
		upsertPolicy: upsertRetry,
	}
}

func (s *Seeder) Run(ctx context.Context, items []models.Product) error {
	s.log.WithFields(logrus.Fields{
		"count":           len(items),
		"batch":           s.opts.BatchSize,
		"generate_images": s.opts.GenerateImages,
		"image_sample":    s.opts.ImageSample,
	}).Info("Seeding catalog")

	if err := s.assignImages(ctx, items); err != nil {
		return err
	}

	for start := 0; start < len(items); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := s.indexBatch(ctx, items[start:end], start/s.opts.BatchSize+1); err != nil {
			return err
		}
		s.log.Infof("Indexed %d/%d", end, len(items))
	}

	s.log.Info("Seed complete")
	return nil
}

func (s *Seeder) indexBatch(ctx context.Context, batch []models.Product, n int) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].EmbeddingText()
	}

	var vectors [][]float32
	err := doWithRetry(ctx, s.log, fmt.Sprintf("embeddings batch %d", n), s.embedPolicy, func(ctx context.Context) error {
		var err error
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("embed batch %d: %w", n, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i := range batch {
		p := &batch[i]
		vec := vectors[i]
		g.Go(func() error {
			return doWithRetry(gctx, s.log, "upsert "+p.ID, s.upsertPolicy, func(ctx context.Context) error {
				return s.store.Upsert(ctx, p, vec)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("upsert batch %d: %w", n, err)
	}
	return nil
}

// assignImages gives every item an image URL. The first ImageSample items get
// a generated image when enabled; any failure falls back to the placeholder.
func (s *Seeder) assignImages(ctx context.Context, items []models.Product) error {
	sample := 0
	if s.opts.GenerateImages && s.images != nil {
		sample = s.opts.ImageSample
		if sample > len(items) {
			sample = len(items)
		}
	}

	for i := sample; i < len(items); i++ {
		if items[i].ImageURL == nil || *items[i].ImageURL == "" {
			setImage(&items[i], PlaceholderImageURL(items[i].ID))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i := 0; i < sample; i++ {
		p := &items[i]
		g.Go(func() error {
			url, err := s.generatedImageURL(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.WithError(err).WithField("product_id", p.ID).Warn("Falling back to placeholder image")
				url = PlaceholderImageURL(p.ID)
			}
			setImage(p, url)
			return nil
		})
	}
	return g.Wait()
}

func (s *Seeder) generatedImageURL(ctx context.Context, p *models.Product) (string, error) {
	category := ""
	if p.Category != nil {
		category = strings.ToLower(*p.Category)
	}
	prompt := fmt.Sprintf("%s, high-quality studio product photo, %s context", p.Title, category)

	var img *GeneratedImage
	err := doWithRetry(ctx, s.log, "image for "+p.ID, s.embedPolicy, func(ctx context.Context) error {
		var err error
		img, err = s.images.GenerateImage(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}

	if s.storage != nil && s.storage.Enabled() {
		res, err := s.storage.RehostProductImage(ctx, p.ID, img)
		if err != nil {
			return "", err
		}
		return res.URL, nil
	}
	if img.URL == "" {
		return "", fmt.Errorf("image for %s returned inline data but storage is not configured", p.ID)
	}
	return img.URL, nil
}

func setImage(p *models.Product, url string) {
	p.ImageURL = &url
}
