// cmd/seed/main.go
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MadeByJay/ai-product-search/internal/config"
	"github.com/MadeByJay/ai-product-search/internal/database"
	"github.com/MadeByJay/ai-product-search/internal/services"
)

type seedFlags struct {
	count          int
	batch          int
	baseFile       string
	generateImages bool
	imageSample    int
	concurrency    int
	randomSeed     int64
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	flags := &seedFlags{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Embed and load a product catalog into the vector store",
		Long: `seed builds a catalog from an optional JSON base file plus synthesized
products, embeds each product and upserts it into Postgres. It runs the schema
bootstrap first, so it can target an empty database.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), log, flags)
		},
	}

	cmd.Flags().IntVar(&flags.count, "count", 600, "total number of products to index")
	cmd.Flags().IntVar(&flags.batch, "batch", 100, "products per embeddings request")
	cmd.Flags().StringVar(&flags.baseFile, "base-file", "data/seed/products.json", "JSON array of base products; skipped when missing")
	cmd.Flags().BoolVar(&flags.generateImages, "generate-images", false, "generate product images with the image model")
	cmd.Flags().IntVar(&flags.imageSample, "image-sample", 50, "how many leading products get a generated image")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 4, "parallel upserts and image requests")
	cmd.Flags().Int64Var(&flags.randomSeed, "random-seed", 0, "seed for synthesized products; 0 uses the clock")

	return cmd
}

func runSeed(ctx context.Context, log *logrus.Logger, flags *seedFlags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		return err
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.Initialize(cfg.Database, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize database")
		return err
	}
	defer database.Close(db, log)

	if err := database.RunMigrations(db, cfg.Embedding.Dimensions, log); err != nil {
		log.WithError(err).Error("Failed to run migrations")
		return err
	}

	base, err := services.LoadBaseProducts(flags.baseFile)
	if err != nil {
		log.WithError(err).WithField("file", flags.baseFile).Error("Failed to read base products")
		return err
	}

	randomSeed := flags.randomSeed
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	items := services.BuildCatalog(base, flags.count, rand.New(rand.NewSource(randomSeed)))
	log.WithFields(logrus.Fields{
		"base":      len(base),
		"total":     len(items),
		"base_file": flags.baseFile,
	}).Info("Catalog assembled")

	embedder := services.NewEmbeddingService(cfg.Embedding)

	var rehoster services.ImageRehoster
	if storage, err := services.NewStorageService(cfg.AWS); err != nil {
		log.WithError(err).Warn("Object storage unavailable; generated images will not be re-hosted")
	} else {
		rehoster = storage
	}

	store := services.NewProductStore(db, cfg.Embedding.Dimensions, cfg.Search.IVFFlatProbes, 0)
	seeder := services.NewSeeder(embedder, store, embedder, rehoster, services.SeedOptions{
		BatchSize:      flags.batch,
		GenerateImages: flags.generateImages,
		ImageSample:    flags.imageSample,
		Concurrency:    flags.concurrency,
	}, log)

	start := time.Now()
	if err := seeder.Run(ctx, items); err != nil {
		log.WithError(err).Error("Seed failed")
		return err
	}

	log.WithField("duration", time.Since(start).Round(time.Millisecond).String()).Info("Seed finished")
	return nil
}
