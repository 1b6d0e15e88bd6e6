// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MadeByJay/ai-product-search/internal/background"
	"github.com/MadeByJay/ai-product-search/internal/cache"
	"github.com/MadeByJay/ai-product-search/internal/config"
	"github.com/MadeByJay/ai-product-search/internal/database"
	"github.com/MadeByJay/ai-product-search/internal/metrics"
	"github.com/MadeByJay/ai-product-search/internal/router"
	"github.com/MadeByJay/ai-product-search/internal/services"
)

func main() {
	log := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	configureLogger(log, cfg)

	// Initialize database
	db, err := database.Initialize(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db, log)

	// Run database migrations
	if err := database.RunMigrations(db, cfg.Embedding.Dimensions, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	responseCache := newCache(cfg.Cache, log)
	defer responseCache.Close()

	runner := background.NewRunner(background.Config{
		QueueSize:   cfg.Analytics.QueueSize,
		Workers:     cfg.Analytics.Workers,
		TaskTimeout: cfg.Analytics.WriteTimeout,
	}, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, err := router.Initialize(router.Deps{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Embedder: services.NewEmbeddingService(cfg.Embedding),
		Cache:    responseCache,
		Runner:   runner,
		Metrics: metrics.New(metrics.BuildInfo{
			Version:     cfg.Build.Version,
			Commit:      cfg.Build.Commit,
			Environment: cfg.Environment,
		}),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"env":     cfg.Environment,
			"version": cfg.Build.Version,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Queued analytics and audit writes still get their chance.
	if err := runner.Close(ctx); err != nil {
		log.WithError(err).Warn("Background tasks did not drain before shutdown")
	}

	log.Info("Server exited")
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// newCache prefers Redis and falls back to the in-process store when Redis is
// unset or unreachable.
func newCache(cfg config.CacheConfig, log *logrus.Logger) cache.Store {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err == nil {
			log.WithField("addr", cfg.RedisAddr).Info("Response cache backed by Redis")
			return store
		}
		log.WithError(err).Warn("Redis unavailable; using in-memory response cache")
	}
	return cache.NewMemoryStore(time.Minute)
}
