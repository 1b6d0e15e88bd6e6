// internal/router/router.go
package router

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/MadeByJay/ai-product-search/internal/background"
	"github.com/MadeByJay/ai-product-search/internal/cache"
	"github.com/MadeByJay/ai-product-search/internal/config"
	"github.com/MadeByJay/ai-product-search/internal/handlers"
	"github.com/MadeByJay/ai-product-search/internal/metrics"
	"github.com/MadeByJay/ai-product-search/internal/middleware"
	"github.com/MadeByJay/ai-product-search/internal/services"
)

// Deps are the long-lived resources owned by the process.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *logrus.Logger
	Embedder services.Embedder
	Cache    cache.Store
	Runner   *background.Runner
	Metrics  *metrics.Metrics
}

func Initialize(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, err
	}

	// Initialize services
	productStore := services.NewProductStore(deps.DB, cfg.Embedding.Dimensions, cfg.Search.IVFFlatProbes, cfg.Database.QueryTimeout)
	analyticsService := services.NewAnalyticsService(deps.DB, deps.Runner, deps.Log, searchEventOutcome(deps.Metrics))
	searchService := services.NewSearchService(deps.Embedder, productStore, analyticsService, cfg.Search, deps.Log)
	productService := services.NewProductService(productStore)
	savedItemService := services.NewSavedItemService(deps.DB)
	preferencesService := services.NewPreferencesService(deps.DB)
	userService := services.NewUserService(deps.DB)
	auditService := services.NewAuditService(deps.DB)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService, deps.Log)
	productHandler := handlers.NewProductHandler(productService)
	profileHandler := handlers.NewProfileHandler(savedItemService, preferencesService)
	userHandler := handlers.NewUserHandler(userService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	healthHandler := handlers.NewHealthHandler(sqlDB, cfg.Build.Version)

	searchLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	r := gin.New()

	// Global middleware
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Search
	r.POST("/search", searchLimiter.Middleware(), searchHandler.Search)
	r.GET("/similar/:id", searchHandler.Similar)

	// Products
	products := r.Group("/products")
	{
		products.GET("/:id", middleware.CacheResponse(deps.Cache, cfg.Cache.ProductTTL, deps.Log), productHandler.GetProduct)
		products.GET("/:id/similar", middleware.CacheResponse(deps.Cache, cfg.Cache.SimilarTTL, deps.Log), productHandler.GetSimilarProducts)
	}

	// Profile routes act on behalf of a user and must come through the proxy
	profile := r.Group("/profile/:userId")
	profile.Use(middleware.InternalAuth(cfg, deps.Log))
	profile.Use(middleware.AuditMutations(auditService, deps.Runner))
	{
		profile.GET("/saved", profileHandler.ListSaved)
		profile.POST("/saved", profileHandler.ToggleSaved)
		profile.GET("/saved/check", profileHandler.CheckSaved)
		profile.GET("/preferences", profileHandler.GetPreferences)
		profile.POST("/preferences", profileHandler.UpdatePreferences)
	}

	// Users
	users := r.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.POST("/sync", userHandler.SyncUser)
	}

	// Analytics
	analytics := r.Group("/analytics")
	{
		analytics.GET("/summary", analyticsHandler.Summary)
		analytics.GET("/top-queries", analyticsHandler.TopQueries)
		analytics.GET("/daily", analyticsHandler.Daily)
	}

	return r, nil
}

// searchEventOutcome counts analytics writes so dropped or failed events are
// visible even though callers never see them.
func searchEventOutcome(m *metrics.Metrics) services.RecordOutcome {
	return func(err error) {
		outcome := "recorded"
		switch {
		case errors.Is(err, services.ErrSearchEventDropped):
			outcome = "dropped"
		case err != nil:
			outcome = "failed"
		}
		m.SearchEvents.WithLabelValues(outcome).Inc()
	}
}
