// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-purchase-insights/internal/analysis"
	"github.com/tbourn/go-purchase-insights/internal/config"
	"github.com/tbourn/go-purchase-insights/internal/domain"
	"github.com/tbourn/go-purchase-insights/internal/http/handlers"
	"github.com/tbourn/go-purchase-insights/internal/http/middleware"
	"github.com/tbourn/go-purchase-insights/internal/repo"
	"github.com/tbourn/go-purchase-insights/internal/search"
	"github.com/tbourn/go-purchase-insights/internal/services"
	"github.com/tbourn/go-purchase-insights/internal/store"
)

// bucketRepoShim adapts the repository free functions to the
// services.BucketRepo interface expected by the BucketService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type bucketRepoShim struct{}

// ListBucketItems proxies repo.ListBucketItems.
func (bucketRepoShim) ListBucketItems(ctx context.Context, db *gorm.DB, userID string) ([]domain.BucketItem, error) {
	return repo.ListBucketItems(ctx, db, userID)
}

// GetBucketItem proxies repo.GetBucketItem.
func (bucketRepoShim) GetBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	return repo.GetBucketItem(ctx, db, userID, itemName)
}

// CreateBucketItem proxies repo.CreateBucketItem.
func (bucketRepoShim) CreateBucketItem(ctx context.Context, db *gorm.DB, userID, itemName, category, source string) (*domain.BucketItem, error) {
	return repo.CreateBucketItem(ctx, db, userID, itemName, category, source)
}

// DeleteBucketItem proxies repo.DeleteBucketItem.
func (bucketRepoShim) DeleteBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) error {
	return repo.DeleteBucketItem(ctx, db, userID, itemName)
}

// ToggleBucketItemChecked proxies repo.ToggleBucketItemChecked.
func (bucketRepoShim) ToggleBucketItemChecked(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	return repo.ToggleBucketItemChecked(ctx, db, userID, itemName)
}

// BucketStats proxies repo.BucketStats (ETag support).
func (bucketRepoShim) BucketStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return repo.BucketStats(ctx, db, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per client IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, st *store.Store, idx search.Index, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health, including dataset availability
	r.GET("/health", func(c *gin.Context) {
		snap := st.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"dataset":      datasetStatus(st),
			"records":      snap.Len(),
			"skipped_rows": snap.Skipped,
		})
	})

	// Dependency injection: services ← store/db/index
	insightsSvc := services.NewInsightsService(st)
	recoSvc := services.NewRecommendationService(st, analysis.NewRecommender(
		analysis.Weights{
			Overdue:        cfg.Recommend.WeightOverdue,
			PriceStability: cfg.Recommend.WeightPriceStability,
			Frequency:      cfg.Recommend.WeightFrequency,
		},
		analysis.Thresholds{
			MinPurchases:    cfg.Recommend.MinPurchases,
			MinIntervalDays: cfg.Recommend.MinIntervalDays,
			MaxIntervalDays: cfg.Recommend.MaxIntervalDays,
			RecencyFactor:   cfg.Recommend.RecencyFactor,
		},
	))
	if cfg.Recommend.TopN > 0 {
		recoSvc.DefaultTopN = cfg.Recommend.TopN
	}
	bucketSvc := services.NewBucketService(db, bucketRepoShim{})
	h := handlers.New(insightsSvc, recoSvc, bucketSvc, idx)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Dataset-wide listings
		api.GET("/users", h.ListUsers)
		api.GET("/categories", h.ListCategories)

		// Per-user analytics
		api.GET("/users/:id/purchases", h.GetPurchases)
		api.GET("/users/:id/spending-summary", h.GetSpendingSummary)
		api.GET("/users/:id/monthly-trends", h.GetMonthlyTrends)
		api.GET("/users/:id/recommendations", h.GetRecommendations)

		// Bucket list
		api.GET("/users/:id/bucket-list", h.ListBucketItems)
		api.POST("/users/:id/bucket-list", h.AddBucketItem)
		api.DELETE("/users/:id/bucket-list/:item", h.RemoveBucketItem)
		api.PATCH("/users/:id/bucket-list/:item/checked", h.ToggleBucketItem)

		// Item search
		api.GET("/items/search", h.SearchItems)

		// API docs (gated)
		if cfg.SwaggerEnabled {
			api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		}
	}
}

// datasetStatus reports "loaded" when a snapshot with records is installed,
// "empty" otherwise.
func datasetStatus(st *store.Store) string {
	if st.Loaded() {
		return "loaded"
	}
	return "empty"
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
