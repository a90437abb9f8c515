// Package router wires the gin engine: global middleware, CORS, per-route
// rate limit quotas, and the HTTP server lifecycle.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/monitoring"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/ratelimit"
	"github.com/pulsemetrics/analytics-api/internal/interfaces/http/handlers"
	"github.com/pulsemetrics/analytics-api/internal/interfaces/http/middleware"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	Config           *config.Config
	Logger           logger.Logger
	Metrics          *monitoring.Metrics
	Registry         *prometheus.Registry
	Limiter          *ratelimit.FixedWindowLimiter
	AnalyticsHandler *handlers.AnalyticsHandler
	POIHandler       *handlers.POIHandler
	HealthHandler    *handlers.HealthHandler
}

// Router owns the gin engine and the HTTP server.
type Router struct {
	engine *gin.Engine
	deps   Dependencies
	server *http.Server
}

// New creates the router and registers all routes.
func New(deps Dependencies) *Router {
	gin.SetMode(gin.ReleaseMode)
	r := &Router{
		engine: gin.New(),
		deps:   deps,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	cfg := r.deps.Config
	log := r.deps.Logger

	r.engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logging(log, r.deps.Metrics),
		// Header decoration is installed unconditionally so every response,
		// admitted or rejected, carries rate limit metadata when available.
		middleware.RateLimitHeaders(),
	)

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders: []string{
			constants.HeaderRequestID,
			constants.HeaderRateLimitRemaining,
			constants.HeaderRateLimitLimit,
			constants.HeaderRateLimitReset,
		},
		MaxAge: 12 * time.Hour,
	}))

	r.engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the analytics API")
	})

	r.engine.GET("/health/live", r.deps.HealthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.deps.HealthHandler.ReadinessCheck)

	if r.deps.Registry != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.deps.Registry, promhttp.HandlerOpts{})))
	}

	if cfg.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	// Quotas are configuration, not middleware policy. Tabular endpoints share
	// one quota shape, geo endpoints another; within a shape each route still
	// gets its own pool because the operation identity defaults to the route.
	tabularLimit := r.quota(cfg.RateLimit.Tabular)
	poiLimit := r.quota(cfg.RateLimit.POI)

	events := r.engine.Group("/events", tabularLimit...)
	{
		events.GET("/hourly", r.deps.AnalyticsHandler.EventsHourly)
		events.GET("/daily", r.deps.AnalyticsHandler.EventsDaily)
	}

	stats := r.engine.Group("/stats", tabularLimit...)
	{
		stats.GET("/hourly", r.deps.AnalyticsHandler.StatsHourly)
		stats.GET("/daily", r.deps.AnalyticsHandler.StatsDaily)
	}

	poi := r.engine.Group("/poi", poiLimit...)
	{
		poi.GET("", r.deps.POIHandler.List)
		poi.GET("/geojson", r.deps.POIHandler.GeoJSON)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             string(errors.CodeNotFound),
			"error_description": "The requested resource was not found",
		})
	})
}

// quota builds the admission middleware chain for a quota, or an empty chain
// when rate limiting is disabled.
func (r *Router) quota(q config.Quota) []gin.HandlerFunc {
	if !r.deps.Config.RateLimit.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		middleware.RateLimit(r.deps.Limiter, r.deps.Metrics, r.deps.Logger,
			middleware.DefaultRateLimitOptions(q.Limit, q.Per)),
	}
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start runs the HTTP server until it is shut down.
func (r *Router) Start() error {
	cfg := r.deps.Config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.deps.Logger.Info(context.Background(), "starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.deps.Logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}
