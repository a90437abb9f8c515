// Command server runs the analytics API.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/internal/domain/repository"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/monitoring"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/persistence/cache"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/persistence/postgres"
	redisconn "github.com/pulsemetrics/analytics-api/internal/infrastructure/persistence/redis"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/ratelimit"
	"github.com/pulsemetrics/analytics-api/internal/interfaces/http/handlers"
	"github.com/pulsemetrics/analytics-api/internal/interfaces/http/router"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDBConnection(&cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}
	defer postgres.CloseDB(db, appLogger)

	redisConn, err := redisconn.NewConnection(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisConn.Close()

	limiter := ratelimit.NewFixedWindowLimiter(redisConn.Client(), appLogger,
		ratelimit.WithExpirationWindow(time.Duration(cfg.RateLimit.ExpirationWindow)*time.Second),
		ratelimit.WithCheckTimeout(time.Duration(cfg.RateLimit.CheckTimeout)*time.Millisecond),
	)

	var repo repository.AnalyticsRepository = postgres.NewAnalyticsRepository(db, appLogger)
	repo = cache.NewCachedAnalyticsRepository(repo, constants.QueryCacheTTL, appLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	r := router.New(router.Dependencies{
		Config:           cfg,
		Logger:           appLogger,
		Metrics:          metrics,
		Registry:         registry,
		Limiter:          limiter,
		AnalyticsHandler: handlers.NewAnalyticsHandler(repo, appLogger),
		POIHandler:       handlers.NewPOIHandler(repo, appLogger),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": postgres.NewPinger(db),
			"redis":    redisConn,
		}),
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(r.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return r.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Fatal(context.Background(), "server terminated", err)
	}
}
