package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/draftlab/dashboard-backend/api/routes"
	"github.com/draftlab/dashboard-backend/internal/cache"
	"github.com/draftlab/dashboard-backend/internal/dashboard"
	"github.com/draftlab/dashboard-backend/internal/directory"
	"github.com/draftlab/dashboard-backend/internal/eventstore"
	"github.com/draftlab/dashboard-backend/internal/historical"
	"github.com/draftlab/dashboard-backend/pkg/config"
	"github.com/draftlab/dashboard-backend/pkg/logger"
	"github.com/draftlab/dashboard-backend/pkg/metrics"
	"github.com/draftlab/dashboard-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	storeClient, err := eventstore.NewClient(cfg.EventStore, logg, eventstore.WithObserver(engineMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to create event store client", err)
		os.Exit(1)
	}
	store := eventstore.NewRetryingStore(storeClient, cfg.EventStore, logg, engineMetrics)

	directoryClient, err := directory.NewClient(cfg.Directory, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create directory client", err)
		os.Exit(1)
	}

	baseline, err := historical.NewService(cfg.Historical)
	if err != nil {
		logg.Error(context.Background(), "failed to load baseline checkpoints", err)
		os.Exit(1)
	}

	aggregator := dashboard.NewAggregator(store, directoryClient, baseline, cfg.Historical, logg)
	cacheLayer := cache.NewLayer(redisClient, cfg.Cache, logg, engineMetrics)
	service := dashboard.NewService(aggregator, cacheLayer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:     cfg,
			Logger:     logg,
			Service:    service,
			Redis:      redisClient,
			EventStore: storeClient,
			Directory:  directoryClient,
			Registry:   registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
