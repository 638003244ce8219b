// Command eventpipe-api serves the HTTP ingestion and analytics
// surface (components B, F, G): batch ingestion, DAU/top-events/
// retention queries, and health/metrics endpoints.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nova-metrics/eventpipe/internal/analytics"
	"github.com/nova-metrics/eventpipe/internal/api"
	"github.com/nova-metrics/eventpipe/internal/dedup"
	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/ingest"
	"github.com/nova-metrics/eventpipe/internal/lifecycle"
	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/queue"
	"github.com/nova-metrics/eventpipe/internal/ratelimit"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/telemetry"
)

func main() {
	cfg, err := platform.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.Init(cfg.Log)
	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry(ctx)

	db, err := platform.NewDB(cfg.Store)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to connect to event store", "error", err)
		os.Exit(1)
	}

	eventStore := store.New(db)
	if err := eventStore.AutoMigrate(ctx); err != nil {
		logger.L().ErrorContext(ctx, "failed to migrate event store", "error", err)
		os.Exit(1)
	}

	c, err := platform.NewCache(cfg.Cache)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to connect to cache", "error", err)
		os.Exit(1)
	}

	broker, err := queue.NewBroker(cfg.Queue)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to connect to message broker", "error", err)
		os.Exit(1)
	}

	publisher, err := queue.NewPublisher(broker, cfg.Queue.Topic)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to create queue publisher", "error", err)
		os.Exit(1)
	}

	metrics := platform.NewMetrics()
	dedupClient := dedup.New(c, cfg.DedupTTL)
	orchestrator := ingest.New(dedupClient, publisher, metrics)
	engine := analytics.New(db)
	limiter := ratelimit.New(c, cfg.RateLimit)
	manager := lifecycle.New(broker, eventStore)
	manager.Track("event store", db)
	manager.Track("cache", c)
	manager.Track("message broker", broker)
	manager.Track("queue publisher", publisher)

	handlers := api.Handlers{
		Ingest:    api.NewIngestHandler(orchestrator, event.NewValidator(), eventStore),
		Analytics: api.NewAnalyticsHandler(engine),
		Health:    api.NewHealthHandler(manager),
		RateLimit: api.NewRateLimitMiddleware(limiter, metrics),
		Metrics:   api.NewMetricsMiddleware(metrics),
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.L().InfoContext(ctx, "api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().ErrorContext(ctx, "api server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.L().InfoContext(ctx, "shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().ErrorContext(ctx, "failed to shut down http server cleanly", "error", err)
	}
	manager.Shutdown(shutdownCtx)
}
