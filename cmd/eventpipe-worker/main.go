// Command eventpipe-worker consumes events off the durable queue and
// writes them through the idempotent store (component D).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nova-metrics/eventpipe/internal/lifecycle"
	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/queue"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/internal/worker"
	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/telemetry"
)

func main() {
	cfg, err := platform.Load()
	if err != nil {
		logger.Init(logger.Config{Level: "ERROR", Format: "JSON"})
		logger.L().Error("failed to load configuration", "error", err)
		os.Exit(1)
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

	broker, err := queue.NewBroker(cfg.Queue)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to connect to message broker", "error", err)
		os.Exit(1)
	}

	consumer, err := broker.Consumer(cfg.Queue.Topic, "")
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to create queue consumer", "error", err)
		os.Exit(1)
	}

	metrics := platform.NewMetrics()
	w := worker.New(consumer, eventStore, metrics)
	manager := lifecycle.New(broker, eventStore)
	manager.Track("event store", db)
	manager.Track("message broker", broker)

	runCtx, cancel := context.WithCancel(ctx)

	runErr := make(chan error, 1)
	go func() {
		runErr <- w.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.L().InfoContext(ctx, "shutdown signal received")
	case err := <-runErr:
		if err != nil {
			logger.L().ErrorContext(ctx, "worker exited with error", "error", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer shutdownCancel()
	manager.Shutdown(shutdownCtx)
}
