package main

import (
	"context"
	"errors"
	"os"
	"time"

	"askcents/internal/aggregator"
	"askcents/internal/amqp"
	"askcents/internal/cli"
	"askcents/internal/goals"
	applog "askcents/internal/log"
	"askcents/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting askcents-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.ShutdownContext()
	defer stop()

	stores := cli.InitBackend(ctx, logger, cfg)
	defer stores.Close()

	// Report export (optional)
	exporter, err := stores.Factory.CreateExporter(ctx, stores.Config)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	}
	if exporter != nil {
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	insightsSvc, caches := cli.InitInsights(cfg)
	defer caches.Stop()

	refreshWorker := worker.NewRefreshWorker(
		aggregator.NewClient(cfg.AggregatorBaseURL, cfg.AggregatorTimeout, nil),
		insightsSvc,
		stores.Store,
		goals.NewService(stores.Goals),
		exporter,
	)

	logger.Info("Performing startup refresh check...")
	if err := refreshWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup refresh check failed", applog.FieldError, err)
		// Don't exit - continue with normal operation
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := amqpClient.ConsumeRefresh(ctx, refreshWorker.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down worker...")

	// Give the current message time to finish
	select {
	case <-done:
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
