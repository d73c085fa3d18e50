package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"askcents/internal/advice"
	"askcents/internal/aggregator"
	"askcents/internal/amqp"
	"askcents/internal/cli"
	"askcents/internal/goals"
	apphttp "askcents/internal/http"
	"askcents/internal/kv"
	applog "askcents/internal/log"
	"askcents/internal/rewards"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	stores := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("Failed to close data backend", applog.FieldError, err)
		}
	}()

	insightsSvc, caches := cli.InitInsights(cfg)
	defer caches.Stop()

	proxy := aggregator.NewClient(cfg.AggregatorBaseURL, cfg.AggregatorTimeout, nil)

	var gen advice.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := advice.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Advice generator unavailable, using rule-based advice", applog.FieldError, err)
		} else {
			gen = g
			logger.Info("Advice generator initialized", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("Advice generation disabled - no GEMINI_API_KEY provided")
	}

	deps := apphttp.Deps{
		Source:   proxy,
		Link:     proxy,
		Insights: insightsSvc,
		Advice:   advice.NewService(gen, stores.Store),
		Goals:    goals.NewService(stores.Goals),
		Rewards:  rewards.NewService(stores.Store),
		Prefs:    kv.NewPreferences(stores.Store),
		Store:    stores.Store,
		Ready:    stores.Ping,
		Logger:   logger.WithComponent(applog.ComponentHTTP),
	}

	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// refresh requests answer 503 until restart
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			deps.Publisher = amqpClient
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("Asynchronous refresh disabled - no AMQP_URL provided")
	}

	if h, err := proxy.Health(ctx); err != nil {
		logger.Warn("Aggregation proxy unreachable, insights will use sample data", applog.FieldError, err)
	} else {
		logger.Info("Aggregation proxy reachable", "status", h.Status)
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.AggregatorTimeout + 20*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting askcents server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
