// Package cli provides the initialization steps shared by cmd/askcents and
// cmd/askcents-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"askcents/internal/backend"
	"askcents/internal/cache"
	"askcents/internal/config"
	"askcents/internal/core"
	"askcents/internal/insights"
	applog "askcents/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Bootstrap loads .env and the configuration, installs the default logger
// for component and validates the configuration. It exits the process on
// validation failure.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	LoadEnvFile()

	cfg := config.Load()
	logger := applog.ForComponent(component, cfg.LogLevel)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// Backend bundles the opened data backend with the factory that built it.
type Backend struct {
	*backend.BackendResult
	Factory *backend.DefaultFactory
	Config  backend.Config
}

// InitBackend opens the configured data backend. It exits the process on
// failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *Backend {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Data backend initialized", "backend", cfg.DataBackend)
	return &Backend{BackendResult: result, Factory: factory, Config: backendCfg}
}

// InitInsights builds the memoized insights service. The returned manager
// cleans the memo in the background; call Stop on shutdown.
func InitInsights(cfg *config.Config) (*insights.Service, *cache.Manager) {
	memo := cache.NewLRUCache[core.InsightsViewModel](cfg.InsightsCacheSize, cfg.InsightsCacheTTL)
	caches := cache.NewManager()
	caches.Register("insights", memo)
	caches.StartCleanup(cfg.InsightsCacheTTL)
	return insights.NewService(insights.NewOrchestrator(cfg.InsightsPolicy()), memo), caches
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
