package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"askcents/internal/insights"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Storage
	DataBackend  string
	SQLiteDBPath string

	// Account aggregation proxy
	AggregatorBaseURL string
	AggregatorTimeout time.Duration

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Advice generation (optional)
	GeminiAPIKey string
	GeminiModel  string

	// Google Sheets report export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Insights
	InsightsCacheSize    int
	InsightsCacheTTL     time.Duration
	TopCategories        int
	ReductionPercent     float64
	AssumedReturnPercent float64
}

var (
	validBackends  = []string{"memory", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/askcents.db"),

		AggregatorBaseURL: strings.TrimRight(getEnv("AGGREGATOR_BASE_URL", "http://localhost:3001/api"), "/"),
		AggregatorTimeout: getEnvDuration("AGGREGATOR_TIMEOUT", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "askcents"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "insights_refresh"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Insights"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		InsightsCacheSize:    getEnvInt("INSIGHTS_CACHE_SIZE", 128),
		InsightsCacheTTL:     getEnvDuration("INSIGHTS_CACHE_TTL", 5*time.Minute),
		TopCategories:        getEnvInt("TOP_CATEGORIES", 6),
		ReductionPercent:     getEnvFloat("REDUCTION_PERCENT", 15),
		AssumedReturnPercent: getEnvFloat("ASSUMED_RETURN_PERCENT", 7),
	}

	return cfg
}

// AMQPEnabled reports whether messaging is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether report export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// InsightsPolicy builds the analysis policy from the configured overrides.
func (c *Config) InsightsPolicy() insights.Policy {
	p := insights.DefaultPolicy()
	if c.TopCategories > 0 {
		p.TopN = c.TopCategories
	}
	if c.ReductionPercent > 0 {
		p.ReductionPercent = c.ReductionPercent
	}
	if c.AssumedReturnPercent >= 0 {
		p.AssumedReturnPercent = c.AssumedReturnPercent
	}
	return p
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if parsedURL, err := url.Parse(c.AggregatorBaseURL); err != nil || c.AggregatorBaseURL == "" {
		errors = append(errors, fmt.Sprintf("invalid aggregator URL '%s'", c.AggregatorBaseURL))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid aggregator URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}
	if c.AggregatorTimeout < time.Second || c.AggregatorTimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid aggregator timeout %v: must be between 1s and 2m", c.AggregatorTimeout))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate report export if a spreadsheet is configured
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for report export")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.InsightsCacheSize < 1 || c.InsightsCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid insights cache size %d: must be between 1 and 10000", c.InsightsCacheSize))
	}
	if c.InsightsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insights cache TTL %v: must be at least 1 second", c.InsightsCacheTTL))
	}
	if c.TopCategories < 1 || c.TopCategories > 50 {
		errors = append(errors, fmt.Sprintf("invalid top categories %d: must be between 1 and 50", c.TopCategories))
	}
	if c.ReductionPercent <= 0 || c.ReductionPercent > 100 {
		errors = append(errors, fmt.Sprintf("invalid reduction percent %v: must be in (0, 100]", c.ReductionPercent))
	}
	if c.AssumedReturnPercent < 0 || c.AssumedReturnPercent > 50 {
		errors = append(errors, fmt.Sprintf("invalid assumed return percent %v: must be between 0 and 50", c.AssumedReturnPercent))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
