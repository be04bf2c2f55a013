// Package logger provides structured logging for the adapter and harness
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance
var Log zerolog.Logger

// Context keys for request-scoped fields
type contextKey string

const (
	// RequestIDKey holds the mediation request ID
	RequestIDKey contextKey = "request_id"
	// PlacementIDKey holds the partner placement ID
	PlacementIDKey contextKey = "placement_id"
)

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	TimeFormat string
}

// DefaultConfig returns logger configuration from environment variables
// with sensible defaults (info level, JSON output).
func DefaultConfig() Config {
	return Config{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "json"),
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: cfg.TimeFormat}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	Log = logger.Level(level).With().
		Timestamp().
		Str("service", "adbridge").
		Logger()
}

// WithRequestID stores a mediation request ID in the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithPlacementID stores a partner placement ID in the context
func WithPlacementID(ctx context.Context, placementID string) context.Context {
	return context.WithValue(ctx, PlacementIDKey, placementID)
}

// FromContext returns a logger enriched with any request-scoped fields
// present in the context.
func FromContext(ctx context.Context) zerolog.Logger {
	logger := Log

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if placementID, ok := ctx.Value(PlacementIDKey).(string); ok && placementID != "" {
		logger = logger.With().Str("placement_id", placementID).Logger()
	}

	return logger
}

// Adapter returns a logger scoped to the adapter core
func Adapter() *zerolog.Logger {
	l := Log.With().Str("component", "adapter").Logger()
	return &l
}

// Partner returns a logger scoped to partner SDK interactions
func Partner() *zerolog.Logger {
	l := Log.With().Str("component", "partner").Logger()
	return &l
}

// HTTP returns a logger scoped to the harness HTTP layer
func HTTP() *zerolog.Logger {
	l := Log.With().Str("component", "http").Logger()
	return &l
}

// Placement returns a logger carrying a placement ID
func Placement(placementID string) *zerolog.Logger {
	l := Log.With().Str("placement_id", placementID).Logger()
	return &l
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func init() {
	// Usable zero-config logger until Init is called explicitly
	Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
}
