package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/thenexusengine/tne_adbridge/internal/config"
)

// ServerConfig holds all server configuration
type ServerConfig struct {
	// Server
	Port string

	// Vantage credentials. When set, the adapter is set up at boot instead
	// of waiting for the first /adapter/setup call.
	AppID string

	// Journal
	EventBufferSize int

	// Database
	DatabaseConfig *DatabaseConfig

	// Redis
	RedisURL string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ParseConfig parses configuration from flags and environment variables
func ParseConfig() *ServerConfig {
	// Parse flags with environment variable fallbacks
	port := flag.String("port", getEnvOrDefault("ADBRIDGE_PORT", "8000"), "Server port")
	appID := flag.String("app-id", os.Getenv("VANTAGE_APP_ID"), "Vantage application ID for boot-time setup")
	eventBuffer := flag.Int("event-buffer", getEnvIntOrDefault("EVENT_BUFFER_SIZE", config.DefaultEventBufferSize), "Event journal batch size")
	flag.Parse()

	cfg := &ServerConfig{
		Port:            *port,
		AppID:           *appID,
		EventBufferSize: *eventBuffer,
		RedisURL:        os.Getenv("REDIS_URL"),
	}

	// Parse database config if DB_HOST is set
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		cfg.DatabaseConfig = &DatabaseConfig{
			Host:     dbHost,
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "adbridge"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "adbridge"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		}
	}

	return cfg
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as int or a default
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
