package main

import (
	"flag"
	"os"
	"testing"
)

// clearEnvVars removes every configuration variable for the test and
// restores it afterwards
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ADBRIDGE_PORT", "VANTAGE_APP_ID", "EVENT_BUFFER_SIZE", "REDIS_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// resetFlags allows ParseConfig to run more than once per process
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

func TestParseConfig_Defaults(t *testing.T) {
	clearEnvVars(t)
	resetFlags()

	cfg := ParseConfig()

	if cfg.Port != "8000" {
		t.Errorf("Expected default port '8000', got '%s'", cfg.Port)
	}
	if cfg.AppID != "" {
		t.Errorf("Expected empty app ID, got '%s'", cfg.AppID)
	}
	if cfg.EventBufferSize != 100 {
		t.Errorf("Expected default event buffer 100, got %d", cfg.EventBufferSize)
	}
	if cfg.RedisURL != "" {
		t.Error("Expected empty Redis URL when REDIS_URL is not set")
	}
	if cfg.DatabaseConfig != nil {
		t.Error("Expected no database config when DB_HOST is not set")
	}
}

func TestParseConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("ADBRIDGE_PORT", "9000")
	t.Setenv("VANTAGE_APP_ID", "app-42")
	t.Setenv("EVENT_BUFFER_SIZE", "25")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	resetFlags()

	cfg := ParseConfig()

	if cfg.Port != "9000" {
		t.Errorf("Expected port '9000', got '%s'", cfg.Port)
	}
	if cfg.AppID != "app-42" {
		t.Errorf("Expected app ID 'app-42', got '%s'", cfg.AppID)
	}
	if cfg.EventBufferSize != 25 {
		t.Errorf("Expected event buffer 25, got %d", cfg.EventBufferSize)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Expected Redis URL to be set, got '%s'", cfg.RedisURL)
	}
}

func TestParseConfig_DatabaseConfig(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "harness")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "events")
	t.Setenv("DB_SSL_MODE", "require")
	resetFlags()

	cfg := ParseConfig()

	if cfg.DatabaseConfig == nil {
		t.Fatal("Expected database config when DB_HOST is set")
	}
	db := cfg.DatabaseConfig
	if db.Host != "db.internal" || db.Port != "5433" || db.User != "harness" ||
		db.Password != "secret" || db.Name != "events" || db.SSLMode != "require" {
		t.Errorf("Unexpected database config: %+v", db)
	}
}

func TestParseConfig_DatabaseConfig_Defaults(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("DB_HOST", "localhost")
	resetFlags()

	cfg := ParseConfig()

	if cfg.DatabaseConfig == nil {
		t.Fatal("Expected database config when DB_HOST is set")
	}
	db := cfg.DatabaseConfig
	if db.Port != "5432" {
		t.Errorf("Expected default port '5432', got '%s'", db.Port)
	}
	if db.User != "adbridge" {
		t.Errorf("Expected default user 'adbridge', got '%s'", db.User)
	}
	if db.Name != "adbridge" {
		t.Errorf("Expected default name 'adbridge', got '%s'", db.Name)
	}
	if db.SSLMode != "disable" {
		t.Errorf("Expected default SSL mode 'disable', got '%s'", db.SSLMode)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "value")
	if got := getEnvOrDefault("TEST_ENV_KEY", "fallback"); got != "value" {
		t.Errorf("Expected 'value', got '%s'", got)
	}

	os.Unsetenv("TEST_ENV_KEY")
	if got := getEnvOrDefault("TEST_ENV_KEY", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got '%s'", got)
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid number", "42", 42},
		{"empty", "", 7},
		{"not a number", "many", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("TEST_INT_KEY")
			} else {
				t.Setenv("TEST_INT_KEY", tt.value)
			}
			if got := getEnvIntOrDefault("TEST_INT_KEY", 7); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}
