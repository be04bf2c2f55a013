package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

// Test Helpers

// captureLogOutput captures log output to a buffer for testing
func captureLogOutput(t *testing.T, fn func()) string {
	t.Helper()

	// Save original stdout
	originalStdout := os.Stdout
	defer func() { os.Stdout = originalStdout }()

	// Create pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run the function
	fn()

	// Close writer and restore stdout
	w.Close()
	os.Stdout = originalStdout

	// Read captured output
	var buf bytes.Buffer
	io.Copy(&buf, r)

	return buf.String()
}

// parseLogLine parses a JSON log line into a map
func parseLogLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		t.Fatalf("Failed to parse log line: %v\nLine: %s", err, line)
	}

	return result
}

// Config Tests

func TestDefaultConfig(t *testing.T) {
	// Clear environment variables
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_FORMAT")

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("Expected default level 'info', got '%s'", cfg.Level)
	}

	if cfg.Format != "json" {
		t.Errorf("Expected default format 'json', got '%s'", cfg.Format)
	}

	if cfg.TimeFormat != time.RFC3339 {
		t.Errorf("Expected time format RFC3339, got '%s'", cfg.TimeFormat)
	}
}

func TestDefaultConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name           string
		envLevel       string
		envFormat      string
		expectedLevel  string
		expectedFormat string
	}{
		{
			name:           "Debug level",
			envLevel:       "debug",
			envFormat:      "",
			expectedLevel:  "debug",
			expectedFormat: "json",
		},
		{
			name:           "Console format",
			envLevel:       "",
			envFormat:      "console",
			expectedLevel:  "info",
			expectedFormat: "console",
		},
		{
			name:           "Both overridden",
			envLevel:       "error",
			envFormat:      "console",
			expectedLevel:  "error",
			expectedFormat: "console",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			if tt.envLevel != "" {
				t.Setenv("LOG_LEVEL", tt.envLevel)
			} else {
				os.Unsetenv("LOG_LEVEL")
			}

			if tt.envFormat != "" {
				t.Setenv("LOG_FORMAT", tt.envFormat)
			} else {
				os.Unsetenv("LOG_FORMAT")
			}

			cfg := DefaultConfig()

			if cfg.Level != tt.expectedLevel {
				t.Errorf("Expected level '%s', got '%s'", tt.expectedLevel, cfg.Level)
			}

			if cfg.Format != tt.expectedFormat {
				t.Errorf("Expected format '%s', got '%s'", tt.expectedFormat, cfg.Format)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		setValue bool
		defVal   string
		expected string
	}{
		{
			name:     "With value",
			key:      "TEST_VAR",
			value:    "test_value",
			setValue: true,
			defVal:   "default",
			expected: "test_value",
		},
		{
			name:     "Without value",
			key:      "MISSING_VAR",
			setValue: false,
			defVal:   "default",
			expected: "default",
		},
		{
			name:     "Empty string",
			key:      "EMPTY_VAR",
			value:    "",
			setValue: true,
			defVal:   "default",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setValue {
				t.Setenv(tt.key, tt.value)
			} else {
				os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.defVal)

			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

// Initialization Tests

func TestInit_JSONFormat(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{
			Level:      "info",
			Format:     "json",
			TimeFormat: time.RFC3339,
		})
		Log.Info().Msg("test message")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["level"] != "info" {
		t.Errorf("Expected level 'info', got '%v'", logEntry["level"])
	}

	if logEntry["message"] != "test message" {
		t.Errorf("Expected message 'test message', got '%v'", logEntry["message"])
	}

	if logEntry["service"] != "adbridge" {
		t.Errorf("Expected service 'adbridge', got '%v'", logEntry["service"])
	}

	if _, ok := logEntry["time"]; !ok {
		t.Error("Expected 'time' field in log output")
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{
			Level:      "info",
			Format:     "console",
			TimeFormat: time.RFC3339,
		})
		Log.Info().Msg("test message")
	})

	if !strings.Contains(output, "test message") {
		t.Errorf("Expected 'test message' in output, got: %s", output)
	}

	// Console format should show INF for info level
	if !strings.Contains(output, "INF") {
		t.Errorf("Expected 'INF' log level indicator in output, got: %s", output)
	}

	if !strings.Contains(output, "adbridge") {
		t.Errorf("Expected 'adbridge' service name in output, got: %s", output)
	}
}

func TestInit_LogLevels(t *testing.T) {
	tests := []struct {
		level     string
		shouldLog map[string]bool
	}{
		{
			level: "debug",
			shouldLog: map[string]bool{
				"debug": true,
				"info":  true,
				"warn":  true,
				"error": true,
			},
		},
		{
			level: "info",
			shouldLog: map[string]bool{
				"debug": false,
				"info":  true,
				"warn":  true,
				"error": true,
			},
		},
		{
			level: "warn",
			shouldLog: map[string]bool{
				"debug": false,
				"info":  false,
				"warn":  true,
				"error": true,
			},
		},
		{
			level: "error",
			shouldLog: map[string]bool{
				"debug": false,
				"info":  false,
				"warn":  false,
				"error": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			output := captureLogOutput(t, func() {
				Init(Config{
					Level:      tt.level,
					Format:     "json",
					TimeFormat: time.RFC3339,
				})

				Log.Debug().Msg("debug message")
				Log.Info().Msg("info message")
				Log.Warn().Msg("warn message")
				Log.Error().Msg("error message")
			})

			lines := strings.Split(strings.TrimSpace(output), "\n")

			for levelName, shouldLog := range tt.shouldLog {
				found := false
				for _, line := range lines {
					if line == "" {
						continue
					}
					logEntry := parseLogLine(t, line)
					if logEntry != nil && logEntry["level"] == levelName {
						found = true
						break
					}
				}

				if shouldLog && !found {
					t.Errorf("Expected %s message to be logged with level %s, but it wasn't", levelName, tt.level)
				}

				if !shouldLog && found {
					t.Errorf("Expected %s message NOT to be logged with level %s, but it was", levelName, tt.level)
				}
			}
		})
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{
			Level:      "invalid",
			Format:     "json",
			TimeFormat: time.RFC3339,
		})

		// With invalid level, should default to InfoLevel
		Log.Debug().Msg("debug message")
		Log.Info().Msg("info message")
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")

	debugFound := false
	infoFound := false

	for _, line := range lines {
		if line == "" {
			continue
		}
		logEntry := parseLogLine(t, line)
		if logEntry != nil {
			if logEntry["level"] == "debug" {
				debugFound = true
			}
			if logEntry["level"] == "info" {
				infoFound = true
			}
		}
	}

	if debugFound {
		t.Error("Debug message should not be logged with invalid level (defaults to info)")
	}

	if !infoFound {
		t.Error("Info message should be logged with invalid level (defaults to info)")
	}
}

// Context Tests

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "req-12345"

	ctx = WithRequestID(ctx, requestID)

	value := ctx.Value(RequestIDKey)
	if value == nil {
		t.Fatal("Expected request ID in context, got nil")
	}

	if value.(string) != requestID {
		t.Errorf("Expected request ID '%s', got '%s'", requestID, value.(string))
	}
}

func TestWithPlacementID(t *testing.T) {
	ctx := context.Background()
	placementID := "plc-67890"

	ctx = WithPlacementID(ctx, placementID)

	value := ctx.Value(PlacementIDKey)
	if value == nil {
		t.Fatal("Expected placement ID in context, got nil")
	}

	if value.(string) != placementID {
		t.Errorf("Expected placement ID '%s', got '%s'", placementID, value.(string))
	}
}

func TestFromContext_WithRequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "req-12345"
	ctx = WithRequestID(ctx, requestID)

	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		logger := FromContext(ctx)
		logger.Info().Msg("test message")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["request_id"] != requestID {
		t.Errorf("Expected request_id '%s', got '%v'", requestID, logEntry["request_id"])
	}
}

func TestFromContext_WithBothIDs(t *testing.T) {
	ctx := context.Background()
	requestID := "req-12345"
	placementID := "plc-67890"
	ctx = WithRequestID(ctx, requestID)
	ctx = WithPlacementID(ctx, placementID)

	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		logger := FromContext(ctx)
		logger.Info().Msg("test message")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["request_id"] != requestID {
		t.Errorf("Expected request_id '%s', got '%v'", requestID, logEntry["request_id"])
	}

	if logEntry["placement_id"] != placementID {
		t.Errorf("Expected placement_id '%s', got '%v'", placementID, logEntry["placement_id"])
	}
}

func TestFromContext_Empty(t *testing.T) {
	ctx := context.Background()

	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		logger := FromContext(ctx)
		logger.Info().Msg("test message")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	// Should not have request_id or placement_id
	if _, ok := logEntry["request_id"]; ok {
		t.Error("Expected no request_id in empty context")
	}

	if _, ok := logEntry["placement_id"]; ok {
		t.Error("Expected no placement_id in empty context")
	}

	// Should still have service field
	if logEntry["service"] != "adbridge" {
		t.Errorf("Expected service 'adbridge', got '%v'", logEntry["service"])
	}
}

// Specialized Constructor Tests

func TestAdapter(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		Adapter().Info().Msg("adapter event")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["component"] != "adapter" {
		t.Errorf("Expected component 'adapter', got '%v'", logEntry["component"])
	}

	if logEntry["message"] != "adapter event" {
		t.Errorf("Expected message 'adapter event', got '%v'", logEntry["message"])
	}
}

func TestPartner(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		Partner().Info().Msg("partner event")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["component"] != "partner" {
		t.Errorf("Expected component 'partner', got '%v'", logEntry["component"])
	}
}

func TestHTTP(t *testing.T) {
	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		HTTP().Info().Msg("http event")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["component"] != "http" {
		t.Errorf("Expected component 'http', got '%v'", logEntry["component"])
	}

	if logEntry["message"] != "http event" {
		t.Errorf("Expected message 'http event', got '%v'", logEntry["message"])
	}
}

func TestPlacement(t *testing.T) {
	placementID := "plc-12345"

	output := captureLogOutput(t, func() {
		Init(Config{Level: "info", Format: "json", TimeFormat: time.RFC3339})
		Placement(placementID).Info().Msg("placement event")
	})

	logEntry := parseLogLine(t, output)

	if logEntry == nil {
		t.Fatal("Expected log output, got none")
	}

	if logEntry["placement_id"] != placementID {
		t.Errorf("Expected placement_id '%s', got '%v'", placementID, logEntry["placement_id"])
	}

	if logEntry["message"] != "placement event" {
		t.Errorf("Expected message 'placement event', got '%v'", logEntry["message"])
	}
}
