// Package config provides shared configuration constants for the adapter
// harness
package config

import "time"

// Server timeout defaults
const (
	// ServerReadTimeout is the maximum duration for reading the entire request
	ServerReadTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration before timing out writes of
	// the response. Load and show requests block on partner callbacks, so
	// this bounds how long a slow placement can hold a connection.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled
	ServerIdleTimeout = 120 * time.Second

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

// Lifecycle defaults
const (
	// DefaultLoadTimeout bounds one partner load when the request carries no
	// deadline of its own
	DefaultLoadTimeout = 15 * time.Second

	// DefaultShowTimeout bounds the show-start callback
	DefaultShowTimeout = 10 * time.Second
)

// Journal defaults
const (
	// DefaultEventBufferSize is the default event journal batch size
	DefaultEventBufferSize = 100
)

// Size limiting defaults
const (
	// DefaultMaxBodySize is the default maximum request body size (1MB)
	DefaultMaxBodySize = 1024 * 1024
)
