// Package middleware provides HTTP middleware for the adapter harness
package middleware

import (
	"net/http"
	"os"
	"strconv"

	"github.com/thenexusengine/tne_adbridge/internal/config"
)

// SizeLimitConfig holds request size limit configuration
type SizeLimitConfig struct {
	MaxBodySize  int64 // Max request body size in bytes
	MaxURLLength int   // Max URL length
}

// DefaultSizeLimitConfig returns size limits from the environment
func DefaultSizeLimitConfig() SizeLimitConfig {
	maxBody, err := strconv.ParseInt(os.Getenv("MAX_REQUEST_SIZE"), 10, 64)
	if err != nil || maxBody <= 0 {
		maxBody = config.DefaultMaxBodySize
	}

	maxURL, err := strconv.Atoi(os.Getenv("MAX_URL_LENGTH"))
	if err != nil || maxURL <= 0 {
		maxURL = 8192
	}

	return SizeLimitConfig{
		MaxBodySize:  maxBody,
		MaxURLLength: maxURL,
	}
}

// SizeLimiter rejects oversized requests before they reach a handler
type SizeLimiter struct {
	config SizeLimitConfig
}

// NewSizeLimiter creates a new size limiter
func NewSizeLimiter(config SizeLimitConfig) *SizeLimiter {
	return &SizeLimiter{config: config}
}

// Middleware returns the size limiting middleware handler
func (sl *SizeLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.String()) > sl.config.MaxURLLength {
			http.Error(w, `{"error":"URL too long"}`, http.StatusRequestURITooLong)
			return
		}

		if r.ContentLength > sl.config.MaxBodySize {
			http.Error(w, `{"error":"request body too large"}`, http.StatusRequestEntityTooLarge)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, sl.config.MaxBodySize)
		}

		next.ServeHTTP(w, r)
	})
}
