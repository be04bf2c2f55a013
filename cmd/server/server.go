package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thenexusengine/tne_adbridge/internal/adapter"
	adbconfig "github.com/thenexusengine/tne_adbridge/internal/config"
	"github.com/thenexusengine/tne_adbridge/internal/endpoints"
	"github.com/thenexusengine/tne_adbridge/internal/journal"
	"github.com/thenexusengine/tne_adbridge/internal/metrics"
	"github.com/thenexusengine/tne_adbridge/internal/middleware"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/internal/storage"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
	"github.com/thenexusengine/tne_adbridge/pkg/redis"
)

// Server represents the adapter harness server
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	metrics    *metrics.Metrics

	sim     *partner.Sim
	adapter *adapter.Adapter

	recorder     *journal.Recorder
	redisClient  *redis.Client
	db           *sql.DB
	eventStore   *storage.EventStore
	profileStore *storage.ProfileStore

	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new harness server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	s := &Server{
		config: cfg,
	}

	if err := s.initialize(); err != nil {
		return nil, err
	}

	return s, nil
}

// initialize sets up all server components
func (s *Server) initialize() error {
	log := logger.Log

	log.Info().
		Str("port", s.config.Port).
		Int("event_buffer", s.config.EventBufferSize).
		Bool("boot_setup", s.config.AppID != "").
		Msg("Initializing Vantage adapter harness")

	// Initialize Prometheus metrics
	s.metrics = metrics.NewMetrics("adbridge")
	log.Info().Msg("Prometheus metrics enabled")

	// Initialize database if configured
	if err := s.initDatabase(); err != nil {
		// Database failures are non-fatal, log and continue
		log.Warn().Err(err).Msg("Database initialization failed, continuing with reduced functionality")
	}

	// Initialize Redis if configured
	if err := s.initRedis(); err != nil {
		// Redis failures are non-fatal, log and continue
		log.Warn().Err(err).Msg("Redis initialization failed, continuing with reduced functionality")
	}

	s.initJournal()

	// The simulated partner SDK and the adapter under test
	s.sim = partner.NewSim()
	s.adapter = adapter.New(s.sim, adapter.WithMetrics(s.metrics))

	if s.config.AppID != "" {
		s.bootSetup()
	}

	// Initialize handlers and build HTTP server
	s.initHandlers()

	return nil
}

// initDatabase initializes the database connection and event store
func (s *Server) initDatabase() error {
	log := logger.Log

	if s.config.DatabaseConfig == nil {
		log.Info().Msg("DB_HOST not set, event persistence disabled")
		return nil
	}

	dbCfg := s.config.DatabaseConfig
	dbConn, err := storage.NewDBConnection(
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Name,
		dbCfg.SSLMode,
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to PostgreSQL, event persistence disabled")
		return err
	}
	s.db = dbConn
	s.eventStore = storage.NewEventStore(dbConn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.eventStore.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure ad_events schema")
		return err
	}

	log.Info().Msg("Event store connected to PostgreSQL")
	return nil
}

// initRedis initializes the Redis client and profile store
func (s *Server) initRedis() error {
	log := logger.Log

	if s.config.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, external placement profiles disabled")
		return nil
	}

	var err error
	s.redisClient, err = redis.New(s.config.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis")
		return err
	}
	s.profileStore = storage.NewProfileStore(s.redisClient)

	log.Info().Msg("Placement profile store initialized")
	return nil
}

// initJournal wires the event recorder to Postgres when available, or the
// structured log otherwise
func (s *Server) initJournal() {
	log := logger.Log

	var sink journal.Sink = journal.LogSink{}
	if s.eventStore != nil {
		sink = s.eventStore
	}
	s.recorder = journal.NewRecorder(sink, s.config.EventBufferSize)

	log.Info().
		Bool("persistent", s.eventStore != nil).
		Int("batch_size", s.config.EventBufferSize).
		Msg("Event journal initialized")
}

// bootSetup initializes the adapter at startup with the configured app ID.
// Failure is non-fatal; setup can be retried through the endpoint.
func (s *Server) bootSetup() {
	log := logger.Log

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creds, err := json.Marshal(map[string]string{"app_id": s.config.AppID})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode boot credentials")
		return
	}

	if err := s.adapter.SetUp(ctx, creds); err != nil {
		log.Warn().Err(err).Msg("Boot-time adapter setup failed")
		return
	}
	log.Info().Msg("Adapter set up at boot")
}

// initHandlers initializes HTTP handlers and builds the handler chain
func (s *Server) initHandlers() {
	// typed-nil guard: an absent profile store must stay a nil interface
	var profiles endpoints.ProfileSource
	if s.profileStore != nil {
		profiles = s.profileStore
	}
	var eventLister endpoints.EventLister
	if s.eventStore != nil {
		eventLister = s.eventStore
	}

	adapterHandler := endpoints.NewAdapterHandler(s.adapter, s.sim, profiles, s.recorder)
	eventsHandler := endpoints.NewEventsHandler(eventLister, s.recorder)
	statusHandler := endpoints.NewStatusHandler(s.adapter, s.recorder, s.redisClient, s.db)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/adapter/setup", adapterHandler.Setup)
	mux.HandleFunc("/adapter/consent", adapterHandler.Consent)
	mux.HandleFunc("/adapter/token", adapterHandler.Token)
	mux.HandleFunc("/adapter/load", adapterHandler.Load)
	mux.HandleFunc("/adapter/show", adapterHandler.Show)
	mux.HandleFunc("/adapter/invalidate", adapterHandler.Invalidate)
	mux.Handle("/adapter/events", eventsHandler)

	mux.Handle("/status", statusHandler)
	mux.Handle("/health", endpoints.HealthHandler{})
	mux.Handle("/health/ready", endpoints.NewReadyHandler(s.redisClient, s.db))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", s.metrics.Handler())

	// Build middleware chain: Logging -> Metrics -> RateLimit -> SizeLimit -> Handler
	s.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	sizeLimiter := middleware.NewSizeLimiter(middleware.DefaultSizeLimitConfig())

	handler := http.Handler(mux)
	handler = sizeLimiter.Middleware(handler)
	handler = s.rateLimiter.Middleware(handler)
	handler = s.metrics.Middleware(handler)
	handler = loggingMiddleware(handler)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  adbconfig.ServerReadTimeout,
		WriteTimeout: adbconfig.ServerWriteTimeout,
		IdleTimeout:  adbconfig.ServerIdleTimeout,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log := logger.Log
	log.Info().Str("addr", s.httpServer.Addr).Msg("Server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown performs graceful shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	log := logger.Log
	log.Info().Msg("Starting graceful shutdown")

	// Drain in-flight requests before the journal closes; handlers record
	// events until the last response is written
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	// Flush pending journal events
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			log.Warn().Err(err).Msg("Error flushing event journal")
		} else {
			log.Info().Msg("Event journal flushed")
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing database connection")
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing Redis client")
		}
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests with structured logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		// Add request ID to response
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapped, r.WithContext(logger.WithRequestID(r.Context(), requestID)))

		duration := time.Since(start)

		event := logger.Log.Info()
		if wrapped.statusCode >= 400 {
			event = logger.Log.Warn()
		}
		if wrapped.statusCode >= 500 {
			event = logger.Log.Error()
		}

		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration_ms", duration).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("HTTP request")
	})
}
