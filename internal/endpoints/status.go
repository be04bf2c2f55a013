package endpoints

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/thenexusengine/tne_adbridge/internal/adapter"
	"github.com/thenexusengine/tne_adbridge/internal/journal"
	"github.com/thenexusengine/tne_adbridge/pkg/redis"
)

// StatusHandler reports harness and adapter state at /status
type StatusHandler struct {
	adapter  *adapter.Adapter
	recorder *journal.Recorder
	redis    *redis.Client
	db       *sql.DB
}

// NewStatusHandler creates the status handler. recorder, redis and db may
// be nil.
func NewStatusHandler(a *adapter.Adapter, recorder *journal.Recorder, rc *redis.Client, db *sql.DB) *StatusHandler {
	return &StatusHandler{adapter: a, recorder: recorder, redis: rc, db: db}
}

// ServeHTTP handles status requests
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":           "ok",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"initialized":      h.adapter.Initialized(),
		"ready_placements": h.adapter.ReadyCount(),
	}

	if h.recorder != nil {
		body["journal"] = h.recorder.Stats()
	}
	if h.redis != nil {
		stats := h.redis.PoolStats()
		body["redis_pool"] = map[string]interface{}{
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
		}
	}

	writeJSON(w, http.StatusOK, body)
}

// HealthHandler answers liveness probes
type HealthHandler struct{}

// ServeHTTP handles health requests
func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler answers readiness probes, checking configured backing
// services
type ReadyHandler struct {
	redis *redis.Client
	db    *sql.DB
}

// NewReadyHandler creates the readiness handler. redis and db may be nil;
// absent services are not checked.
func NewReadyHandler(rc *redis.Client, db *sql.DB) *ReadyHandler {
	return &ReadyHandler{redis: rc, db: db}
}

// ServeHTTP handles readiness requests
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}
	healthy := true

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()); err != nil {
			components["redis"] = "unavailable"
			healthy = false
		} else {
			components["redis"] = "ok"
		}
	}
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			components["database"] = "unavailable"
			healthy = false
		} else {
			components["database"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":     state,
		"components": components,
	})
}
