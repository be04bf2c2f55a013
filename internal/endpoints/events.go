package endpoints

import (
	"context"
	"net/http"
	"strconv"

	"github.com/thenexusengine/tne_adbridge/internal/journal"
	"github.com/thenexusengine/tne_adbridge/internal/storage"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// EventLister reads back persisted lifecycle events
type EventLister interface {
	ListRecent(ctx context.Context, limit int) ([]journal.Event, error)
}

var _ EventLister = (*storage.EventStore)(nil)

// EventsHandler serves the persisted event journal at /adapter/events
type EventsHandler struct {
	store    EventLister
	recorder *journal.Recorder
}

// NewEventsHandler creates the events handler. store may be nil when no
// database is configured.
func NewEventsHandler(store EventLister, recorder *journal.Recorder) *EventsHandler {
	return &EventsHandler{store: store, recorder: recorder}
}

// ServeHTTP handles GET /adapter/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.store == nil {
		writeError(w, "event store not configured", http.StatusServiceUnavailable)
		return
	}

	// push buffered events out so the read-back reflects recent activity
	if h.recorder != nil {
		if err := h.recorder.Flush(r.Context()); err != nil {
			logger.HTTP().Warn().Err(err).Msg("journal flush before listing failed")
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		logger.HTTP().Error().Err(err).Msg("failed to list events")
		writeError(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	body := map[string]interface{}{"events": events}
	if h.recorder != nil {
		body["journal"] = h.recorder.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}
