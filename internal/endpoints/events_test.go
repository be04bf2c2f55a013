package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thenexusengine/tne_adbridge/internal/journal"
)

type staticLister struct {
	events   []journal.Event
	gotLimit int
}

func (l *staticLister) ListRecent(_ context.Context, limit int) ([]journal.Event, error) {
	l.gotLimit = limit
	return l.events, nil
}

func TestEventsEndpointWithoutStore(t *testing.T) {
	h := NewEventsHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapter/events", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	lister := &staticLister{events: []journal.Event{
		{Time: time.Now().UTC(), RequestID: "req-1", PlacementID: "plc-1", Format: "banner", Event: "impression"},
	}}
	sink := &memorySink{}
	recorder := journal.NewRecorder(sink, 100)
	defer recorder.Close()

	h := NewEventsHandler(lister, recorder)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adapter/events?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if lister.gotLimit != 5 {
		t.Fatalf("limit = %d, want 5", lister.gotLimit)
	}

	var resp struct {
		Events  []journal.Event `json:"events"`
		Journal journal.Stats   `json:"journal"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].RequestID != "req-1" {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
}

func TestEventsEndpointRejectsPost(t *testing.T) {
	h := NewEventsHandler(&staticLister{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/adapter/events", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
