// Package endpoints provides HTTP endpoint handlers for the adapter harness
package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/thenexusengine/tne_adbridge/internal/adapter"
	"github.com/thenexusengine/tne_adbridge/internal/config"
	"github.com/thenexusengine/tne_adbridge/internal/journal"
	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/internal/storage"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// maxRequestBodySize limits request body reads to prevent OOM attacks (1MB)
const maxRequestBodySize = 1024 * 1024

// ProfileSource fetches external placement profiles for the simulator.
// Nil means no external profile store is configured.
type ProfileSource interface {
	Get(ctx context.Context, placementID string) (*partner.Profile, error)
}

var _ ProfileSource = (*storage.ProfileStore)(nil)

// AdapterHandler exposes the adapter lifecycle over HTTP. Loaded ads are
// held by request ID until they are shown and invalidated, standing in for
// the ad handles a mediation SDK would keep on device.
type AdapterHandler struct {
	adapter  *adapter.Adapter
	sim      *partner.Sim
	profiles ProfileSource
	recorder *journal.Recorder

	mu  sync.Mutex
	ads map[string]*adapter.Ad
}

// NewAdapterHandler creates the lifecycle handler. profiles and recorder
// may be nil.
func NewAdapterHandler(a *adapter.Adapter, sim *partner.Sim, profiles ProfileSource, recorder *journal.Recorder) *AdapterHandler {
	return &AdapterHandler{
		adapter:  a,
		sim:      sim,
		profiles: profiles,
		recorder: recorder,
		ads:      make(map[string]*adapter.Ad),
	}
}

// Setup handles POST /adapter/setup
func (h *AdapterHandler) Setup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		Credentials json.RawMessage `json:"credentials"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		logger.HTTP().Warn().Err(err).Msg("invalid JSON in setup request")
		writeError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	if err := h.adapter.SetUp(r.Context(), req.Credentials); err != nil {
		h.record(journal.Event{Event: "setup_failed", ErrorCode: errorCode(err)})
		writeAdapterError(w, err)
		return
	}

	h.record(journal.Event{Event: "setup"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

// Consent handles POST /adapter/consent
func (h *AdapterHandler) Consent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var settings adapter.ConsentSettings
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&settings); err != nil {
		writeError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	h.adapter.SetConsent(settings)
	w.WriteHeader(http.StatusNoContent)
}

// Token handles GET /adapter/token
func (h *AdapterHandler) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token, err := h.adapter.BidToken(r.Context())
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Load handles POST /adapter/load
func (h *AdapterHandler) Load(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req mediation.AdRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		logger.HTTP().Warn().Err(err).Msg("invalid JSON in load request")
		writeError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.DefaultLoadTimeout)
	defer cancel()

	h.applyProfile(ctx, req.PlacementID)

	listener := &journalListener{
		handler:     h,
		placementID: req.PlacementID,
		format:      string(req.Format),
	}

	ad, err := h.adapter.Load(ctx, &req, listener)
	if err != nil {
		h.record(journal.Event{
			RequestID:   req.RequestID,
			PlacementID: req.PlacementID,
			Format:      string(req.Format),
			Event:       "load_failed",
			ErrorCode:   errorCode(err),
		})
		writeAdapterError(w, err)
		return
	}

	h.mu.Lock()
	h.ads[ad.RequestID] = ad
	h.mu.Unlock()

	h.record(journal.Event{
		RequestID:   ad.RequestID,
		PlacementID: ad.PlacementID,
		Format:      string(ad.Format),
		Event:       "load",
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request_id":   ad.RequestID,
		"placement_id": ad.PlacementID,
		"format":       ad.Format,
		"ready":        true,
	})
}

// Show handles POST /adapter/show
func (h *AdapterHandler) Show(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ad, ok := h.adFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.DefaultShowTimeout)
	defer cancel()

	if err := h.adapter.Show(ctx, ad); err != nil {
		h.record(journal.Event{
			RequestID:   ad.RequestID,
			PlacementID: ad.PlacementID,
			Format:      string(ad.Format),
			Event:       "show_failed",
			ErrorCode:   errorCode(err),
		})
		writeAdapterError(w, err)
		return
	}

	h.record(journal.Event{
		RequestID:   ad.RequestID,
		PlacementID: ad.PlacementID,
		Format:      string(ad.Format),
		Event:       "show",
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "shown"})
}

// Invalidate handles POST /adapter/invalidate
func (h *AdapterHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ad, ok := h.adFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.adapter.Invalidate(ad); err != nil {
		writeAdapterError(w, err)
		return
	}

	h.mu.Lock()
	delete(h.ads, ad.RequestID)
	h.mu.Unlock()

	h.record(journal.Event{
		RequestID:   ad.RequestID,
		PlacementID: ad.PlacementID,
		Format:      string(ad.Format),
		Event:       "invalidate",
	})

	w.WriteHeader(http.StatusNoContent)
}

// adFromRequest decodes a request-ID body and resolves the held ad
func (h *AdapterHandler) adFromRequest(w http.ResponseWriter, r *http.Request) (*adapter.Ad, bool) {
	defer r.Body.Close()
	var req struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		writeError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return nil, false
	}
	if req.RequestID == "" {
		writeError(w, "request_id: required", http.StatusBadRequest)
		return nil, false
	}

	h.mu.Lock()
	ad := h.ads[req.RequestID]
	h.mu.Unlock()

	if ad == nil {
		writeError(w, "unknown request_id: "+req.RequestID, http.StatusNotFound)
		return nil, false
	}
	return ad, true
}

// applyProfile pushes an externally stored placement profile into the
// simulator before a load. Missing store or missing profile is not an
// error; the simulator keeps its current behavior.
func (h *AdapterHandler) applyProfile(ctx context.Context, placementID string) {
	if h.profiles == nil || h.sim == nil || placementID == "" {
		return
	}

	profile, err := h.profiles.Get(ctx, placementID)
	if err != nil {
		logger.HTTP().Warn().Err(err).Str("placement_id", placementID).Msg("profile fetch failed")
		return
	}
	if profile == nil {
		return
	}
	h.sim.SetProfile(placementID, *profile)
}

func (h *AdapterHandler) record(event journal.Event) {
	if h.recorder != nil {
		h.recorder.Record(event)
	}
}

// journalListener forwards lifecycle callbacks into the event journal
type journalListener struct {
	handler     *AdapterHandler
	placementID string
	format      string
}

func (l *journalListener) event(requestID, name string) journal.Event {
	return journal.Event{
		RequestID:   requestID,
		PlacementID: l.placementID,
		Format:      l.format,
		Event:       name,
	}
}

func (l *journalListener) OnImpression(requestID string) {
	l.handler.record(l.event(requestID, "impression"))
}

func (l *journalListener) OnClick(requestID string) {
	l.handler.record(l.event(requestID, "click"))
}

func (l *journalListener) OnReward(requestID string, reward mediation.Reward) {
	e := l.event(requestID, "reward")
	e.RewardLabel = reward.Label
	e.RewardAmt = reward.Amount
	l.handler.record(e)
}

func (l *journalListener) OnDismiss(requestID string) {
	l.handler.record(l.event(requestID, "dismiss"))
}

// writeAdapterError maps a normalized adapter error onto an HTTP status
func writeAdapterError(w http.ResponseWriter, err error) {
	var aerr *mediation.AdapterError
	if !errors.As(err, &aerr) {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, err.Error(), status)
		return
	}

	status := http.StatusBadGateway
	switch aerr.Code {
	case mediation.ErrInvalidCredentials, mediation.ErrUnsupportedFormat, mediation.ErrLoadUnknown:
		status = http.StatusBadRequest
	case mediation.ErrNotReady:
		status = http.StatusConflict
	case mediation.ErrNoFill:
		status = http.StatusNoContent
	case mediation.ErrLoadTimeout, mediation.ErrShowTimeout:
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	writeJSON(w, status, map[string]string{
		"error":        aerr.Message,
		"stage":        string(aerr.Stage),
		"code":         string(aerr.Code),
		"partner_code": aerr.PartnerCode,
	})
}

func errorCode(err error) string {
	var aerr *mediation.AdapterError
	if errors.As(err, &aerr) {
		return string(aerr.Code)
	}
	return "INTERNAL"
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.HTTP().Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
