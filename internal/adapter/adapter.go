// Package adapter implements the Vantage mediation adapter. It translates
// the mediation layer's uniform ad lifecycle (setup, bid token, load, show,
// invalidate, consent) onto the callback-based Vantage SDK and normalizes
// every partner result into the mediation error taxonomy at the boundary.
package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/metrics"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// Ad is a handle to one loaded ad transaction. For banners View holds the
// partner-owned visual object; fullscreen loads hand back no object, so
// View is nil and readiness is tracked purely by placement.
type Ad struct {
	Format      mediation.AdFormat
	PlacementID string
	RequestID   string
	View        partner.BannerView

	invalidated atomic.Bool
}

// Adapter owns all per-instance lifecycle state: the readiness tracker,
// the pending-listener registry and the routing table for show-time
// partner events. State is never shared between adapter instances.
type Adapter struct {
	sdk       partner.SDK
	readiness *readinessTracker
	listeners *listenerRegistry
	metrics   *metrics.Metrics

	initialized atomic.Bool
	appID       string

	showsMu sync.Mutex
	shows   map[string]*activeShow
}

// activeShow routes SDK-level show-time events (click, reward, dismissal)
// back to the listener that was registered at load time
type activeShow struct {
	requestID string
	listener  mediation.AdListener
}

// Option configures an Adapter
type Option func(*Adapter)

// WithMetrics attaches Prometheus metrics to the adapter
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// New creates an adapter over the given partner SDK
func New(sdk partner.SDK, opts ...Option) *Adapter {
	a := &Adapter{
		sdk:       sdk,
		readiness: newReadinessTracker(),
		listeners: newListenerRegistry(),
		shows:     make(map[string]*activeShow),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetUp parses the credentials blob and initializes the partner SDK.
// Missing or malformed credentials fail synchronously, before any partner
// call is attempted.
func (a *Adapter) SetUp(ctx context.Context, credentials json.RawMessage) error {
	creds, err := mediation.ParseCredentials(credentials)
	if err != nil {
		logger.Adapter().Warn().Err(err).Msg("setup rejected: invalid credentials")
		a.recordSetup("invalid_credentials")
		return err
	}

	if a.initialized.Load() {
		logger.Adapter().Debug().Msg("setup called on an initialized adapter")
		return nil
	}

	cont := newContinuation[struct{}]()
	a.sdk.Initialize(creds.AppID, &initCallback{adapter: a, cont: cont})

	if _, err := cont.await(ctx); err != nil {
		a.recordSetup("error")
		return err
	}

	a.appID = creds.AppID
	a.sdk.SetDelegate(a)
	a.initialized.Store(true)
	a.recordSetup("ok")

	logger.Adapter().Info().Str("app_id", creds.AppID).Msg("partner SDK initialized")
	return nil
}

// Initialized reports whether SetUp has completed successfully
func (a *Adapter) Initialized() bool {
	return a.initialized.Load()
}

// BidToken fetches the partner's bid token. Vantage does not participate
// in bidding, so the token is always empty.
func (a *Adapter) BidToken(ctx context.Context) (string, error) {
	return a.sdk.BidToken(), nil
}

// IsReady reports whether a placement holds a loaded, unshown ad
func (a *Adapter) IsReady(placementID string) bool {
	return a.readiness.IsReady(placementID)
}

// ReadyCount reports how many placements are currently ready
func (a *Adapter) ReadyCount() int {
	return a.readiness.ReadyCount()
}

// Load requests an ad for the placement and blocks until the partner SDK
// resolves the load or ctx is cancelled. On success the placement is
// marked ready and, for fullscreen formats, the listener is parked in the
// registry until show time.
func (a *Adapter) Load(ctx context.Context, req *mediation.AdRequest, listener mediation.AdListener) (*Ad, error) {
	if !req.Format.Valid() {
		return nil, mediation.NewUnsupportedFormatError(mediation.StageLoad, string(req.Format))
	}
	if req.PlacementID == "" {
		return nil, &mediation.AdapterError{
			Stage:   mediation.StageLoad,
			Code:    mediation.ErrLoadUnknown,
			Message: "missing placement_id",
		}
	}

	// A new load attempt supersedes any earlier ad for the placement, so
	// readiness resets before the partner is asked. A failed reload must
	// not leave the stale entry presentable.
	a.readiness.Clear(req.PlacementID)

	start := time.Now()
	var (
		ad  *Ad
		err error
	)
	if req.Format.IsFullscreen() {
		ad, err = a.loadFullscreen(ctx, req, listener)
	} else {
		ad, err = a.loadBanner(ctx, req, listener)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	a.recordLoad(string(req.Format), status, time.Since(start))
	a.syncReadyGauge()

	return ad, err
}

// Show presents a loaded ad. The readiness precondition is enforced here:
// a not-ready placement fails fast without any partner SDK call, and a
// ready placement is immediately marked not-ready so a second show of the
// same load cannot race through.
func (a *Adapter) Show(ctx context.Context, ad *Ad) error {
	start := time.Now()

	var err error
	if ad.Format.IsFullscreen() {
		err = a.showFullscreen(ctx, ad)
	} else {
		err = a.showBanner(ad)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	a.recordShow(string(ad.Format), status, time.Since(start))
	a.syncReadyGauge()

	return err
}

// Invalidate releases an ad transaction: readiness and registry entries
// are removed and, for banners, the partner-owned view is destroyed.
// Repeated invalidations of the same ad are no-ops.
func (a *Adapter) Invalidate(ad *Ad) error {
	if ad == nil {
		return nil
	}
	if !ad.invalidated.CompareAndSwap(false, true) {
		return nil
	}

	a.readiness.Clear(ad.PlacementID)
	a.listeners.Remove(ad.RequestID)
	a.clearShow(ad.PlacementID)

	if ad.View != nil {
		ad.View.Destroy()
	}

	if a.metrics != nil {
		a.metrics.RecordInvalidate()
	}
	a.syncReadyGauge()

	logger.Adapter().Debug().
		Str("placement_id", ad.PlacementID).
		Str("request_id", ad.RequestID).
		Str("format", string(ad.Format)).
		Msg("ad invalidated")
	return nil
}

// initCallback bridges the partner's Initialize callbacks
type initCallback struct {
	adapter *Adapter
	cont    *continuation[struct{}]
}

func (cb *initCallback) OnInitialized() {
	if !cb.cont.complete(struct{}{}, nil) {
		cb.adapter.recordDuplicate("init")
	}
}

func (cb *initCallback) OnInitFailed(err *partner.Error) {
	cb.adapter.logPartnerError("init", "", err)
	if !cb.cont.fail(translateError(mediation.StageInit, err), nil) {
		cb.adapter.recordDuplicate("init")
	}
}

// registerShow installs show-time event routing for a placement
func (a *Adapter) registerShow(placementID, requestID string, listener mediation.AdListener) {
	a.showsMu.Lock()
	defer a.showsMu.Unlock()
	a.shows[placementID] = &activeShow{requestID: requestID, listener: listener}
}

// clearShow removes show-time event routing for a placement
func (a *Adapter) clearShow(placementID string) {
	a.showsMu.Lock()
	defer a.showsMu.Unlock()
	delete(a.shows, placementID)
}

func (a *Adapter) lookupShow(placementID string) *activeShow {
	a.showsMu.Lock()
	defer a.showsMu.Unlock()
	return a.shows[placementID]
}

// logPartnerError logs a raw partner failure with full detail before it is
// translated and crosses back to the mediation layer
func (a *Adapter) logPartnerError(operation, placementID string, err *partner.Error) {
	event := logger.Adapter().Warn().Str("operation", operation)
	if placementID != "" {
		event = event.Str("placement_id", placementID)
	}
	if err != nil {
		event = event.Str("partner_code", string(err.Code)).Str("partner_message", err.Message)
	}
	event.Msg("partner SDK error")

	if a.metrics != nil && err != nil {
		a.metrics.RecordPartnerError(operation, string(err.Code))
	}
}

func (a *Adapter) recordSetup(status string) {
	if a.metrics != nil {
		a.metrics.RecordSetup(status)
	}
}

func (a *Adapter) recordLoad(format, status string, d time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordLoad(format, status, d)
	}
}

func (a *Adapter) recordShow(format, status string, d time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordShow(format, status, d)
	}
}

func (a *Adapter) recordDuplicate(operation string) {
	logger.Adapter().Debug().Str("operation", operation).Msg("duplicate partner callback dropped")
	if a.metrics != nil {
		a.metrics.RecordDuplicateCallback(operation)
	}
}

func (a *Adapter) recordEvent(event string) {
	if a.metrics != nil {
		a.metrics.RecordLifecycleEvent(event)
	}
}

func (a *Adapter) recordOrphan(event string) {
	if a.metrics != nil {
		a.metrics.RecordOrphanedEvent(event)
	}
}

func (a *Adapter) syncReadyGauge() {
	if a.metrics != nil {
		a.metrics.SetReadyPlacements(a.readiness.ReadyCount())
	}
}
