package adapter

import (
	"context"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// loadFullscreen bridges a fullscreen load. Readiness and the parked
// listener are committed inside the continuation's single-fire guard, so a
// load that was cancelled or already resolved leaves no state behind.
func (a *Adapter) loadFullscreen(ctx context.Context, req *mediation.AdRequest, listener mediation.AdListener) (*Ad, error) {
	cont := newContinuation[struct{}]()
	cb := &fullscreenLoadCallback{
		adapter:   a,
		cont:      cont,
		requestID: req.RequestID,
		listener:  listener,
	}

	a.sdk.Load(req.PlacementID, cb)

	if _, err := cont.await(ctx); err != nil {
		return nil, err
	}

	logger.Adapter().Debug().
		Str("placement_id", req.PlacementID).
		Str("request_id", req.RequestID).
		Str("format", string(req.Format)).
		Msg("fullscreen ad loaded")

	return &Ad{
		Format:      req.Format,
		PlacementID: req.PlacementID,
		RequestID:   req.RequestID,
	}, nil
}

// showFullscreen presents a loaded fullscreen ad. Readiness is consumed
// before the partner call so a concurrent show of the same load fails the
// precondition instead of double-presenting.
func (a *Adapter) showFullscreen(ctx context.Context, ad *Ad) error {
	if !a.readiness.IsReady(ad.PlacementID) {
		return mediation.NewNotReadyError(ad.PlacementID)
	}
	a.readiness.Clear(ad.PlacementID)

	listener, ok := a.listeners.Take(ad.RequestID)
	if !ok {
		logger.Adapter().Warn().
			Str("placement_id", ad.PlacementID).
			Str("request_id", ad.RequestID).
			Msg("show without a parked listener")
	}
	a.registerShow(ad.PlacementID, ad.RequestID, listener)

	cont := newContinuation[struct{}]()
	cb := &fullscreenShowCallback{
		adapter:   a,
		cont:      cont,
		requestID: ad.RequestID,
		listener:  listener,
	}

	a.sdk.Show(ctx, ad.PlacementID, cb)

	if _, err := cont.await(ctx); err != nil {
		a.clearShow(ad.PlacementID)
		return err
	}
	return nil
}

// fullscreenLoadCallback bridges the partner's fullscreen load callbacks
type fullscreenLoadCallback struct {
	adapter   *Adapter
	cont      *continuation[struct{}]
	requestID string
	listener  mediation.AdListener
}

func (cb *fullscreenLoadCallback) OnLoaded(placementID string) {
	fired := cb.cont.complete(struct{}{}, func() {
		cb.adapter.readiness.Set(placementID, true)
		cb.adapter.listeners.Register(cb.requestID, cb.listener)
	})
	if !fired {
		cb.adapter.recordDuplicate("load")
	}
}

func (cb *fullscreenLoadCallback) OnLoadFailed(placementID string, err *partner.Error) {
	cb.adapter.logPartnerError("load", placementID, err)
	if !cb.cont.fail(translateError(mediation.StageLoad, err), nil) {
		cb.adapter.recordDuplicate("load")
	}
}

// fullscreenShowCallback bridges the partner's show-start callbacks. The
// impression fires inside the single-fire guard, so duplicate OnShown
// invocations cannot double-bill.
type fullscreenShowCallback struct {
	adapter   *Adapter
	cont      *continuation[struct{}]
	requestID string
	listener  mediation.AdListener
}

func (cb *fullscreenShowCallback) OnShown(placementID string) {
	fired := cb.cont.complete(struct{}{}, func() {
		if cb.listener != nil {
			cb.listener.OnImpression(cb.requestID)
			cb.adapter.recordEvent("impression")
		}
	})
	if !fired {
		cb.adapter.recordDuplicate("show")
	}
}

func (cb *fullscreenShowCallback) OnShowFailed(placementID string, err *partner.Error) {
	cb.adapter.logPartnerError("show", placementID, err)
	fired := cb.cont.fail(translateError(mediation.StageShow, err), func() {
		cb.adapter.clearShow(placementID)
	})
	if !fired {
		cb.adapter.recordDuplicate("show")
	}
}

// Delegate implementation. The partner SDK reports show-time events by
// placement only; the active-show table maps them back to the request and
// listener of the presentation in flight.

// OnClicked implements partner.Delegate
func (a *Adapter) OnClicked(placementID string) {
	a.routeShowEvent(placementID, "click", func(requestID string, l mediation.AdListener) {
		l.OnClick(requestID)
	})
}

// OnRewarded implements partner.Delegate
func (a *Adapter) OnRewarded(placementID string, label string, amount int) {
	a.routeShowEvent(placementID, "reward", func(requestID string, l mediation.AdListener) {
		l.OnReward(requestID, mediation.Reward{Label: label, Amount: amount})
	})
}

// OnDismissed implements partner.Delegate. Dismissal ends the
// presentation, so the routing entry is dropped afterwards.
func (a *Adapter) OnDismissed(placementID string) {
	a.routeShowEvent(placementID, "dismiss", func(requestID string, l mediation.AdListener) {
		l.OnDismiss(requestID)
	})
	a.clearShow(placementID)
}

func (a *Adapter) routeShowEvent(placementID, event string, deliver func(requestID string, l mediation.AdListener)) {
	show := a.lookupShow(placementID)
	if show == nil || show.listener == nil {
		logger.Adapter().Debug().
			Str("placement_id", placementID).
			Str("event", event).
			Msg("partner event with no active show")
		a.recordOrphan(event)
		return
	}
	deliver(show.requestID, show.listener)
	a.recordEvent(event)
}
