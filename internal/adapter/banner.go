package adapter

import (
	"context"
	"sync"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// loadBanner creates a partner banner view and bridges its load. Banner
// events stay scoped to the view's own listener for the lifetime of the
// ad, so banners never touch the SDK-level delegate or the parked-listener
// registry.
func (a *Adapter) loadBanner(ctx context.Context, req *mediation.AdRequest, listener mediation.AdListener) (*Ad, error) {
	size := BannerSizeFor(req.Size)

	events := &bannerEvents{
		adapter:   a,
		cont:      newContinuation[partner.BannerView](),
		requestID: req.RequestID,
		listener:  listener,
	}

	view := a.sdk.NewBanner(req.PlacementID, size, events)
	view.Load()

	loaded, err := events.cont.await(ctx)
	if err != nil {
		// the view never reaches the caller, release it here
		view.Destroy()
		return nil, err
	}

	logger.Adapter().Debug().
		Str("placement_id", req.PlacementID).
		Str("request_id", req.RequestID).
		Int("width", size.Width).
		Int("height", size.Height).
		Msg("banner ad loaded")

	return &Ad{
		Format:      req.Format,
		PlacementID: req.PlacementID,
		RequestID:   req.RequestID,
		View:        loaded,
	}, nil
}

// showBanner validates and consumes readiness. Presentation itself is the
// host's job: it attaches the view to its hierarchy, so there is no
// partner show call to wait on.
func (a *Adapter) showBanner(ad *Ad) error {
	if !a.readiness.IsReady(ad.PlacementID) {
		return mediation.NewNotReadyError(ad.PlacementID)
	}
	a.readiness.Clear(ad.PlacementID)
	return nil
}

// bannerEvents receives partner banner callbacks for one view. The load
// result goes through the continuation; later events are forwarded to the
// mediation listener directly. The impression fires at most once no matter
// how many shown callbacks the partner delivers.
type bannerEvents struct {
	adapter   *Adapter
	cont      *continuation[partner.BannerView]
	requestID string
	listener  mediation.AdListener

	impressionOnce sync.Once
}

func (e *bannerEvents) OnBannerLoaded(view partner.BannerView) {
	fired := e.cont.complete(view, func() {
		e.adapter.readiness.Set(view.PlacementID(), true)
	})
	if !fired {
		e.adapter.recordDuplicate("load")
	}
}

func (e *bannerEvents) OnBannerFailed(view partner.BannerView, err *partner.Error) {
	e.adapter.logPartnerError("load", view.PlacementID(), err)
	if !e.cont.fail(translateError(mediation.StageLoad, err), nil) {
		e.adapter.recordDuplicate("load")
	}
}

func (e *bannerEvents) OnBannerShown(view partner.BannerView) {
	fired := false
	e.impressionOnce.Do(func() {
		fired = true
		if e.listener != nil {
			e.listener.OnImpression(e.requestID)
			e.adapter.recordEvent("impression")
		}
	})
	if !fired {
		e.adapter.recordDuplicate("show")
	}
}

func (e *bannerEvents) OnBannerClicked(view partner.BannerView) {
	if e.listener == nil {
		e.adapter.recordOrphan("click")
		return
	}
	e.listener.OnClick(e.requestID)
	e.adapter.recordEvent("click")
}

// OnBannerLeftApplication is informational only; the click it follows was
// already reported by OnBannerClicked
func (e *bannerEvents) OnBannerLeftApplication(view partner.BannerView) {
	logger.Adapter().Debug().
		Str("placement_id", view.PlacementID()).
		Str("request_id", e.requestID).
		Msg("banner click left the application")
}
