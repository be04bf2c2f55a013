// Package partner defines the surface of the Vantage ad network SDK the
// adapter drives, together with an in-process simulator used by the
// harness and tests. The real SDK owns all network I/O and delivers every
// result through callbacks on its own goroutines.
package partner

import "context"

// Metadata keys for consent flags
const (
	MetadataGDPRConsent      = "gdpr.consent"
	MetadataPrivacyConsent   = "privacy.consent"
	MetadataUserOverAgeLimit = "privacy.useroveragelimit"
)

// ErrorCode is a raw Vantage SDK error enumerator
type ErrorCode string

const (
	ErrAdBlockerDetected ErrorCode = "ad-blocker-detected"
	ErrNoFill            ErrorCode = "no-fill"
	ErrInitializeFailed  ErrorCode = "initialize-failed"
	ErrNotInitialized    ErrorCode = "not-initialized"
	ErrNoConnection      ErrorCode = "no-connection"
	ErrLoadTimeout       ErrorCode = "load-timeout"
	ErrShowTimeout       ErrorCode = "show-timeout"
)

// Error is a failure reported by the partner SDK
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Size is a banner dimension in density-independent pixels
type Size struct {
	Width  int
	Height int
}

// InitCallback receives the result of Initialize
type InitCallback interface {
	OnInitialized()
	OnInitFailed(err *Error)
}

// LoadCallback receives the result of a fullscreen Load
type LoadCallback interface {
	OnLoaded(placementID string)
	OnLoadFailed(placementID string, err *Error)
}

// ShowCallback receives the show-start result of a fullscreen Show.
// Later show-time events (click, reward, dismissal) arrive on the
// SDK-level Delegate, not on this callback.
type ShowCallback interface {
	OnShown(placementID string)
	OnShowFailed(placementID string, err *Error)
}

// Delegate receives show-time events that the SDK does not scope to a
// single Show call.
type Delegate interface {
	OnClicked(placementID string)
	OnRewarded(placementID string, label string, amount int)
	OnDismissed(placementID string)
}

// BannerListener receives events for one banner view. Banners have richer
// per-event callbacks than fullscreen placements.
type BannerListener interface {
	OnBannerLoaded(view BannerView)
	OnBannerFailed(view BannerView, err *Error)
	OnBannerShown(view BannerView)
	OnBannerClicked(view BannerView)
	OnBannerLeftApplication(view BannerView)
}

// BannerView is a partner-owned visual object backing one banner ad
type BannerView interface {
	// Load starts the asynchronous ad fetch; results arrive on the
	// listener supplied at creation time
	Load()
	PlacementID() string
	Size() Size
	// Destroy releases the partner-owned resources behind the view
	Destroy()
}

// SDK is the Vantage partner SDK surface consumed by the adapter
type SDK interface {
	// Initialize starts the SDK for the given application; exactly one
	// callback method eventually fires
	Initialize(appID string, cb InitCallback)

	// SetDelegate installs the receiver for show-time events
	SetDelegate(d Delegate)

	// Load requests a fullscreen ad for the placement. Load hands back no
	// object reference; readiness is tracked by the caller.
	Load(placementID string, cb LoadCallback)

	// Show presents a previously loaded fullscreen ad. The context stands
	// in for the host activity; the SDK does not support cancellation.
	Show(ctx context.Context, placementID string, cb ShowCallback)

	// NewBanner creates a banner view for the placement; call Load on the
	// returned view to start the fetch
	NewBanner(placementID string, size Size, l BannerListener) BannerView

	// SetMetadata stores a consent or configuration flag in the SDK's
	// key-value store
	SetMetadata(key, value string)

	// BidToken returns the token for real-time bidding auctions. Vantage
	// does not participate in bidding, so the token is always empty.
	BidToken() string
}
