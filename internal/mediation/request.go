// Package mediation defines the vocabulary the mediation layer uses to
// drive partner adapters: ad requests, listener callbacks and the
// normalized error taxonomy.
package mediation

import "encoding/json"

// AdFormat identifies the requested ad format
type AdFormat string

const (
	FormatBanner       AdFormat = "banner"
	FormatInterstitial AdFormat = "interstitial"
	FormatRewarded     AdFormat = "rewarded"
)

// IsFullscreen reports whether the format covers the full screen
// (interstitial and rewarded, as opposed to banner).
func (f AdFormat) IsFullscreen() bool {
	return f == FormatInterstitial || f == FormatRewarded
}

// Valid reports whether the format is one the adapter knows about
func (f AdFormat) Valid() bool {
	switch f {
	case FormatBanner, FormatInterstitial, FormatRewarded:
		return true
	}
	return false
}

// BannerSize is a banner dimension hint in density-independent pixels
type BannerSize struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// AdRequest describes one load transaction from the mediation layer.
//
// PlacementID names the ad slot in the partner's namespace and may be
// reused across transactions; RequestID names this particular transaction
// and is unique in the mediation layer's namespace.
type AdRequest struct {
	Format      AdFormat        `json:"format"`
	PlacementID string          `json:"placement_id"`
	RequestID   string          `json:"request_id"`
	Size        *BannerSize     `json:"size,omitempty"`
	Credentials json.RawMessage `json:"credentials,omitempty"`
}

// Credentials is the partner configuration blob supplied at setup time
type Credentials struct {
	AppID string `json:"app_id"`
}

// ParseCredentials decodes and validates a credentials blob.
// A missing or empty app_id is an InvalidCredentials error.
func ParseCredentials(raw json.RawMessage) (*Credentials, error) {
	if len(raw) == 0 {
		return nil, NewInvalidCredentialsError("missing credentials")
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, NewInvalidCredentialsError("malformed credentials: " + err.Error())
	}
	if creds.AppID == "" {
		return nil, NewInvalidCredentialsError("missing app_id")
	}
	return &creds, nil
}
