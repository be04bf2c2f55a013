package adapter

import (
	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
)

// Vantage supports exactly three banner sizes
var (
	sizeStandard    = partner.Size{Width: 320, Height: 50}
	sizeLeaderboard = partner.Size{Width: 728, Height: 90}
	sizeMediumRect  = partner.Size{Width: 300, Height: 250}
)

// BannerSizeFor maps a mediation banner size hint onto the nearest
// supported Vantage size. Selection is by requested height; a missing or
// undersized hint falls back to the standard 320x50.
func BannerSizeFor(hint *mediation.BannerSize) partner.Size {
	if hint == nil {
		return sizeStandard
	}

	switch {
	case hint.Height >= 250:
		return sizeMediumRect
	case hint.Height >= 90:
		return sizeLeaderboard
	default:
		return sizeStandard
	}
}
