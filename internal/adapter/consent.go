package adapter

import (
	"strconv"

	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// ConsentSettings carries the privacy flags the mediation layer pushes
// down to the adapter. Nil fields mean "signal absent" and are never
// written to the partner SDK, so an unset flag cannot overwrite a value
// set earlier.
type ConsentSettings struct {
	GDPRConsent      *bool `json:"gdpr_consent,omitempty"`
	PrivacyConsent   *bool `json:"privacy_consent,omitempty"`
	UserOverAgeLimit *bool `json:"user_over_age_limit,omitempty"`
}

// SetConsent propagates the supplied privacy flags to the partner SDK's
// metadata store. Consent may arrive before SetUp; the SDK buffers
// metadata until initialization, so no ordering check is needed.
func (a *Adapter) SetConsent(settings ConsentSettings) {
	a.setConsentFlag("gdpr", partner.MetadataGDPRConsent, settings.GDPRConsent)
	a.setConsentFlag("privacy", partner.MetadataPrivacyConsent, settings.PrivacyConsent)
	a.setConsentFlag("age_limit", partner.MetadataUserOverAgeLimit, settings.UserOverAgeLimit)
}

func (a *Adapter) setConsentFlag(signalType, key string, value *bool) {
	if value == nil {
		return
	}

	a.sdk.SetMetadata(key, strconv.FormatBool(*value))

	if a.metrics != nil {
		a.metrics.RecordConsentSignal(signalType, *value)
	}

	logger.Adapter().Debug().
		Str("key", key).
		Bool("value", *value).
		Msg("consent flag propagated")
}
