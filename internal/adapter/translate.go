package adapter

import (
	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
)

// translateError normalizes a raw Vantage error into the mediation
// taxonomy. The mapping is a fixed table; codes it does not know fall back
// to a generic partner error. op names the operation the error interrupted
// and is only used when the partner reports no code at all.
func translateError(op mediation.Stage, err *partner.Error) *mediation.AdapterError {
	if err == nil {
		return mediation.NewPartnerError(op, unknownCodeFor(op), "", "partner reported failure without detail")
	}

	switch err.Code {
	case partner.ErrAdBlockerDetected:
		return mediation.NewPartnerError(mediation.StageInit, mediation.ErrAdBlockerDetected, string(err.Code), err.Message)
	case partner.ErrNoFill:
		return mediation.NewPartnerError(mediation.StageLoad, mediation.ErrNoFill, string(err.Code), err.Message)
	case partner.ErrInitializeFailed, partner.ErrNotInitialized:
		return mediation.NewPartnerError(mediation.StageInit, mediation.ErrInitUnknown, string(err.Code), err.Message)
	case partner.ErrNoConnection:
		return mediation.NewPartnerError(mediation.StageOther, mediation.ErrNoConnectivity, string(err.Code), err.Message)
	case partner.ErrLoadTimeout:
		return mediation.NewPartnerError(mediation.StageLoad, mediation.ErrLoadTimeout, string(err.Code), err.Message)
	case partner.ErrShowTimeout:
		return mediation.NewPartnerError(mediation.StageShow, mediation.ErrShowTimeout, string(err.Code), err.Message)
	default:
		return mediation.NewPartnerError(mediation.StageOther, mediation.ErrPartner, string(err.Code), err.Message)
	}
}

// unknownCodeFor picks the stage-appropriate unknown code
func unknownCodeFor(op mediation.Stage) mediation.ErrorCode {
	switch op {
	case mediation.StageInit:
		return mediation.ErrInitUnknown
	case mediation.StageLoad:
		return mediation.ErrLoadUnknown
	case mediation.StageShow:
		return mediation.ErrShowUnknown
	default:
		return mediation.ErrPartner
	}
}
