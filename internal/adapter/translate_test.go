package adapter

import (
	"testing"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
	"github.com/thenexusengine/tne_adbridge/internal/partner"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		op        mediation.Stage
		code      partner.ErrorCode
		wantStage mediation.Stage
		wantCode  mediation.ErrorCode
	}{
		{
			name:      "ad blocker maps to init regardless of operation",
			op:        mediation.StageLoad,
			code:      partner.ErrAdBlockerDetected,
			wantStage: mediation.StageInit,
			wantCode:  mediation.ErrAdBlockerDetected,
		},
		{
			name:      "no fill",
			op:        mediation.StageLoad,
			code:      partner.ErrNoFill,
			wantStage: mediation.StageLoad,
			wantCode:  mediation.ErrNoFill,
		},
		{
			name:      "initialize failed",
			op:        mediation.StageInit,
			code:      partner.ErrInitializeFailed,
			wantStage: mediation.StageInit,
			wantCode:  mediation.ErrInitUnknown,
		},
		{
			name:      "not initialized maps to init even during load",
			op:        mediation.StageLoad,
			code:      partner.ErrNotInitialized,
			wantStage: mediation.StageInit,
			wantCode:  mediation.ErrInitUnknown,
		},
		{
			name:      "no connection",
			op:        mediation.StageShow,
			code:      partner.ErrNoConnection,
			wantStage: mediation.StageOther,
			wantCode:  mediation.ErrNoConnectivity,
		},
		{
			name:      "load timeout",
			op:        mediation.StageLoad,
			code:      partner.ErrLoadTimeout,
			wantStage: mediation.StageLoad,
			wantCode:  mediation.ErrLoadTimeout,
		},
		{
			name:      "show timeout",
			op:        mediation.StageShow,
			code:      partner.ErrShowTimeout,
			wantStage: mediation.StageShow,
			wantCode:  mediation.ErrShowTimeout,
		},
		{
			name:      "unmapped code falls back to partner error",
			op:        mediation.StageShow,
			code:      partner.ErrorCode("exotic-new-code"),
			wantStage: mediation.StageOther,
			wantCode:  mediation.ErrPartner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &partner.Error{Code: tt.code, Message: "detail"}
			got := translateError(tt.op, raw)

			if got.Stage != tt.wantStage {
				t.Errorf("Stage = %s, want %s", got.Stage, tt.wantStage)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.PartnerCode != string(tt.code) {
				t.Errorf("PartnerCode = %q, want %q", got.PartnerCode, tt.code)
			}
			if got.PartnerMessage != "detail" {
				t.Errorf("PartnerMessage = %q, want %q", got.PartnerMessage, "detail")
			}
		})
	}
}

func TestTranslateErrorNil(t *testing.T) {
	tests := []struct {
		op       mediation.Stage
		wantCode mediation.ErrorCode
	}{
		{mediation.StageInit, mediation.ErrInitUnknown},
		{mediation.StageLoad, mediation.ErrLoadUnknown},
		{mediation.StageShow, mediation.ErrShowUnknown},
		{mediation.StageOther, mediation.ErrPartner},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got := translateError(tt.op, nil)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", got.Code, tt.wantCode)
			}
		})
	}
}
