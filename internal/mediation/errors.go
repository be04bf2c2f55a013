package mediation

import "fmt"

// Stage identifies which adapter operation an error belongs to
type Stage string

const (
	StageInit Stage = "init"
	StageLoad Stage = "load"
	StageShow Stage = "show"
	// StageOther covers failures not tied to a single lifecycle stage
	// (connectivity, unmapped partner codes)
	StageOther Stage = "other"
)

// ErrorCode is the normalized mediation-layer error code
type ErrorCode string

const (
	// Initialization errors
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrAdBlockerDetected  ErrorCode = "AD_BLOCKER_DETECTED"
	ErrInitUnknown        ErrorCode = "INIT_UNKNOWN"

	// Load errors
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrNoFill            ErrorCode = "NO_FILL"
	ErrLoadTimeout       ErrorCode = "LOAD_TIMEOUT"
	ErrLoadUnknown       ErrorCode = "LOAD_UNKNOWN"

	// Show errors
	ErrNotReady    ErrorCode = "INVALID_PLACEMENT_NOT_READY"
	ErrShowTimeout ErrorCode = "SHOW_TIMEOUT"
	ErrShowUnknown ErrorCode = "SHOW_UNKNOWN"

	// Other errors
	ErrNoConnectivity ErrorCode = "NO_CONNECTIVITY"
	ErrPartner        ErrorCode = "PARTNER_ERROR"
)

// AdapterError is the single tagged error type every partner failure is
// normalized into at the boundary, before any business logic consumes it.
// PartnerCode and PartnerMessage keep the raw partner detail for postmortem
// diagnosis; the mediation layer only ever sees Stage and Code.
type AdapterError struct {
	Stage          Stage
	Code           ErrorCode
	Message        string
	PartnerCode    string
	PartnerMessage string
	Cause          error
}

func (e *AdapterError) Error() string {
	if e.PartnerCode != "" {
		return fmt.Sprintf("[%s/%s] %s (partner: %s %q)", e.Stage, e.Code, e.Message, e.PartnerCode, e.PartnerMessage)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Stage, e.Code, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is match on stage+code against sentinel errors
func (e *AdapterError) Is(target error) bool {
	t, ok := target.(*AdapterError)
	if !ok {
		return false
	}
	return e.Stage == t.Stage && e.Code == t.Code
}

// NewInvalidCredentialsError creates a synchronous setup failure
func NewInvalidCredentialsError(message string) *AdapterError {
	return &AdapterError{
		Stage:   StageInit,
		Code:    ErrInvalidCredentials,
		Message: message,
	}
}

// NewUnsupportedFormatError creates an error for a format the dispatcher
// cannot route
func NewUnsupportedFormatError(stage Stage, format string) *AdapterError {
	return &AdapterError{
		Stage:   stage,
		Code:    ErrUnsupportedFormat,
		Message: fmt.Sprintf("unsupported ad format: %s", format),
	}
}

// NewNotReadyError creates the fail-fast error for showing a placement
// without a successful load
func NewNotReadyError(placementID string) *AdapterError {
	return &AdapterError{
		Stage:   StageShow,
		Code:    ErrNotReady,
		Message: fmt.Sprintf("placement %s is not ready to show", placementID),
	}
}

// NewPartnerError wraps a raw partner failure under a normalized code
func NewPartnerError(stage Stage, code ErrorCode, partnerCode, partnerMessage string) *AdapterError {
	return &AdapterError{
		Stage:          stage,
		Code:           code,
		Message:        "partner SDK reported an error",
		PartnerCode:    partnerCode,
		PartnerMessage: partnerMessage,
	}
}
