package ocpp

import "fmt"

// ErrorCode is one of the OCPP 1.6 CallError error codes. The exact strings
// (including the two historical misspellings) are fixed by the protocol and
// must be reproduced verbatim on the wire.
type ErrorCode string

const (
	ErrorNotImplemented               ErrorCode = "NotImplemented"
	ErrorNotSupported                 ErrorCode = "NotSupported"
	ErrorInternalError                ErrorCode = "InternalError"
	ErrorProtocolError                ErrorCode = "ProtocolError"
	ErrorSecurityError                ErrorCode = "SecurityError"
	ErrorFormationViolation           ErrorCode = "FormationViolation"
	ErrorPropertyConstraintViolation  ErrorCode = "PropertyConstraintViolation"
	ErrorOccurenceConstraintViolation ErrorCode = "OccurenceConstraintViolation"
	ErrorTypeConstraintViolation      ErrorCode = "TypeConstraintViolation"
	ErrorGenericError                 ErrorCode = "GenericError"
)

var defaultDescriptions = map[ErrorCode]string{
	ErrorNotImplemented:               "Requested Action is not known by receiver",
	ErrorNotSupported:                 "Requested Action is recognized but not supported by the receiver",
	ErrorInternalError:                "An internal error occurred and the receiver was not able to process the requested Action successfully",
	ErrorProtocolError:                "Payload for Action is incomplete",
	ErrorSecurityError:                "During the processing of Action a security issue occurred preventing receiver from completing the Action successfully",
	ErrorFormationViolation:           "Payload for Action is syntactically incorrect or not conform the PDU structure for Action",
	ErrorPropertyConstraintViolation:  "Payload is syntactically correct but at least one field contains an invalid value",
	ErrorOccurenceConstraintViolation: "Payload for Action is syntactically correct but at least one of the fields violates occurrence constraints",
	ErrorTypeConstraintViolation:      "Payload for Action is syntactically correct but at least one of the fields violates data type constraints",
	ErrorGenericError:                 "Any other error not covered by the previous ones",
}

// knownErrorCodes is the closed taxonomy. A CallError carrying any other
// code is rejected by the outbound waiter with UnknownCallErrorCodeError.
var knownErrorCodes = func() map[ErrorCode]bool {
	m := make(map[ErrorCode]bool, len(defaultDescriptions))
	for code := range defaultDescriptions {
		m[code] = true
	}
	return m
}()

// IsKnownErrorCode reports whether code is part of the OCPP 1.6 taxonomy.
func IsKnownErrorCode(code ErrorCode) bool {
	return knownErrorCodes[code]
}

// Error is a member of the OCPP error taxonomy: a wire error code, a
// human-readable description and a details mapping. Handlers may return an
// *Error to control exactly which CallError the session engine emits;
// returning any other error type results in InternalError.
type Error struct {
	Code        ErrorCode
	Description string
	Details     map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewError builds a taxonomy error. An empty description falls back to the
// code's default wording; a nil details map becomes an empty object on the
// wire.
func NewError(code ErrorCode, description string, details map[string]interface{}) *Error {
	if description == "" {
		description = defaultDescriptions[code]
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	return &Error{Code: code, Description: description, Details: details}
}

func errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...), nil)
}

// AsTaxonomyError returns err unchanged if it already carries an OCPP error
// code, otherwise it wraps it as InternalError. A nil err is not special-cased
// (it also yields InternalError), so callers should check err != nil first.
func AsTaxonomyError(err error) *Error {
	if ocppErr, ok := err.(*Error); ok {
		return ocppErr
	}
	return NewError(ErrorInternalError, "An unexpected error occurred.", nil)
}

// TimeoutError is raised by Session.Call when no response arrives before the
// deadline. It is never put on the wire.
type TimeoutError struct {
	Action   string
	UniqueID string
	Timeout  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting %s for response to %s (uniqueId=%s)", e.Timeout, e.Action, e.UniqueID)
}

// UnknownCallErrorCodeError is raised when a received CallError carries a
// code outside the OCPP taxonomy.
type UnknownCallErrorCodeError struct {
	Code ErrorCode
}

func (e *UnknownCallErrorCodeError) Error() string {
	return fmt.Sprintf("error code %q is not defined by the OCPP specification", e.Code)
}

// TransportClosedError is surfaced to any outbound waiter when the session's
// transport is shut down while a Call is outstanding.
type TransportClosedError struct {
	Cause error
}

func (e *TransportClosedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport closed: %v", e.Cause)
	}
	return "transport closed"
}

func (e *TransportClosedError) Unwrap() error { return e.Cause }
